package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/model"
	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/publisher"
)

// saunaSensors is the Home Assistant sensor catalog for the controller.
// Slugs match the datapoints the publisher emits.
var saunaSensors = []model.Sensor{
	{Name: "Temperature", Unit: "°C", DeviceClass: "temperature", Icon: "mdi:thermometer"},
	{Name: "Target Temperature", Unit: "°C", DeviceClass: "temperature", Icon: "mdi:thermometer-chevron-up"},
	{Name: "Humidity", Unit: "%", DeviceClass: "humidity", Icon: "mdi:water-percent"},
	{Name: "Status", Icon: "mdi:power"},
	{Name: "Profile", Icon: "mdi:tune"},
	{Name: "Session Time", Icon: "mdi:timer"},
	{Name: "Ventilation Time", Icon: "mdi:fan"},
	{Name: "Aromatherapy", Unit: "%", Icon: "mdi:flower"},
	{Name: "Humidity Control", Unit: "%", Icon: "mdi:water"},
	{Name: "Light", Icon: "mdi:lightbulb"},
	{Name: "Aux", Icon: "mdi:power-socket-eu"},
	{Name: "Error Code", Icon: "mdi:alert-circle-outline"},
	{Name: "Availability", Icon: "mdi:lan-connect"},
}

func (s *service) Write(ctx context.Context, data []map[string]any) error {
	for _, d := range data {
		if err := s.publishDatapoint(d); err != nil {
			return err
		}
	}
	return nil
}

// RegisterDevice publishes one retained discovery config per sensor so Home
// Assistant picks the device up without manual configuration.
func (s *service) RegisterDevice(device *model.Device) error {
	if _, exists := s.configuredDevices[device.ID]; exists {
		return nil
	}
	identifier := publisher.Identifier(*device)

	for _, sensor := range saunaSensors {
		registerMessage := discoveryMsg(device, identifier, sensor)
		topic := fmt.Sprintf("homeassistant/sensor/%s/%s/config", identifier, sensorSlug(sensor))

		payload, err := json.Marshal(registerMessage)
		if err != nil {
			return err
		}
		token := s.client.Publish(topic, 1, true, payload)
		if !token.WaitTimeout(time.Second * 5) {
			continue
		}
		if err := token.Error(); err != nil {
			return err
		}
	}
	s.configuredDevices[device.ID] = struct{}{}
	return nil
}

func (s *service) publishDatapoint(data map[string]any) error {
	topic := fmt.Sprintf("homeassistant/sensor/%s/%s/state", data["identifier"], data["slug"].(string))

	payload := map[string]string{
		"value": data["value"].(string),
	}
	if unit, ok := data["unit_of_measurement"].(string); ok && unit != "" {
		payload["unit_of_measurement"] = unit
	}

	publishData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	token := s.client.Publish(topic, 0, false, publishData)
	res := token.WaitTimeout(time.Second * 10)
	if res {
		return nil
	}
	if err := token.Error(); err != nil {
		return err
	}
	return nil
}

func discoveryMsg(device *model.Device, identifier string, sensor model.Sensor) model.RegisterMessage {
	name := fmt.Sprintf("%s Sauna %s", device.Manufacturer, sensor.Name)
	sslug := sensorSlug(sensor)

	return model.RegisterMessage{
		Tilda:             fmt.Sprintf("homeassistant/sensor/%s/%s", identifier, sslug),
		Name:              name,
		ID:                strings.ToLower(identifier + "_" + sslug),
		StateTopic:        "~/state",
		AvailabilityTopic: fmt.Sprintf("homeassistant/sensor/%s/availability/state", identifier),
		UnitOfMeasurement: sensor.Unit,
		DeviceClass:       sensor.DeviceClass,
		Icon:              sensor.Icon,
		Device: model.RegisterDevice{
			Name:         device.Manufacturer + " Sauna",
			Identifiers:  []string{identifier},
			Model:        device.Model,
			Manufacturer: device.Manufacturer,
		},
	}
}

func sensorSlug(sensor model.Sensor) string {
	if sensor.Slug != "" {
		return sensor.Slug
	}
	return strings.ReplaceAll(slug.Make(sensor.Name), "-", "_")
}
