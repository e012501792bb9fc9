package publisher

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gosimple/slug"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/model"
)

var errAlreadyRegistered = errors.New("publisher already registered")

var (
	registeredPublishers = make(map[string]publisher)
	sensors              sync.Map
)

type publisher interface {
	// Write publishes the snapshot datapoints to the adapter.
	Write(ctx context.Context, data []map[string]any) error
	RegisterDevice(device *model.Device) error
}

func RegisterPublisher(name string, publisher publisher) error {
	if _, ok := registeredPublishers[name]; ok {
		return errAlreadyRegistered
	}
	registeredPublishers[name] = publisher
	return nil
}

// PublishSnapshot fans the snapshot out to every registered adapter as
// individual datapoints, skipping values that have not changed since the
// last publish.
func PublishSnapshot(ctx context.Context, device model.Device, snap model.Snapshot) error {
	identifier := Identifier(device)

	data := make([]map[string]any, 0)
	for _, point := range datapoints(snap) {
		if !shouldUpdate(identifier, point.slug, point.value) {
			continue
		}
		data = append(data, map[string]any{
			"value":               point.value,
			"slug":                point.slug,
			"timestamp":           time.Now(),
			"identifier":          identifier,
			"unit_of_measurement": point.unit,
		})
	}
	if len(data) == 0 {
		return nil
	}

	for name, publisher := range registeredPublishers {
		if err := publisher.Write(ctx, data); err != nil {
			zap.L().Error("failed to publish data", zap.Error(err), zap.String("publisher", name))
			continue
		}
		zap.L().Debug("updated sensors", zap.Int("count", len(data)), zap.String("publisher", name))
	}
	return nil
}

func RegisterDevice(device *model.Device) error {
	for name, publisher := range registeredPublishers {
		if err := publisher.RegisterDevice(device); err != nil {
			zap.L().Error("failed to register device", zap.Error(err), zap.String("publisher", name))
			continue
		}
		zap.L().Debug("registered device", zap.String("device", device.ID), zap.String("publisher", name))
	}
	return nil
}

// Identifier builds the stable per-device topic identifier.
func Identifier(device model.Device) string {
	return strings.ReplaceAll(slug.Make(device.Manufacturer+" "+device.ID), "-", "_")
}

type datapoint struct {
	slug  string
	value string
	unit  string
}

func datapoints(snap model.Snapshot) []datapoint {
	points := []datapoint{
		{slug: "availability", value: lo.Ternary(snap.Available, "online", "offline")},
		{slug: "temperature", value: strconv.Itoa(snap.ActualTemp), unit: "°C"},
		{slug: "humidity", value: strconv.Itoa(snap.Humidity), unit: "%"},
		{slug: "status", value: snap.ControllerStatus.String()},
		{slug: "light", value: lo.Ternary(snap.Light, "ON", "OFF")},
		{slug: "aux", value: lo.Ternary(snap.Aux, "ON", "OFF")},
	}
	if snap.SetTemp != nil {
		points = append(points, datapoint{slug: "target_temperature", value: strconv.Itoa(*snap.SetTemp), unit: "°C"})
	}
	if snap.Profile != nil {
		points = append(points, datapoint{slug: "profile", value: snap.Profile.String()})
	}
	if snap.SessionTime != nil {
		points = append(points, datapoint{slug: "session_time", value: *snap.SessionTime})
	}
	if snap.VentilationTime != nil {
		points = append(points, datapoint{slug: "ventilation_time", value: *snap.VentilationTime})
	}
	if snap.AromaValue != nil {
		points = append(points, datapoint{slug: "aromatherapy", value: strconv.Itoa(*snap.AromaValue), unit: "%"})
	}
	if snap.HumidityValue != nil {
		points = append(points, datapoint{slug: "humidity_control", value: strconv.Itoa(*snap.HumidityValue), unit: "%"})
	}
	if snap.ErrorCode != nil {
		points = append(points, datapoint{slug: "error_code", value: strconv.Itoa(*snap.ErrorCode)})
	}
	return points
}

func shouldUpdate(identifier, sensorSlug, newValue string) bool {
	key := identifier + "_" + sensorSlug
	oldValue, exists := sensors.Load(key)
	if exists && strings.EqualFold(newValue, oldValue.(string)) {
		return false
	}
	if !exists {
		zap.L().Info("configured sensor", zap.String("device", identifier), zap.String("sensor", sensorSlug), zap.String("value", newValue))
	}
	sensors.Store(key, newValue)
	return true
}
