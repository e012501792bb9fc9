package model

// RegisterDevice is the device block of a Home Assistant discovery message.
type RegisterDevice struct {
	Name         string   `json:"name"`
	Identifiers  []string `json:"identifiers"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
}

// RegisterMessage is a Home Assistant MQTT discovery config payload for a
// single sensor of the sauna device.
type RegisterMessage struct {
	Tilda             string         `json:"~"`
	Name              string         `json:"name"`
	ID                string         `json:"unique_id"`
	StateTopic        string         `json:"state_topic"`
	AvailabilityTopic string         `json:"availability_topic,omitempty"`
	UnitOfMeasurement string         `json:"unit_of_measurement,omitempty"`
	DeviceClass       string         `json:"device_class,omitempty"`
	Icon              string         `json:"icon,omitempty"`
	Device            RegisterDevice `json:"device"`
}

// Sensor describes one published datapoint derived from a Snapshot.
type Sensor struct {
	Name        string
	Slug        string
	Unit        string
	DeviceClass string
	Icon        string
}
