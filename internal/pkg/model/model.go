package model

import "time"

// Snapshot is the last known device state. The poll coordinator is the only
// writer; everyone else receives copies. When Available is false the previous
// good values are retained so consumers degrade instead of blanking out.
type Snapshot struct {
	ControllerStatus ControllerStatus `json:"controllerStatus"`
	Light            bool             `json:"light"`
	Aux              bool             `json:"aux"`
	ControllerModel  int              `json:"controllerModel"`
	ActualTemp       int              `json:"actualTemp"`
	Humidity         int              `json:"humidity"`
	SetTemp          *int             `json:"setTemp,omitempty"`
	Profile          *Profile         `json:"profile,omitempty"`
	SessionTime      *string          `json:"sessionTime,omitempty"`
	VentilationTime  *string          `json:"ventilationTime,omitempty"`
	AromaValue       *int             `json:"aromaValue,omitempty"`
	HumidityValue    *int             `json:"humidityValue,omitempty"`
	ErrorCode        *int             `json:"errorCode,omitempty"`
	LastUpdated      time.Time        `json:"lastUpdated"`
	Available        bool             `json:"available"`
}

// Device identifies one physical controller for publishing purposes.
type Device struct {
	ID           string
	Model        string
	Manufacturer string
}

// SessionParams carries the full parameter set for a start_session dispatch.
// Times are "HH:MM" strings; minutes >= 60 are rejected before any write.
type SessionParams struct {
	Profile         Profile
	Temperature     int
	SessionTime     string
	VentilationTime string
	Aroma           int
	Humidity        int
}
