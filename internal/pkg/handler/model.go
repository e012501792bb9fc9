package handler

type Action string

func (a Action) String() string {
	return string(a)
}

const (
	StatusAction       Action = "set_controller_status"
	LightAction        Action = "light"
	AuxAction          Action = "aux"
	SetTempAction      Action = "set_temp"
	SetProfileAction   Action = "set_profile"
	StartSessionAction Action = "start_session"
	StopSessionAction  Action = "stop_session"
)

// ControlRequest mirrors the controller's original HTTP control contract:
// an action plus whichever parameters that action needs.
type ControlRequest struct {
	Action Action `json:"action"`
	Value  int    `json:"value"` // status code, temperature or profile depending on action
	On     *bool  `json:"on,omitempty"`

	// start_session parameters
	Profile         int    `json:"profile,omitempty"`
	Temperature     int    `json:"temperature,omitempty"`
	SessionTime     string `json:"session_time,omitempty"`     // HH:MM
	VentilationTime string `json:"ventilation_time,omitempty"` // HH:MM
	Aroma           int    `json:"aroma,omitempty"`
	Humidity        int    `json:"humidity,omitempty"`
}

type ControlResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
