package model

// ControllerStatus is the controller's operating mode as reported in the
// status holding register.
type ControllerStatus uint16

const (
	StatusOff         ControllerStatus = 0
	StatusHeating     ControllerStatus = 1
	StatusVentilation ControllerStatus = 2
	StatusStandby     ControllerStatus = 3

	// StatusUnknown is the decode sentinel for raw values outside 0-3.
	StatusUnknown ControllerStatus = 0xffff
)

var statusNames = map[ControllerStatus]string{
	StatusOff:         "off",
	StatusHeating:     "heat",
	StatusVentilation: "fan_only",
	StatusStandby:     "auto",
}

func (s ControllerStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether s is one of the four documented status codes.
func (s ControllerStatus) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// Profile selects one of the controller's seven operating profiles.
type Profile uint16

const (
	ProfileInfraredSauna Profile = 1
	ProfileDrySauna      Profile = 2
	ProfileWetSauna      Profile = 3
	ProfileVentilation   Profile = 4
	ProfileSteambath     Profile = 5
	ProfileInfraredCPIR  Profile = 6
	ProfileInfraredMIX   Profile = 7

	ProfileUnknown Profile = 0xffff
)

var profileNames = map[Profile]string{
	ProfileInfraredSauna: "Infrared Sauna",
	ProfileDrySauna:      "Dry Sauna",
	ProfileWetSauna:      "Wet Sauna",
	ProfileVentilation:   "Ventilation",
	ProfileSteambath:     "Steambath",
	ProfileInfraredCPIR:  "Infrared CPIR",
	ProfileInfraredMIX:   "Infrared MIX",
}

func (p Profile) String() string {
	if name, ok := profileNames[p]; ok {
		return name
	}
	return "unknown"
}

func (p Profile) Valid() bool {
	_, ok := profileNames[p]
	return ok
}
