package registry

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/model"
)

// ErrMalformed marks a raw register value that cannot be decoded. The poll
// coordinator keeps the previous field value when it sees this.
var ErrMalformed = errors.New("malformed register value")

// ErrReadOnly is returned when encoding a field without a write path.
var ErrReadOnly = errors.New("field is read-only")

// ValidationError reports a command parameter that failed range validation
// before any register write was issued.
type ValidationError struct {
	Field  Field
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Field is the logical name of one mapped register.
type Field string

const (
	FieldSetTemp         Field = "setTemp"
	FieldActualTemp      Field = "actualTemp"
	FieldProfile         Field = "profile"
	FieldSessionTime     Field = "sessionTime"
	FieldVentilationTime Field = "ventilationTime"
	FieldAromaValue      Field = "aromaValue"
	FieldHumidityValue   Field = "humidityValue"
	FieldErrorCode       Field = "errorCode"
	FieldHumidity        Field = "humidity"
	FieldStatus          Field = "controllerStatus"
)

// Entry binds a logical field to its holding register and codec functions.
// Read-only fields have a nil Encode. Addresses are 0-based wire addresses.
type Entry struct {
	Address uint16
	Decode  func(raw uint16, snap *model.Snapshot) error
	Encode  func(value any) (uint16, error)
}

// Map is the authoritative register table for the FFES controller.
// The vendor documentation is contradictory about the session/ventilation
// time offsets; 5/6 is what the physical device answers on.
var Map = map[Field]Entry{
	FieldSetTemp: {
		Address: 1,
		Decode: func(raw uint16, snap *model.Snapshot) error {
			v := int(raw)
			snap.SetTemp = &v
			return nil
		},
		Encode: encodeIntRange(FieldSetTemp, 20, 110),
	},
	FieldActualTemp: {
		Address: 2,
		Decode: func(raw uint16, snap *model.Snapshot) error {
			snap.ActualTemp = int(raw)
			return nil
		},
	},
	FieldProfile: {
		Address: 4,
		Decode: func(raw uint16, snap *model.Snapshot) error {
			p := model.Profile(raw)
			if !p.Valid() {
				return fmt.Errorf("%w: profile code %d", ErrMalformed, raw)
			}
			snap.Profile = &p
			return nil
		},
		Encode: func(value any) (uint16, error) {
			p, ok := value.(model.Profile)
			if !ok || !p.Valid() {
				return 0, &ValidationError{Field: FieldProfile, Reason: fmt.Sprintf("must be 1-7, got %v", value)}
			}
			return uint16(p), nil
		},
	},
	FieldSessionTime: {
		Address: 5,
		Decode:  decodeTime(func(snap *model.Snapshot, s string) { snap.SessionTime = &s }),
		Encode:  encodeTime(FieldSessionTime),
	},
	FieldVentilationTime: {
		Address: 6,
		Decode:  decodeTime(func(snap *model.Snapshot, s string) { snap.VentilationTime = &s }),
		Encode:  encodeTime(FieldVentilationTime),
	},
	FieldAromaValue: {
		Address: 9,
		Decode: func(raw uint16, snap *model.Snapshot) error {
			v := int(raw)
			snap.AromaValue = &v
			return nil
		},
		Encode: encodeIntRange(FieldAromaValue, 0, 100),
	},
	FieldHumidityValue: {
		Address: 10,
		Decode: func(raw uint16, snap *model.Snapshot) error {
			v := int(raw)
			snap.HumidityValue = &v
			return nil
		},
		Encode: encodeIntRange(FieldHumidityValue, 0, 100),
	},
	FieldErrorCode: {
		Address: 11,
		Decode: func(raw uint16, snap *model.Snapshot) error {
			v := int(raw)
			snap.ErrorCode = &v
			return nil
		},
	},
	FieldHumidity: {
		Address: 15,
		Decode: func(raw uint16, snap *model.Snapshot) error {
			snap.Humidity = int(raw)
			return nil
		},
	},
	FieldStatus: {
		Address: 20,
		Decode: func(raw uint16, snap *model.Snapshot) error {
			s := model.ControllerStatus(raw)
			if !s.Valid() {
				return fmt.Errorf("%w: status code %d", ErrMalformed, raw)
			}
			snap.ControllerStatus = s
			return nil
		},
		Encode: func(value any) (uint16, error) {
			s, ok := value.(model.ControllerStatus)
			if !ok || !s.Valid() {
				return 0, &ValidationError{Field: FieldStatus, Reason: fmt.Sprintf("must be 0-3, got %v", value)}
			}
			return uint16(s), nil
		},
	},
}

// Span returns the start address and register count of one bulk read covering
// every mapped field.
func Span() (start, count uint16) {
	addrs := lo.Map(lo.Values(Map), func(e Entry, _ int) uint16 { return e.Address })
	low := lo.Min(addrs)
	high := lo.Max(addrs)
	return low, high - low + 1
}

// Decode applies one raw register value to the snapshot.
func Decode(field Field, raw uint16, snap *model.Snapshot) error {
	entry, ok := Map[field]
	if !ok {
		return fmt.Errorf("unknown field %q", field)
	}
	return entry.Decode(raw, snap)
}

// Encode validates a domain value and returns the raw register value for it.
// Out-of-range values fail, they are never clamped.
func Encode(field Field, value any) (uint16, error) {
	entry, ok := Map[field]
	if !ok {
		return 0, fmt.Errorf("unknown field %q", field)
	}
	if entry.Encode == nil {
		return 0, fmt.Errorf("%w: %s", ErrReadOnly, field)
	}
	return entry.Encode(value)
}

func encodeIntRange(field Field, min, max int) func(any) (uint16, error) {
	return func(value any) (uint16, error) {
		v, ok := value.(int)
		if !ok {
			return 0, &ValidationError{Field: field, Reason: fmt.Sprintf("expected integer, got %T", value)}
		}
		if v < min || v > max {
			return 0, &ValidationError{Field: field, Reason: fmt.Sprintf("must be %d-%d, got %d", min, max, v)}
		}
		return uint16(v), nil
	}
}

func decodeTime(set func(*model.Snapshot, string)) func(uint16, *model.Snapshot) error {
	return func(raw uint16, snap *model.Snapshot) error {
		s, err := FormatTime(raw)
		if err != nil {
			return err
		}
		set(snap, s)
		return nil
	}
}

func encodeTime(field Field) func(any) (uint16, error) {
	return func(value any) (uint16, error) {
		s, ok := value.(string)
		if !ok {
			return 0, &ValidationError{Field: field, Reason: fmt.Sprintf("expected HH:MM string, got %T", value)}
		}
		raw, err := PackTime(s)
		if err != nil {
			return 0, &ValidationError{Field: field, Reason: err.Error()}
		}
		return raw, nil
	}
}
