package registry

import (
	"fmt"
	"strconv"
	"strings"
)

// Time fields on the controller are packed as HH*100+MM, so 130 means 01:30.

// FormatTime turns a packed register value into "HH:MM". Values whose minute
// component is 60 or more are malformed.
func FormatTime(raw uint16) (string, error) {
	hours := int(raw) / 100
	minutes := int(raw) % 100
	if minutes >= 60 {
		return "", fmt.Errorf("%w: packed time %d has minutes >= 60", ErrMalformed, raw)
	}
	return fmt.Sprintf("%02d:%02d", hours, minutes), nil
}

// PackTime parses an "HH:MM" duration string into the packed register value.
func PackTime(s string) (uint16, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	if minutes >= 60 {
		return 0, fmt.Errorf("minutes must be below 60, got %q", s)
	}
	packed := hours*100 + minutes
	if packed > 0xffff {
		return 0, fmt.Errorf("duration %q does not fit a register", s)
	}
	return uint16(packed), nil
}
