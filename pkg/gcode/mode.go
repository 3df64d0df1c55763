package gcode

import "fmt"

// Mode is a motion mode from the G-code motion modal group
type Mode uint8

const (
	// ModeNone means no motion word has been seen yet
	ModeNone Mode = iota
	// ModeG0 is rapid positioning
	ModeG0
	// ModeG1 is linear interpolation
	ModeG1
	// ModeG2 is clockwise circular interpolation
	ModeG2
	// ModeG3 is counter-clockwise circular interpolation
	ModeG3
)

// Modes lists every drawable mode in draw order
var Modes = []Mode{ModeG0, ModeG1, ModeG2, ModeG3}

// modeFromNumber maps a G word value to its motion mode
func modeFromNumber(n int) Mode {
	switch n {
	case 0:
		return ModeG0
	case 1:
		return ModeG1
	case 2:
		return ModeG2
	case 3:
		return ModeG3
	}
	return ModeNone
}

// String returns the G-code spelling of the mode
func (m Mode) String() string {
	switch m {
	case ModeG0:
		return "G0"
	case ModeG1:
		return "G1"
	case ModeG2:
		return "G2"
	case ModeG3:
		return "G3"
	}
	return "none"
}

// IsArc reports whether the mode interpolates a circular arc
func (m Mode) IsArc() bool {
	return m == ModeG2 || m == ModeG3
}

// IsSet reports whether a motion mode is active
func (m Mode) IsSet() bool {
	return m != ModeNone
}

// MarshalText lets modes be used as JSON object keys
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText parses "G0".."G3" and "none"
func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "G0", "g0":
		*m = ModeG0
	case "G1", "g1":
		*m = ModeG1
	case "G2", "g2":
		*m = ModeG2
	case "G3", "g3":
		*m = ModeG3
	case "none", "":
		*m = ModeNone
	default:
		return fmt.Errorf("unknown motion mode %q", text)
	}
	return nil
}

// ParseMode parses the G-code spelling of a mode
func ParseMode(s string) (Mode, error) {
	var m Mode
	err := m.UnmarshalText([]byte(s))
	return m, err
}
