package particles

import (
	"fmt"
	"strings"
)

// Mode selects the oscillation rule applied each dispatch.
type Mode uint8

const (
	// ModeRadial pushes the live position in and out along its direction
	// from the origin. Displacement accumulates across dispatches.
	ModeRadial Mode = iota
	// ModeRestRelative recomputes the live position from the rest position
	// every dispatch.
	ModeRestRelative
	// ModeNoise offsets the rest position along its surface normal by a
	// 4D simplex noise field.
	ModeNoise
)

var modeNames = [...]string{
	ModeRadial:       "radial",
	ModeRestRelative: "rest",
	ModeNoise:        "noise",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// Next cycles through the modes.
func (m Mode) Next() Mode {
	return (m + 1) % Mode(len(modeNames))
}

// ParseMode accepts the names printed by String. "rest-relative" is accepted
// as an alias of "rest".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "radial":
		return ModeRadial, nil
	case "rest", "rest-relative", "rest_relative":
		return ModeRestRelative, nil
	case "noise":
		return ModeNoise, nil
	}
	return ModeRadial, fmt.Errorf("unknown oscillation mode %q", s)
}

// Params is the snapshot of tunables read by one dispatch.
type Params struct {
	Mode    Mode
	Enabled bool

	Amplitude float32
	Speed     float32
	Frequency float32

	// RestFrequency scales the phase term of the rest-relative rule.
	RestFrequency float32
}

// DefaultParams returns the stock oscillation settings.
func DefaultParams() Params {
	return Params{
		Mode:          ModeRadial,
		Enabled:       true,
		Amplitude:     0.0005,
		Speed:         1,
		Frequency:     6.28,
		RestFrequency: 10.28,
	}
}

// Active reports whether a dispatch with p can change a live position.
// Radial motion with zero amplitude is a no-op; the rest-relative and noise
// rules still snap live positions back onto their rest positions.
func (p Params) Active() bool {
	if !p.Enabled {
		return false
	}
	return p.Mode != ModeRadial || p.Amplitude != 0
}
