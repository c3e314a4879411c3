// Package input models the controller surface the editor listens to and the
// shaping applied to raw stick values before they drive anything.
package input

import "math"

const (
	BUTTON_A Button = iota
	BUTTON_B
	BUTTON_GRIP
	BUTTON_JOYSTICK
	BUTTON_SCALE_MODE
)

type Button uint8

func (b Button) String() string {
	switch b {
	case BUTTON_A:
		return "a"
	case BUTTON_B:
		return "b"
	case BUTTON_GRIP:
		return "grip"
	case BUTTON_JOYSTICK:
		return "joystick"
	case BUTTON_SCALE_MODE:
		return "scale-mode"
	}
	return "unknown"
}

// Stick is a raw thumbstick deflection, each axis in [-1, 1].
type Stick struct {
	X, Y float64
}

// Shape applies dominant-axis isolation and deadzone remapping. The weaker
// axis is zeroed so a forward push does not leak into rotation, then the
// surviving axis is remapped from [deadzone, 1] to [0, 1] preserving sign.
func (s Stick) Shape(deadzone float64) Stick {
	if math.Abs(s.X) >= math.Abs(s.Y) {
		s.Y = 0
	} else {
		s.X = 0
	}
	return Stick{
		X: remapDeadzone(s.X, deadzone),
		Y: remapDeadzone(s.Y, deadzone),
	}
}

func remapDeadzone(v, deadzone float64) float64 {
	a := math.Abs(v)
	if a < deadzone {
		return 0
	}
	shaped := (a - deadzone) / (1 - deadzone)
	if shaped > 1 {
		shaped = 1
	}
	return math.Copysign(shaped, v)
}
