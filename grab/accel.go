package grab

import (
	"math"

	"github.com/akmonengine/sculpt/config"
)

// Accel shapes the speed multiplier for distance changes. A sustained push
// in one direction, or any push on a far object, ramps up to the fast
// multiplier; pulling a near object closer ramps back down so the user can
// land it.
type Accel struct {
	cfg           config.AccelOptions
	pushTime      float64
	lastDirection float64
	multiplier    float64
}

func NewAccel(cfg config.AccelOptions) *Accel {
	return &Accel{cfg: cfg, multiplier: 1}
}

func (a *Accel) Reset() {
	a.pushTime = 0
	a.lastDirection = 0
	a.multiplier = 1
}

// Multiplier advances the helper by dt and returns the current speed
// multiplier. input is the shaped stick deflection in [-1, 1], distance the
// current hold distance.
func (a *Accel) Multiplier(dt, input, distance float64) float64 {
	target := 1.0
	direction := 0.0

	if math.Abs(input) > 0.01 {
		if input > 0 {
			direction = 1
		} else {
			direction = -1
		}

		// Hold time only accumulates while the push keeps its direction;
		// a reversal restarts the clock at this frame.
		accumulate := direction == a.lastDirection
		if a.cfg.RequireFullThrottle {
			accumulate = accumulate && math.Abs(input) > a.cfg.FullThrottleThreshold
		}
		if accumulate {
			a.pushTime += dt
		} else {
			a.pushTime = dt
		}

		if a.pushTime >= a.cfg.FastModeThreshold || distance > a.cfg.FarDistanceThreshold {
			if input < 0 && distance <= a.cfg.SlowdownDistance {
				// Pulling in while close: ease back to normal speed.
				target = 1
			} else {
				target = a.cfg.FastMoveMultiplier
			}
		}
	} else {
		a.pushTime = 0
	}

	a.lastDirection = direction

	// Ramp toward the target; never jump, in either direction.
	step := dt / a.cfg.SpeedTransitionTime
	if a.multiplier < target {
		a.multiplier = math.Min(a.multiplier+step, target)
	} else if a.multiplier > target {
		a.multiplier = math.Max(a.multiplier-step, target)
	}

	return a.multiplier
}
