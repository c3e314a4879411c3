// Package grab implements the remote manipulation engine: smoothing,
// thumbstick acceleration, snap-to-grid, precision hand rotation and the
// grab controller that drives them.
package grab

import (
	"math"

	"github.com/akmonengine/sculpt/xform"
	"github.com/go-gl/mathgl/mgl64"
)

// Smoother eases a transform toward a moving target with an exponential
// decay, so the followed pose is framerate independent.
type Smoother struct {
	speed       float64
	current     xform.Transform
	target      xform.Transform
	initialized bool
}

func NewSmoother(speed float64) *Smoother {
	return &Smoother{speed: speed}
}

// SetCurrent teleports the smoother: current and target both move, no
// easing happens on the next step.
func (s *Smoother) SetCurrent(t xform.Transform) {
	s.current = t
	s.target = t
	s.initialized = true
}

// SetTarget updates where the smoother is heading. The first target seen
// after a reset also seeds the current pose.
func (s *Smoother) SetTarget(t xform.Transform) {
	s.target = t
	if !s.initialized {
		s.current = t
		s.initialized = true
	}
}

func (s *Smoother) Current() xform.Transform {
	return s.current
}

func (s *Smoother) Initialized() bool {
	return s.initialized
}

func (s *Smoother) Reset() {
	s.initialized = false
}

// Step advances the current pose toward the target and returns it. dt is
// clamped so a long hitch cannot overshoot, and a degenerate factor snaps
// straight to the target.
func (s *Smoother) Step(dt float64) xform.Transform {
	if !s.initialized {
		return s.target
	}

	if dt > 0.1 {
		dt = 0.1
	}
	t := 1 - math.Exp(-s.speed*dt)
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		t = 1
	}

	s.current.Position = lerpVec3(s.current.Position, s.target.Position, t)
	s.current.Scale += (s.target.Scale - s.current.Scale) * t
	s.current.Rotation = slerpMat3(s.current.Rotation, s.target.Rotation, t)

	return s.current
}

func lerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// slerpMat3 interpolates rotations through quaternion space. Opposed signs
// are flipped to take the short way around, and nearly identical rotations
// use nlerp to dodge the unstable slerp denominator.
func slerpMat3(a, b mgl64.Mat3, t float64) mgl64.Mat3 {
	qa := xform.Mat3ToQuat(a)
	qb := xform.Mat3ToQuat(b)

	if qa.Dot(qb) < 0 {
		qb = qb.Scale(-1)
	}

	var q mgl64.Quat
	if qa.Dot(qb) > 0.9995 {
		q = mgl64.QuatNlerp(qa, qb, t)
	} else {
		q = mgl64.QuatSlerp(qa, qb, t)
	}

	return xform.QuatToMat3(q.Normalize())
}
