package grab

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const handTransSmoothingSpeed = 8.0

// HandTranslation lets the off hand drag the grabbed group directly:
// squeeze the grip, move the hand, release. Like HandRotation, each release
// bakes its offset into the accumulated translation so the group stays
// where the gesture left it. The applied delta is smoothed with the same
// exponential decay the pose smoother uses.
type HandTranslation struct {
	engaged     bool
	startHand   mgl64.Vec3
	raw         mgl64.Vec3
	smoothed    mgl64.Vec3
	accumulated mgl64.Vec3
}

func NewHandTranslation() *HandTranslation {
	return &HandTranslation{}
}

func (h *HandTranslation) Engaged() bool {
	return h.engaged
}

func (h *HandTranslation) Reset() {
	*h = HandTranslation{}
}

// Update feeds the grip value and current hand position. It returns
// engagedNow true exactly on the frame the gesture starts and releasedNow
// true exactly on the frame it ends.
func (h *HandTranslation) Update(grip float64, handPos mgl64.Vec3) (engagedNow, releasedNow bool) {
	if !h.engaged && grip >= handRotEngageThreshold {
		h.engaged = true
		h.startHand = handPos
		h.raw = mgl64.Vec3{}
		h.smoothed = mgl64.Vec3{}
		return true, false
	}
	if h.engaged && grip < handRotReleaseThreshold {
		h.engaged = false
		h.accumulated = h.accumulated.Add(h.smoothed)
		h.raw = mgl64.Vec3{}
		h.smoothed = mgl64.Vec3{}
		return false, true
	}
	return false, false
}

// Step advances the smoothed offset toward the hand's current displacement.
func (h *HandTranslation) Step(dt float64, handPos mgl64.Vec3) {
	if !h.engaged {
		return
	}
	h.raw = handPos.Sub(h.startHand)
	if dt <= 0 || dt >= 0.1 {
		return
	}
	t := 1 - math.Exp(-handTransSmoothingSpeed*dt)
	h.smoothed = lerpVec3(h.smoothed, h.raw, mgl64.Clamp(t, 0, 1))
}

// Translation is the total offset to add to the group's aim point:
// accumulated gestures plus the live one.
func (h *HandTranslation) Translation() mgl64.Vec3 {
	return h.accumulated.Add(h.smoothed)
}
