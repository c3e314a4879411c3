package grab

import "github.com/go-gl/mathgl/mgl64"

const (
	handRotEngageThreshold  = 0.5
	handRotReleaseThreshold = 0.3
)

// HandRotation lets the left hand rotate a single grabbed object directly:
// squeeze the trigger, turn the wrist, release. The trigger uses hysteresis
// so a wavering squeeze does not flicker. Gestures compose: each release
// bakes its rotation into the accumulated matrix, so the user can ratchet.
type HandRotation struct {
	engaged     bool
	startHand   mgl64.Mat3
	accumulated mgl64.Mat3
}

func NewHandRotation() *HandRotation {
	return &HandRotation{accumulated: mgl64.Ident3()}
}

func (h *HandRotation) Engaged() bool {
	return h.engaged
}

func (h *HandRotation) Reset() {
	h.engaged = false
	h.accumulated = mgl64.Ident3()
}

// Update feeds the trigger value and current hand orientation. It returns
// (engaged, released): engaged true exactly on the frame the gesture
// starts, released true exactly on the frame it ends.
func (h *HandRotation) Update(trigger float64, handRot mgl64.Mat3) (engagedNow, releasedNow bool) {
	if !h.engaged && trigger >= handRotEngageThreshold {
		h.engaged = true
		h.startHand = handRot
		return true, false
	}
	if h.engaged && trigger < handRotReleaseThreshold {
		h.engaged = false
		// Right-multiply so local-frame deltas accumulate in application
		// order.
		h.accumulated = h.accumulated.Mul3(h.gestureDelta(handRot))
		return false, true
	}
	return false, false
}

// gestureDelta is the hand's rotation since engage, expressed in the hand's
// starting frame and inverted so the object counter-rotates with the wrist.
func (h *HandRotation) gestureDelta(handRot mgl64.Mat3) mgl64.Mat3 {
	// Rotation matrices invert by transposition.
	return h.startHand.Transpose().Mul3(handRot).Transpose()
}

// Rotation returns the total extra rotation to apply on top of the grabbed
// object's initial orientation.
func (h *HandRotation) Rotation(handRot mgl64.Mat3) mgl64.Mat3 {
	if !h.engaged {
		return h.accumulated
	}
	return h.accumulated.Mul3(h.gestureDelta(handRot))
}
