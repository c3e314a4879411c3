package input

// DoubleTap detects two presses of the same button within a time window.
// A match consumes both presses: the third press in a quick burst starts a
// fresh sequence rather than pairing with the second. One instance per
// button; timestamps are seconds on the caller's frame clock.
type DoubleTap struct {
	window float64
	last   float64
	armed  bool
}

func NewDoubleTap(window float64) *DoubleTap {
	return &DoubleTap{window: window}
}

// Press feeds a press at time now and reports whether it completed a
// double-tap.
func (d *DoubleTap) Press(now float64) bool {
	if d.armed && now-d.last <= d.window {
		d.armed = false
		return true
	}
	d.armed = true
	d.last = now
	return false
}

// Reset forgets any pending first press.
func (d *DoubleTap) Reset() {
	d.armed = false
}
