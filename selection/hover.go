package selection

import "github.com/akmonengine/sculpt/scene"

// Hover tracks the single object under the aim ray and keeps its highlight
// in sync.
type Hover struct {
	current   scene.ObjectID
	highlight scene.Highlighter
}

func NewHover(highlight scene.Highlighter) *Hover {
	return &Hover{highlight: highlight}
}

func (h *Hover) Set(id scene.ObjectID) {
	if id == h.current {
		return
	}
	if !h.current.IsZero() {
		h.highlight.Unhighlight(h.current)
	}
	h.current = id
	if !id.IsZero() {
		h.highlight.Highlight(id, scene.HighlightHover)
	}
}

func (h *Hover) Current() scene.ObjectID {
	return h.current
}

func (h *Hover) Clear() {
	h.Set(scene.NoObject)
}

// SphereHover tracks the set of objects inside the selection sphere.
type SphereHover struct {
	current   map[scene.ObjectID]bool
	order     []scene.ObjectID
	highlight scene.Highlighter
}

func NewSphereHover(highlight scene.Highlighter) *SphereHover {
	return &SphereHover{
		current:   make(map[scene.ObjectID]bool),
		highlight: highlight,
	}
}

// Set replaces the hovered set, highlighting newcomers and unhighlighting
// the departed.
func (h *SphereHover) Set(ids []scene.ObjectID) {
	next := make(map[scene.ObjectID]bool, len(ids))
	for _, id := range ids {
		next[id] = true
		if !h.current[id] {
			h.highlight.Highlight(id, scene.HighlightSphere)
		}
	}
	for _, id := range h.order {
		if !next[id] {
			h.highlight.Unhighlight(id)
		}
	}
	h.order = append(h.order[:0], ids...)
	h.current = next
}

func (h *SphereHover) Snapshot() []scene.ObjectID {
	out := make([]scene.ObjectID, len(h.order))
	copy(out, h.order)
	return out
}

func (h *SphereHover) Clear() {
	h.Set(nil)
}
