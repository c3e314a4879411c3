package selection

import "github.com/akmonengine/sculpt/scene"

// ChangeFunc observes selection changes with before/after snapshots.
type ChangeFunc func(previous, current []scene.ObjectID)

// State is the ordered selection set. Order is preserved so group operations
// treat the first selected object as the anchor. Not safe for concurrent
// use.
type State struct {
	ids      []scene.ObjectID
	members  map[scene.ObjectID]bool
	onChange ChangeFunc
	suppress int
}

func NewState() *State {
	return &State{members: make(map[scene.ObjectID]bool)}
}

// OnChange installs the change observer. Only one observer is supported;
// the editor fans changes out through its event bus.
func (s *State) OnChange(fn ChangeFunc) {
	s.onChange = fn
}

// Suppressed runs fn with Suppressing reporting true. Undo and redo
// re-apply recorded selections through this; the observer still fires so
// highlights stay in sync, but checks Suppressing before recording.
func (s *State) Suppressed(fn func()) {
	s.suppress++
	fn()
	s.suppress--
}

// Suppressing reports whether the current change comes from inside a
// Suppressed call.
func (s *State) Suppressing() bool {
	return s.suppress > 0
}

func (s *State) notify(previous []scene.ObjectID) {
	if s.onChange == nil {
		return
	}
	s.onChange(previous, s.Snapshot())
}

// Select adds an object to the selection if it is not already a member.
func (s *State) Select(id scene.ObjectID) {
	if s.members[id] {
		return
	}
	prev := s.Snapshot()
	s.ids = append(s.ids, id)
	s.members[id] = true
	s.notify(prev)
}

// Toggle flips an object's membership.
func (s *State) Toggle(id scene.ObjectID) {
	prev := s.Snapshot()
	if s.members[id] {
		delete(s.members, id)
		for i, sid := range s.ids {
			if sid == id {
				s.ids = append(s.ids[:i], s.ids[i+1:]...)
				break
			}
		}
	} else {
		s.ids = append(s.ids, id)
		s.members[id] = true
	}
	s.notify(prev)
}

// Replace swaps the whole selection for the given list. Duplicates in ids
// are dropped, first occurrence wins.
func (s *State) Replace(ids []scene.ObjectID) {
	prev := s.Snapshot()
	s.ids = s.ids[:0]
	clear(s.members)
	for _, id := range ids {
		if s.members[id] {
			continue
		}
		s.ids = append(s.ids, id)
		s.members[id] = true
	}
	s.notify(prev)
}

func (s *State) Clear() {
	if len(s.ids) == 0 {
		return
	}
	prev := s.Snapshot()
	s.ids = s.ids[:0]
	clear(s.members)
	s.notify(prev)
}

func (s *State) IsSelected(id scene.ObjectID) bool {
	return s.members[id]
}

func (s *State) Len() int {
	return len(s.ids)
}

// Snapshot returns a copy of the selection in selection order.
func (s *State) Snapshot() []scene.ObjectID {
	out := make([]scene.ObjectID, len(s.ids))
	copy(out, s.ids)
	return out
}
