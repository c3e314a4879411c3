package action

import (
	"log/slog"
	"sort"
)

// Repository holds the done and redo stacks of the editing session.
//
// The done list stays sorted by id, which is creation order. Redone actions
// keep their original id, so a redo re-inserts at the entry's original
// chronological position. Not safe for concurrent use; the editor drives it
// from a single frame loop.
type Repository struct {
	done  []Action
	redo  []Action
	onAdd func(Action)
	log   *slog.Logger
}

func NewRepository(log *slog.Logger) *Repository {
	if log == nil {
		log = slog.Default()
	}
	return &Repository{log: log}
}

// Add records a new action. Any pending redo entries are discarded: the
// timeline has diverged and they no longer apply.
func (r *Repository) Add(a Action) {
	r.insert(a)
	if len(r.redo) > 0 {
		r.redo = r.redo[:0]
	}
	r.log.Debug("action recorded", "id", a.ID(), "kind", a.Kind().String())
	if r.onAdd != nil {
		r.onAdd(a)
	}
}

// OnAdd installs an observer called for every newly recorded action.
func (r *Repository) OnAdd(fn func(Action)) {
	r.onAdd = fn
}

func (r *Repository) insert(a Action) {
	n := len(r.done)
	if n == 0 || r.done[n-1].ID() < a.ID() {
		r.done = append(r.done, a)
		return
	}
	i := sort.Search(n, func(i int) bool { return r.done[i].ID() >= a.ID() })
	if i < n && r.done[i].ID() == a.ID() {
		r.done[i] = a
		return
	}
	r.done = append(r.done, nil)
	copy(r.done[i+1:], r.done[i:])
	r.done[i] = a
}

// Undo moves the newest done entry to the redo stack and returns it.
func (r *Repository) Undo() (Action, bool) {
	n := len(r.done)
	if n == 0 {
		return nil, false
	}
	a := r.done[n-1]
	r.done = r.done[:n-1]
	r.redo = append(r.redo, a)
	return a, true
}

// Redo moves the newest redo entry back to the done list, preserving its id,
// and returns it.
func (r *Repository) Redo() (Action, bool) {
	n := len(r.redo)
	if n == 0 {
		return nil, false
	}
	a := r.redo[n-1]
	r.redo = r.redo[:n-1]
	r.insert(a)
	return a, true
}

// Remove deletes a specific done entry. Used to fold intermediate entries of
// a gesture into the single action recorded at the end.
func (r *Repository) Remove(id ID) bool {
	n := len(r.done)
	i := sort.Search(n, func(i int) bool { return r.done[i].ID() >= id })
	if i >= n || r.done[i].ID() != id {
		return false
	}
	r.done = append(r.done[:i], r.done[i+1:]...)
	return true
}

// RemoveAfter deletes every done entry chronologically newer than id and
// returns how many were dropped.
func (r *Repository) RemoveAfter(id ID) int {
	n := len(r.done)
	i := sort.Search(n, func(i int) bool { return r.done[i].ID() > id })
	removed := n - i
	r.done = r.done[:i]
	return removed
}

// HasUserVisibleUndo reports whether undoing would eventually reach an entry
// the user can perceive.
func (r *Repository) HasUserVisibleUndo() bool {
	for i := len(r.done) - 1; i >= 0; i-- {
		if r.done[i].UserVisible() {
			return true
		}
	}
	return false
}

// HasUserVisibleRedo is the redo-side counterpart of HasUserVisibleUndo.
func (r *Repository) HasUserVisibleRedo() bool {
	for i := len(r.redo) - 1; i >= 0; i-- {
		if r.redo[i].UserVisible() {
			return true
		}
	}
	return false
}

func (r *Repository) Len() int {
	return len(r.done)
}

func (r *Repository) RedoLen() int {
	return len(r.redo)
}

// Newest returns the most recent done entry.
func (r *Repository) Newest() (Action, bool) {
	if len(r.done) == 0 {
		return nil, false
	}
	return r.done[len(r.done)-1], true
}
