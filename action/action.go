package action

import (
	"github.com/akmonengine/sculpt/scene"
	"github.com/akmonengine/sculpt/xform"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	KIND_TRANSFORM Kind = iota
	KIND_MULTI_TRANSFORM
	KIND_SELECTION
	KIND_DELETE
	KIND_COPY
)

type Kind uint8

func (k Kind) String() string {
	switch k {
	case KIND_TRANSFORM:
		return "transform"
	case KIND_MULTI_TRANSFORM:
		return "multi-transform"
	case KIND_SELECTION:
		return "selection"
	case KIND_DELETE:
		return "delete"
	case KIND_COPY:
		return "copy"
	}
	return "unknown"
}

// Action interface - all recorded actions implement this.
// The set of implementations is closed (isAction is unexported), so a type
// switch over the concrete types below covers every kind.
type Action interface {
	ID() ID
	Kind() Kind
	// UserVisible reports whether undo/redo should stop at this entry.
	// Internal bookkeeping entries are applied silently and skipped over.
	UserVisible() bool

	isAction()
}

// ObjectState is the recorded pose of one object. The Euler angles are kept
// alongside the rotation matrix: extracting angles back out of the matrix is
// lossy, and undo must restore the orientation exactly.
type ObjectState struct {
	Transform xform.Transform
	Euler     mgl64.Vec3
}

// ObjectChange is a before/after pair for one object.
type ObjectChange struct {
	Object scene.ObjectID
	Before ObjectState
	After  ObjectState
}

// Transform records one object being moved, rotated or scaled.
type Transform struct {
	ActionID ID
	ObjectChange
}

func (a Transform) ID() ID            { return a.ActionID }
func (a Transform) Kind() Kind        { return KIND_TRANSFORM }
func (a Transform) UserVisible() bool { return true }
func (Transform) isAction()           {}

// MultiTransform records a group of objects moved together as one entry.
type MultiTransform struct {
	ActionID ID
	Changes  []ObjectChange
}

func (a MultiTransform) ID() ID            { return a.ActionID }
func (a MultiTransform) Kind() Kind        { return KIND_MULTI_TRANSFORM }
func (a MultiTransform) UserVisible() bool { return true }
func (MultiTransform) isAction()           {}

// Selection records a change of the selection set. Collapsing a single
// object selection is invisible bookkeeping; dissolving a multi-selection is
// something the user wants to step back through.
type Selection struct {
	ActionID ID
	Previous []scene.ObjectID
	Current  []scene.ObjectID
}

func (a Selection) ID() ID            { return a.ActionID }
func (a Selection) Kind() Kind        { return KIND_SELECTION }
func (a Selection) UserVisible() bool { return len(a.Previous) > 1 }
func (Selection) isAction()           {}

// Delete records an object removal. Template identifies what to respawn on
// undo; State is the pose it held at deletion.
type Delete struct {
	ActionID ID
	Object   scene.ObjectID
	Template scene.ObjectID
	State    ObjectState
}

func (a Delete) ID() ID            { return a.ActionID }
func (a Delete) Kind() Kind        { return KIND_DELETE }
func (a Delete) UserVisible() bool { return true }
func (Delete) isAction()           {}

// Copy records a duplication: Created was spawned from Original's template
// at the recorded pose.
type Copy struct {
	ActionID ID
	Original scene.ObjectID
	Created  scene.ObjectID
	Template scene.ObjectID
	State    ObjectState
}

func (a Copy) ID() ID            { return a.ActionID }
func (a Copy) Kind() Kind        { return KIND_COPY }
func (a Copy) UserVisible() bool { return true }
func (Copy) isAction()           {}
