package scene

import (
	"github.com/akmonengine/sculpt/xform"
	"github.com/go-gl/mathgl/mgl64"
)

// Host-engine services the editor depends on. Each is a small interface so
// hosts plug in their runtime and tests plug in fakes.

// RaycastHit is the result of a ray query against the host's geometry.
type RaycastHit struct {
	Hit      bool
	Position mgl64.Vec3
	Normal   mgl64.Vec3
	Object   ObjectID
}

type Raycaster interface {
	// CastRay traces from origin along dir (unit length) up to maxDistance.
	CastRay(origin, dir mgl64.Vec3, maxDistance float64) RaycastHit
}

const (
	HandLeft Hand = iota
	HandRight
)

type Hand uint8

// HandPose is a tracked controller pose in world space.
type HandPose struct {
	Position mgl64.Vec3
	Rotation mgl64.Mat3
}

// Forward returns the hand's aim direction: the local Y axis in world
// space, which is row 1 in the row-vector convention.
func (p HandPose) Forward() mgl64.Vec3 {
	return mgl64.Vec3{p.Rotation.At(1, 0), p.Rotation.At(1, 1), p.Rotation.At(1, 2)}
}

type HandPoses interface {
	// Pose returns the current pose of a hand; ok is false while the
	// controller is not tracked.
	Pose(hand Hand) (pose HandPose, ok bool)
}

const (
	HighlightHover HighlightKind = iota
	HighlightSelected
	HighlightSphere
)

type HighlightKind uint8

type Highlighter interface {
	Highlight(id ObjectID, kind HighlightKind)
	Unhighlight(id ObjectID)
	// Clear removes every highlight of every kind.
	Clear()
}

type CollisionControl interface {
	// DisableCollision turns an object's collision off for the duration of
	// a grab; false when the object has no collision to disable.
	DisableCollision(id ObjectID) bool
	RestoreCollision(id ObjectID)
	// IsActorStandingOn reports whether any actor is supported by the
	// object. Restoring collision under their feet must wait.
	IsActorStandingOn(id ObjectID) bool
}

type Notifier interface {
	Notify(message string)
}

type Spawner interface {
	// Spawn creates a new object from a template at the given pose and
	// returns its id.
	Spawn(template ObjectID, t xform.Transform, euler mgl64.Vec3) (ObjectID, error)
	Despawn(id ObjectID) error
}

// World is the object store the editor reads and writes.
type World interface {
	Lookup(id ObjectID) (*Object, bool)
	// SetTransform writes an object's pose; euler is the authoritative
	// orientation that the rotation matrix was built from.
	SetTransform(id ObjectID, t xform.Transform, euler mgl64.Vec3)
	// ForEachInRange visits objects whose bounds intersect the cube of
	// half-size radius around center. Return false to stop early.
	ForEachInRange(center mgl64.Vec3, radius float64, fn func(*Object) bool)
}
