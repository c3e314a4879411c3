package scene

import (
	"github.com/akmonengine/sculpt/xform"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// ObjectID is the stable identity of a scene object. Hosts mint one per
// object they mirror; an id stays valid for the whole session even when the
// object is despawned and respawned.
type ObjectID uuid.UUID

// NoObject is the zero ObjectID.
var NoObject ObjectID

func NewObjectID() ObjectID {
	return ObjectID(uuid.New())
}

func (id ObjectID) String() string {
	return uuid.UUID(id).String()
}

func (id ObjectID) IsZero() bool {
	return id == NoObject
}

const (
	KindStatic Kind = iota
	KindClutter
	KindProp
	KindActor
	KindDoor
	KindContainer
	KindActivator
)

// Kind is the object's form category.
type Kind uint8

const (
	LayerStatic Layer = iota
	LayerClutter
	LayerProps
	LayerBiped
)

// Layer is the object's collision layer.
type Layer uint8

// Object is the editor's view of one scene object. Euler carries the
// authoritative orientation angles alongside the matrix; the matrix alone
// cannot restore them exactly.
type Object struct {
	ID          ObjectID
	Template    ObjectID
	Name        string
	Transform   xform.Transform
	Euler       mgl64.Vec3
	HalfExtents mgl64.Vec3
	Kind        Kind
	Layer       Layer
	Deleted     bool
}

// AABB returns the object's world-space bounding box, scaled by the
// object's uniform scale.
func (o *Object) AABB() AABB {
	ext := o.HalfExtents.Mul(o.Transform.Scale)
	return AABB{
		Min: o.Transform.Position.Sub(ext),
		Max: o.Transform.Position.Add(ext),
	}
}
