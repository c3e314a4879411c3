package grab

import (
	"github.com/akmonengine/sculpt/scene"
	"github.com/akmonengine/sculpt/selection"
)

const (
	SkipNone SkipReason = iota
	SkipDisabled
	SkipNPCOnlySelection
	SkipPrimaryIsClutter
)

// SkipReason explains why a group was not expanded with touching objects.
type SkipReason uint8

func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "none"
	case SkipDisabled:
		return "disabled"
	case SkipNPCOnlySelection:
		return "npc-only-selection"
	case SkipPrimaryIsClutter:
		return "primary-is-clutter"
	}
	return "unknown"
}

// Resolver decides which objects move together when a grab starts.
type Resolver struct {
	world   scene.World
	sel     *selection.State
	finder  *scene.TouchingFinder
	enabled bool
}

func NewResolver(world scene.World, sel *selection.State, finder *scene.TouchingFinder, enabled bool) *Resolver {
	return &Resolver{world: world, sel: sel, finder: finder, enabled: enabled}
}

// Resolve returns the group to grab for a primary object: the current
// selection when the primary is part of it, otherwise the primary alone,
// expanded with touching objects unless a skip reason applies.
func (r *Resolver) Resolve(primary scene.ObjectID) ([]scene.ObjectID, SkipReason) {
	var group []scene.ObjectID
	if r.sel.IsSelected(primary) {
		group = r.sel.Snapshot()
	} else {
		group = []scene.ObjectID{primary}
	}

	if reason := r.skipReason(primary, group); reason != SkipNone {
		return group, reason
	}

	group = append(group, r.finder.Find(group)...)
	return group, SkipNone
}

func (r *Resolver) skipReason(primary scene.ObjectID, group []scene.ObjectID) SkipReason {
	if !r.enabled {
		return SkipDisabled
	}

	allActors := len(group) > 0
	for _, id := range group {
		obj, ok := r.world.Lookup(id)
		if !ok || obj.Kind != scene.KindActor {
			allActors = false
			break
		}
	}
	if allActors {
		return SkipNPCOnlySelection
	}

	if obj, ok := r.world.Lookup(primary); ok && obj.Layer == scene.LayerClutter {
		// Small items do not drag their neighbors along.
		return SkipPrimaryIsClutter
	}

	return SkipNone
}
