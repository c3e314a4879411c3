package scene

import "log/slog"

// TouchingConfig tunes the touching-objects search. Radius and MaxResults
// are clamped to sane bands so a bad config cannot sweep up half the cell.
type TouchingConfig struct {
	Expansion  float64
	Radius     float64
	MaxResults int
}

const (
	touchingMinRadius  = 300.0
	touchingMaxRadius  = 500.0
	touchingMinResults = 20
	touchingMaxResults = 50
)

func (c TouchingConfig) clamped() TouchingConfig {
	if c.Expansion <= 0 {
		c.Expansion = 5
	}
	if c.Radius < touchingMinRadius {
		c.Radius = touchingMinRadius
	} else if c.Radius > touchingMaxRadius {
		c.Radius = touchingMaxRadius
	}
	if c.MaxResults < touchingMinResults {
		c.MaxResults = touchingMinResults
	} else if c.MaxResults > touchingMaxResults {
		c.MaxResults = touchingMaxResults
	}
	return c
}

// TouchingFinder collects the loose objects physically resting on or against
// a group, so moving a table takes the cups along.
type TouchingFinder struct {
	world World
	cfg   TouchingConfig
	log   *slog.Logger
}

func NewTouchingFinder(world World, cfg TouchingConfig, log *slog.Logger) *TouchingFinder {
	if log == nil {
		log = slog.Default()
	}
	return &TouchingFinder{world: world, cfg: cfg.clamped(), log: log}
}

// eligible filters to movable clutter. Anything architectural, animated or
// interactive stays where it is.
func eligible(obj *Object) bool {
	if obj.Layer != LayerClutter && obj.Layer != LayerProps {
		return false
	}
	switch obj.Kind {
	case KindActor, KindDoor, KindContainer, KindActivator, KindStatic:
		return false
	}
	return true
}

// Find returns the ids touching the seed group, transitively: an object
// leaning on an object leaning on the seed is included too. The seeds
// themselves are not returned. Running Find again on seed plus its result
// adds nothing (the closure is already complete), up to the result cap.
func (f *TouchingFinder) Find(seed []ObjectID) []ObjectID {
	visited := make(map[ObjectID]bool, len(seed))
	for _, id := range seed {
		visited[id] = true
	}

	queue := make([]ObjectID, len(seed))
	copy(queue, seed)

	var found []ObjectID
	for len(queue) > 0 && len(found) < f.cfg.MaxResults {
		id := queue[0]
		queue = queue[1:]

		obj, ok := f.world.Lookup(id)
		if !ok {
			continue
		}
		box := obj.AABB().Expanded(f.cfg.Expansion)

		f.world.ForEachInRange(obj.Transform.Position, f.cfg.Radius, func(other *Object) bool {
			if visited[other.ID] || !eligible(other) {
				return true
			}
			if !box.Overlaps(other.AABB().Expanded(f.cfg.Expansion)) {
				return true
			}
			visited[other.ID] = true
			found = append(found, other.ID)
			queue = append(queue, other.ID)
			return len(found) < f.cfg.MaxResults
		})
	}

	if len(found) > 0 {
		f.log.Debug("touching objects included", "seeds", len(seed), "found", len(found))
	}
	return found
}
