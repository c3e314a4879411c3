package grab

import (
	"log/slog"

	"github.com/akmonengine/sculpt/scene"
)

const (
	waitingForActorToLeave deferredState = iota
	waitingCooldown
)

type deferredState uint8

type deferredEntry struct {
	state    deferredState
	frames   int
	cooldown float64
}

// DeferredCollisions restores collision on objects an actor is standing on,
// once it is safe. Flipping collision back on under someone's feet launches
// them, so each registration waits for the actor to leave, then a cooldown,
// then a final check before restoring.
type DeferredCollisions struct {
	collision     scene.CollisionControl
	pending       map[scene.ObjectID]*deferredEntry
	checkInterval int
	cooldownTime  float64
	log           *slog.Logger
}

func NewDeferredCollisions(collision scene.CollisionControl, log *slog.Logger) *DeferredCollisions {
	if log == nil {
		log = slog.Default()
	}
	return &DeferredCollisions{
		collision:     collision,
		pending:       make(map[scene.ObjectID]*deferredEntry),
		checkInterval: 90,
		cooldownTime:  1.0,
		log:           log,
	}
}

// Register queues an object for deferred restoration. Re-registering
// resets its state.
func (d *DeferredCollisions) Register(id scene.ObjectID) {
	d.pending[id] = &deferredEntry{
		state:  waitingForActorToLeave,
		frames: d.checkInterval,
	}
	d.log.Debug("collision restore deferred", "object", id)
}

func (d *DeferredCollisions) Len() int {
	return len(d.pending)
}

func (d *DeferredCollisions) OnFrameUpdate(dt float64) {
	for id, entry := range d.pending {
		switch entry.state {
		case waitingForActorToLeave:
			entry.frames--
			if entry.frames > 0 {
				continue
			}
			entry.frames = d.checkInterval
			if d.collision.IsActorStandingOn(id) {
				continue
			}
			entry.state = waitingCooldown
			entry.cooldown = d.cooldownTime

		case waitingCooldown:
			entry.cooldown -= dt
			if entry.cooldown > 0 {
				continue
			}
			if d.collision.IsActorStandingOn(id) {
				// They came back; start over.
				entry.state = waitingForActorToLeave
				entry.frames = d.checkInterval
				continue
			}
			d.collision.RestoreCollision(id)
			delete(d.pending, id)
			d.log.Debug("collision restored", "object", id)
		}
	}
}
