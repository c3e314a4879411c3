package sculpt

import (
	"log/slog"

	"github.com/akmonengine/sculpt/action"
	"github.com/akmonengine/sculpt/input"
	"github.com/akmonengine/sculpt/scene"
	"github.com/akmonengine/sculpt/selection"
)

// UndoRedoController maps double-taps to history traversal and applies
// recorded actions back onto the world.
//
// Undo and redo loop over non-user-visible entries: internal bookkeeping
// (like collapsing a single-object selection) is applied silently and the
// traversal continues until an entry the user can perceive has been applied
// or the stack runs out.
type UndoRedoController struct {
	history *action.Repository
	world   scene.World
	spawner scene.Spawner
	sel     *selection.State
	notify  scene.Notifier
	events  *Events
	log     *slog.Logger

	tapUndo *input.DoubleTap
	tapRedo *input.DoubleTap
	now     float64

	undoExhausted bool
	redoExhausted bool

	// remap tracks ids of respawned objects: undoing a delete creates a
	// new object, and later entries referring to the old id must follow it.
	remap map[scene.ObjectID]scene.ObjectID
}

func newUndoRedoController(
	window float64,
	history *action.Repository,
	world scene.World,
	spawner scene.Spawner,
	sel *selection.State,
	notify scene.Notifier,
	events *Events,
	log *slog.Logger,
) *UndoRedoController {
	return &UndoRedoController{
		history: history,
		world:   world,
		spawner: spawner,
		sel:     sel,
		notify:  notify,
		events:  events,
		log:     log,
		tapUndo: input.NewDoubleTap(window),
		tapRedo: input.NewDoubleTap(window),
		remap:   make(map[scene.ObjectID]scene.ObjectID),
	}
}

func (c *UndoRedoController) OnFrameUpdate(dt float64) {
	c.now += dt
}

// HandleButton feeds button presses: double-tap A undoes, double-tap B
// redoes.
func (c *UndoRedoController) HandleButton(b input.Button, pressed bool) {
	if !pressed {
		return
	}
	switch b {
	case input.BUTTON_A:
		if c.tapUndo.Press(c.now) {
			c.Undo()
		}
	case input.BUTTON_B:
		if c.tapRedo.Press(c.now) {
			c.Redo()
		}
	}
}

// ResetExhaustion re-arms the empty-stack notifications; called when the
// history gains a new entry.
func (c *UndoRedoController) ResetExhaustion() {
	c.undoExhausted = false
	c.redoExhausted = false
}

func (c *UndoRedoController) Undo() {
	for {
		a, ok := c.history.Undo()
		if !ok {
			if !c.undoExhausted {
				c.undoExhausted = true
				c.notify.Notify("Nothing to undo")
			}
			return
		}
		c.redoExhausted = false
		c.applyUndo(a)
		c.events.emit(UndoAppliedEvent{Action: a.ID(), Kind: a.Kind()})
		if a.UserVisible() {
			return
		}
	}
}

func (c *UndoRedoController) Redo() {
	for {
		a, ok := c.history.Redo()
		if !ok {
			if !c.redoExhausted {
				c.redoExhausted = true
				c.notify.Notify("Nothing to redo")
			}
			return
		}
		c.undoExhausted = false
		c.applyRedo(a)
		c.events.emit(RedoAppliedEvent{Action: a.ID(), Kind: a.Kind()})
		if a.UserVisible() {
			return
		}
	}
}

// resolve follows the respawn remap so entries recorded against a deleted
// object's old id land on its replacement.
func (c *UndoRedoController) resolve(id scene.ObjectID) scene.ObjectID {
	for {
		next, ok := c.remap[id]
		if !ok {
			return id
		}
		id = next
	}
}

func (c *UndoRedoController) applyUndo(a action.Action) {
	switch a := a.(type) {
	case action.Transform:
		c.world.SetTransform(c.resolve(a.Object), a.Before.Transform, a.Before.Euler)

	case action.MultiTransform:
		for _, ch := range a.Changes {
			c.world.SetTransform(c.resolve(ch.Object), ch.Before.Transform, ch.Before.Euler)
		}

	case action.Selection:
		c.applySelection(a.Previous)

	case action.Delete:
		newID, err := c.spawner.Spawn(a.Template, a.State.Transform, a.State.Euler)
		if err != nil {
			c.log.Error("undo delete failed", "object", a.Object, "error", err)
			return
		}
		c.remap[a.Object] = newID

	case action.Copy:
		if err := c.spawner.Despawn(c.resolve(a.Created)); err != nil {
			c.log.Error("undo copy failed", "object", a.Created, "error", err)
		}

	default:
		c.log.Error("unhandled action kind", "kind", a.Kind().String())
	}
}

func (c *UndoRedoController) applyRedo(a action.Action) {
	switch a := a.(type) {
	case action.Transform:
		c.world.SetTransform(c.resolve(a.Object), a.After.Transform, a.After.Euler)

	case action.MultiTransform:
		for _, ch := range a.Changes {
			c.world.SetTransform(c.resolve(ch.Object), ch.After.Transform, ch.After.Euler)
		}

	case action.Selection:
		c.applySelection(a.Current)

	case action.Delete:
		if err := c.spawner.Despawn(c.resolve(a.Object)); err != nil {
			c.log.Error("redo delete failed", "object", a.Object, "error", err)
		}

	case action.Copy:
		newID, err := c.spawner.Spawn(a.Template, a.State.Transform, a.State.Euler)
		if err != nil {
			c.log.Error("redo copy failed", "object", a.Original, "error", err)
			return
		}
		c.remap[a.Created] = newID

	default:
		c.log.Error("unhandled action kind", "kind", a.Kind().String())
	}
}

// applySelection re-applies a recorded selection without recording a new
// entry, dropping ids that no longer resolve to live objects.
func (c *UndoRedoController) applySelection(ids []scene.ObjectID) {
	live := make([]scene.ObjectID, 0, len(ids))
	for _, id := range ids {
		id = c.resolve(id)
		if _, ok := c.world.Lookup(id); ok {
			live = append(live, id)
		}
	}
	c.sel.Suppressed(func() {
		c.sel.Replace(live)
	})
}
