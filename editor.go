// Package sculpt is the manipulation and history core of an in-world 3D
// object editor: selection, remote grab, snap-to-grid, and an undoable
// action history. The host engine plugs in through the interfaces in the
// scene package; everything here runs single-threaded from the host's frame
// loop.
package sculpt

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/akmonengine/sculpt/action"
	"github.com/akmonengine/sculpt/config"
	"github.com/akmonengine/sculpt/grab"
	"github.com/akmonengine/sculpt/scene"
	"github.com/akmonengine/sculpt/selection"
	"github.com/akmonengine/sculpt/xform"
	"github.com/go-gl/mathgl/mgl64"
)

// FrameUpdater is the per-frame capability. Registered updaters run in
// registration order from Editor.Update.
type FrameUpdater interface {
	OnFrameUpdate(dt float64)
}

// Deps are the host-engine services the editor is built from. World,
// Raycaster, Hands, Highlighter, Collision, Notifier and Spawner are
// required; Logger and NPCPlacer are optional.
type Deps struct {
	World       scene.World
	Raycaster   scene.Raycaster
	Hands       scene.HandPoses
	Highlighter scene.Highlighter
	Collision   scene.CollisionControl
	Notifier    scene.Notifier
	Spawner     scene.Spawner
	NPCPlacer   grab.NPCPlacer
	Logger      *slog.Logger
}

// Editor wires the subsystems together and drives them. Every collaborator
// is constructed here and handed its dependencies explicitly; nothing holds
// package-level state.
type Editor struct {
	Options   config.Options
	World     scene.World
	Events    Events
	Selection *selection.State
	History   *action.Repository
	IDs       *action.IDGenerator
	Snap      *grab.SnapController
	Grab      *grab.Controller
	Deferred  *grab.DeferredCollisions
	Modes     *StateManager
	UndoRedo  *UndoRedoController

	deps     Deps
	updaters []FrameUpdater
	log      *slog.Logger
}

func New(opts config.Options, deps Deps) (*Editor, error) {
	switch {
	case deps.World == nil:
		return nil, fmt.Errorf("sculpt: Deps.World is required")
	case deps.Raycaster == nil:
		return nil, fmt.Errorf("sculpt: Deps.Raycaster is required")
	case deps.Hands == nil:
		return nil, fmt.Errorf("sculpt: Deps.Hands is required")
	case deps.Highlighter == nil:
		return nil, fmt.Errorf("sculpt: Deps.Highlighter is required")
	case deps.Collision == nil:
		return nil, fmt.Errorf("sculpt: Deps.Collision is required")
	case deps.Notifier == nil:
		return nil, fmt.Errorf("sculpt: Deps.Notifier is required")
	case deps.Spawner == nil:
		return nil, fmt.Errorf("sculpt: Deps.Spawner is required")
	}

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	opts.Validate()

	e := &Editor{
		Options:   opts,
		World:     deps.World,
		Events:    NewEvents(),
		Selection: selection.NewState(),
		History:   action.NewRepository(log),
		IDs:       &action.IDGenerator{},
		Snap:      grab.NewSnapController(opts.Snap),
		Deferred:  grab.NewDeferredCollisions(deps.Collision, log),
		deps:      deps,
		log:       log,
	}

	finder := scene.NewTouchingFinder(deps.World, scene.TouchingConfig{
		Expansion:  opts.Grab.TouchingExpansion,
		Radius:     opts.Grab.TouchingRadius,
		MaxResults: opts.Grab.TouchingMaxResults,
	}, log)
	resolver := grab.NewResolver(deps.World, e.Selection, finder, opts.Grab.GroupMove)

	e.Grab = grab.NewController(opts, grab.ControllerDeps{
		World:     deps.World,
		Ray:       deps.Raycaster,
		Hands:     deps.Hands,
		Collision: deps.Collision,
		Notify:    deps.Notifier,
		History:   e.History,
		IDs:       e.IDs,
		Resolver:  resolver,
		Snap:      e.Snap,
		Deferred:  e.Deferred,
		NPCPlacer: deps.NPCPlacer,
		Logger:    log,
	})

	hover := selection.NewHover(deps.Highlighter)
	sphereHover := selection.NewSphereHover(deps.Highlighter)
	e.Modes = newStateManager(
		opts.EditMode, deps.World, deps.Raycaster, deps.Hands,
		e.Selection, hover, sphereHover, e.Grab, deps.Highlighter,
		&e.Events, log,
	)

	e.UndoRedo = newUndoRedoController(
		opts.EditMode.DoubleTapWindow,
		e.History, deps.World, deps.Spawner, e.Selection, deps.Notifier,
		&e.Events, log,
	)

	// Selection changes are recorded into the history (undo can step back
	// through them) and mirrored onto highlights.
	e.Selection.OnChange(func(previous, current []scene.ObjectID) {
		if !e.Selection.Suppressing() {
			e.History.Add(action.Selection{
				ActionID: e.IDs.Next(),
				Previous: previous,
				Current:  current,
			})
		}
		e.Events.emit(SelectionChangedEvent{Previous: previous, Current: current})
		e.syncSelectionHighlights(previous, current)
	})

	e.History.OnAdd(func(a action.Action) {
		e.UndoRedo.ResetExhaustion()
		e.Events.emit(ActionRecordedEvent{Action: a.ID(), Kind: a.Kind()})
	})

	e.updaters = []FrameUpdater{e.Modes, e.Grab, e.UndoRedo, e.Deferred}
	return e, nil
}

func (e *Editor) syncSelectionHighlights(previous, current []scene.ObjectID) {
	still := make(map[scene.ObjectID]bool, len(current))
	for _, id := range current {
		still[id] = true
	}
	for _, id := range previous {
		if !still[id] {
			e.deps.Highlighter.Unhighlight(id)
		}
	}
	for _, id := range current {
		e.deps.Highlighter.Highlight(id, scene.HighlightSelected)
	}
}

// RegisterFrameUpdater appends an extra per-frame subsystem. Host additions
// run after the built-in ones.
func (e *Editor) RegisterFrameUpdater(u FrameUpdater) {
	e.updaters = append(e.updaters, u)
}

// Update advances one frame: every registered updater runs in order, then
// the events buffered during the frame are delivered.
func (e *Editor) Update(dt float64) {
	for _, u := range e.updaters {
		u.OnFrameUpdate(dt)
	}
	e.Events.flush()
}

// DeleteSelected despawns every selected object and records one delete
// entry per object. Returns how many were deleted.
func (e *Editor) DeleteSelected() int {
	ids := e.Selection.Snapshot()
	if len(ids) == 0 {
		return 0
	}
	e.Selection.Clear()

	deleted := 0
	for _, id := range ids {
		obj, ok := e.World.Lookup(id)
		if !ok {
			continue
		}
		state := action.ObjectState{Transform: obj.Transform, Euler: obj.Euler}
		template := obj.Template

		if err := e.deps.Spawner.Despawn(id); err != nil {
			e.log.Error("delete failed", "object", id, "error", err)
			continue
		}
		e.History.Add(action.Delete{
			ActionID: e.IDs.Next(),
			Object:   id,
			Template: template,
			State:    state,
		})
		e.Events.emit(ObjectDeletedEvent{Object: id})
		deleted++
	}
	return deleted
}

// ResetSelectedRotation zeroes the rotation of every selected object,
// keeping position and scale, and records the change as one entry. Returns
// how many objects were reset.
func (e *Editor) ResetSelectedRotation() int {
	ids := e.Selection.Snapshot()
	if len(ids) == 0 {
		e.deps.Notifier.Notify("Nothing selected")
		return 0
	}

	var changes []action.ObjectChange
	for _, id := range ids {
		obj, ok := e.World.Lookup(id)
		if !ok {
			continue
		}

		before := action.ObjectState{Transform: obj.Transform, Euler: obj.Euler}
		after := obj.Transform
		after.Rotation = mgl64.Ident3()
		afterEuler := mgl64.Vec3{}
		e.World.SetTransform(id, after, afterEuler)

		changes = append(changes, action.ObjectChange{
			Object: id,
			Before: before,
			After:  action.ObjectState{Transform: after, Euler: afterEuler},
		})
		e.log.Debug("rotation reset", "object", id)
	}

	e.recordTransforms(changes)
	return len(changes)
}

// SnapSelectedToSurface places the selection where the right hand's ray
// hits, keeping the objects' layout relative to their shared pivot and
// tilting each to the surface. A miss leaves everything untouched. Returns
// how many objects were moved.
func (e *Editor) SnapSelectedToSurface() int {
	ids := e.Selection.Snapshot()
	if len(ids) == 0 {
		e.deps.Notifier.Notify("Nothing selected")
		return 0
	}
	hand, ok := e.deps.Hands.Pose(scene.HandRight)
	if !ok {
		return 0
	}

	hit := e.deps.Raycaster.CastRay(hand.Position, hand.Forward(), e.Options.Grab.GroundRayMaxDistance)
	if !hit.Hit {
		e.deps.Notifier.Notify("No surface in reach")
		return 0
	}

	normal := hit.Normal
	if normal.Len() > 0.001 {
		normal = normal.Normalize()
	} else {
		normal = mgl64.Vec3{0, 0, 1}
	}

	pivot := e.selectionPivot(ids)
	var changes []action.ObjectChange
	for _, id := range ids {
		obj, ok := e.World.Lookup(id)
		if !ok {
			continue
		}

		before := action.ObjectState{Transform: obj.Transform, Euler: obj.Euler}
		offset := obj.Transform.Position.Sub(pivot)
		// Pitch and roll come from the surface, yaw stays the object's own.
		euler := xform.SurfaceNormalToEuler(normal, obj.Euler.Z())
		after := xform.Transform{
			Position: hit.Position.Add(offset),
			Rotation: xform.EulerToMatrix(euler),
			Scale:    obj.Transform.Scale,
		}
		e.World.SetTransform(id, after, euler)

		changes = append(changes, action.ObjectChange{
			Object: id,
			Before: before,
			After:  action.ObjectState{Transform: after, Euler: euler},
		})
		e.log.Debug("snapped to surface", "object", id, "position", after.Position)
	}

	e.recordTransforms(changes)
	return len(changes)
}

// selectionPivot is the selection's horizontal center at its lowest point,
// the same pivot rule the grab controller groups around.
func (e *Editor) selectionPivot(ids []scene.ObjectID) mgl64.Vec3 {
	var sumX, sumY float64
	minZ := math.Inf(1)
	n := 0
	for _, id := range ids {
		obj, ok := e.World.Lookup(id)
		if !ok {
			continue
		}
		p := obj.Transform.Position
		sumX += p.X()
		sumY += p.Y()
		minZ = math.Min(minZ, p.Z())
		n++
	}
	if n == 0 {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{sumX / float64(n), sumY / float64(n), minZ}
}

func (e *Editor) recordTransforms(changes []action.ObjectChange) {
	switch len(changes) {
	case 0:
	case 1:
		e.History.Add(action.Transform{ActionID: e.IDs.Next(), ObjectChange: changes[0]})
	default:
		e.History.Add(action.MultiTransform{ActionID: e.IDs.Next(), Changes: changes})
	}
}

// CopyObject duplicates an object in place and records the copy.
func (e *Editor) CopyObject(id scene.ObjectID) (scene.ObjectID, error) {
	obj, ok := e.World.Lookup(id)
	if !ok {
		return scene.NoObject, fmt.Errorf("copy %s: unknown object", id)
	}
	state := action.ObjectState{Transform: obj.Transform, Euler: obj.Euler}

	created, err := e.deps.Spawner.Spawn(obj.Template, obj.Transform, obj.Euler)
	if err != nil {
		return scene.NoObject, fmt.Errorf("copy %s: %w", id, err)
	}

	e.History.Add(action.Copy{
		ActionID: e.IDs.Next(),
		Original: id,
		Created:  created,
		Template: obj.Template,
		State:    state,
	})
	e.Events.emit(ObjectCopiedEvent{Original: id, Created: created})
	return created, nil
}
