package grab

import (
	"testing"

	"github.com/akmonengine/sculpt/action"
	"github.com/akmonengine/sculpt/config"
	"github.com/akmonengine/sculpt/input"
	"github.com/akmonengine/sculpt/scene"
	"github.com/akmonengine/sculpt/selection"
	"github.com/akmonengine/sculpt/xform"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHands struct {
	poses map[scene.Hand]scene.HandPose
}

func (f *fakeHands) Pose(hand scene.Hand) (scene.HandPose, bool) {
	p, ok := f.poses[hand]
	return p, ok
}

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) Notify(msg string) {
	f.messages = append(f.messages, msg)
}

type missRay struct{}

func (missRay) CastRay(origin, dir mgl64.Vec3, maxDistance float64) scene.RaycastHit {
	return scene.RaycastHit{}
}

// switchRay returns whatever result it currently holds, so a test can
// change the world's answer between frames.
type switchRay struct {
	result scene.RaycastHit
}

func (r *switchRay) CastRay(origin, dir mgl64.Vec3, maxDistance float64) scene.RaycastHit {
	return r.result
}

type controllerFixture struct {
	world    *scene.MemoryWorld
	hands    *fakeHands
	col      *trackingCollision
	notify   *fakeNotifier
	sel      *selection.State
	history  *action.Repository
	deferred *DeferredCollisions
	ctrl     *Controller
}

// newControllerFixture wires a controller with snapping off and group move
// on, a right hand at the origin aiming along +Y.
func newControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()

	cfg := config.DefaultOptions()
	cfg.Snap.PositionEnabled = false
	cfg.Snap.RotationEnabled = false

	world := scene.NewMemoryWorld(100, 64)
	hands := &fakeHands{poses: map[scene.Hand]scene.HandPose{
		scene.HandRight: {Position: mgl64.Vec3{0, 0, 0}, Rotation: mgl64.Ident3()},
		scene.HandLeft:  {Position: mgl64.Vec3{-20, 0, 0}, Rotation: mgl64.Ident3()},
	}}
	col := newTrackingCollision()
	notify := &fakeNotifier{}
	sel := selection.NewState()
	history := action.NewRepository(nil)
	snap := NewSnapController(cfg.Snap)
	deferred := NewDeferredCollisions(col, nil)
	finder := scene.NewTouchingFinder(world, scene.TouchingConfig{}, nil)
	resolver := NewResolver(world, sel, finder, cfg.Grab.GroupMove)

	ctrl := NewController(cfg, ControllerDeps{
		World:     world,
		Ray:       missRay{},
		Hands:     hands,
		Collision: col,
		Notify:    notify,
		History:   history,
		IDs:       &action.IDGenerator{},
		Resolver:  resolver,
		Snap:      snap,
		Deferred:  deferred,
	})

	return &controllerFixture{
		world:    world,
		hands:    hands,
		col:      col,
		notify:   notify,
		sel:      sel,
		history:  history,
		deferred: deferred,
		ctrl:     ctrl,
	}
}

func (f *controllerFixture) addProp(pos mgl64.Vec3) *scene.Object {
	obj := worldObject(pos, scene.KindProp, scene.LayerProps)
	f.world.Add(obj)
	return obj
}

func TestBeginSnapshotsAndDisablesCollision(t *testing.T) {
	f := newControllerFixture(t)
	obj := f.addProp(mgl64.Vec3{0, 100, 0})

	require.True(t, f.ctrl.Begin(obj.ID))
	assert.True(t, f.ctrl.Active())
	assert.Equal(t, []scene.ObjectID{obj.ID}, f.ctrl.Objects())
	assert.Equal(t, []scene.ObjectID{obj.ID}, f.col.disabled)
}

func TestBeginGroupPivot(t *testing.T) {
	f := newControllerFixture(t)
	a := f.addProp(mgl64.Vec3{0, 100, 10})
	b := f.addProp(mgl64.Vec3{10, 100, 20})

	f.sel.Select(a.ID)
	f.sel.Select(b.ID)
	require.True(t, f.ctrl.Begin(a.ID))

	// Pivot is the horizontal average at the group's lowest point: (5, 100,
	// 10). The hand aims along +Y from the origin, so the immediate snap to
	// the aim point keeps the relative offsets intact.
	objA, _ := f.world.Lookup(a.ID)
	objB, _ := f.world.Lookup(b.ID)
	rel := objB.Transform.Position.Sub(objA.Transform.Position)
	assert.InDelta(t, 10, rel.X(), 1e-9)
	assert.InDelta(t, 0, rel.Y(), 1e-9)
	assert.InDelta(t, 10, rel.Z(), 1e-9)
}

func TestBeginEnforcesMinHoldDistance(t *testing.T) {
	f := newControllerFixture(t)
	obj := f.addProp(mgl64.Vec3{0, 10, 0})

	require.True(t, f.ctrl.Begin(obj.ID))

	// The object sat 10 units away; the hold distance clamps to 50, so the
	// immediate snap pushes it out along the aim.
	moved, _ := f.world.Lookup(obj.ID)
	assert.InDelta(t, 50, moved.Transform.Position.Y(), 1e-9)
}

func TestBeginActorSelectionNotifies(t *testing.T) {
	f := newControllerFixture(t)
	npc := worldObject(mgl64.Vec3{0, 100, 0}, scene.KindActor, scene.LayerBiped)
	f.world.Add(npc)
	f.sel.Select(npc.ID)

	assert.False(t, f.ctrl.Begin(npc.ID))
	assert.False(t, f.ctrl.Active())
	assert.Equal(t, []string{"Cannot grab actors"}, f.notify.messages)
}

func TestBeginWithNPCPlacerDelegates(t *testing.T) {
	f := newControllerFixture(t)
	npc := worldObject(mgl64.Vec3{0, 100, 0}, scene.KindActor, scene.LayerBiped)
	f.world.Add(npc)
	f.sel.Select(npc.ID)

	placer := &stubPlacer{accept: true}
	f.ctrl.npcPlacer = placer

	assert.False(t, f.ctrl.Begin(npc.ID))
	assert.Equal(t, []scene.ObjectID{npc.ID}, placer.began)
	assert.Empty(t, f.notify.messages)
}

type stubPlacer struct {
	accept bool
	began  []scene.ObjectID
}

func (p *stubPlacer) Begin(id scene.ObjectID) bool {
	p.began = append(p.began, id)
	return p.accept
}

func TestPushStickMovesObjectAway(t *testing.T) {
	f := newControllerFixture(t)
	obj := f.addProp(mgl64.Vec3{0, 100, 0})
	require.True(t, f.ctrl.Begin(obj.ID))

	f.ctrl.HandleStick(input.Stick{Y: 1})
	for i := 0; i < 60; i++ {
		f.ctrl.OnFrameUpdate(frameDt)
	}

	moved, _ := f.world.Lookup(obj.ID)
	assert.Greater(t, moved.Transform.Position.Y(), 150.0)
}

func TestPullStickClampsAtMinDistance(t *testing.T) {
	f := newControllerFixture(t)
	obj := f.addProp(mgl64.Vec3{0, 100, 0})
	require.True(t, f.ctrl.Begin(obj.ID))

	f.ctrl.HandleStick(input.Stick{Y: -1})
	for i := 0; i < 300; i++ {
		f.ctrl.OnFrameUpdate(frameDt)
	}

	moved, _ := f.world.Lookup(obj.ID)
	assert.InDelta(t, 50, moved.Transform.Position.Y(), 1.0)
}

func TestRotateStickTurnsObject(t *testing.T) {
	f := newControllerFixture(t)
	obj := f.addProp(mgl64.Vec3{0, 100, 0})
	require.True(t, f.ctrl.Begin(obj.ID))

	f.ctrl.HandleStick(input.Stick{X: 1})
	for i := 0; i < 30; i++ {
		f.ctrl.OnFrameUpdate(frameDt)
	}

	moved, _ := f.world.Lookup(obj.ID)
	assert.NotEqual(t, 0.0, moved.Euler.Z())
}

func TestScaleModeScalesAndClamps(t *testing.T) {
	f := newControllerFixture(t)
	obj := f.addProp(mgl64.Vec3{0, 100, 0})
	require.True(t, f.ctrl.Begin(obj.ID))

	f.ctrl.SetScaleMode(true)
	f.ctrl.HandleStick(input.Stick{Y: -1})
	for i := 0; i < 600; i++ {
		f.ctrl.OnFrameUpdate(frameDt)
	}

	moved, _ := f.world.Lookup(obj.ID)
	assert.InDelta(t, 0.1, moved.Transform.Scale, 1e-9, "scale clamps at the configured minimum")
}

func TestEndCommitRecordsOneAction(t *testing.T) {
	f := newControllerFixture(t)
	obj := f.addProp(mgl64.Vec3{0, 100, 0})
	require.True(t, f.ctrl.Begin(obj.ID))

	f.ctrl.HandleStick(input.Stick{Y: 1})
	for i := 0; i < 60; i++ {
		f.ctrl.OnFrameUpdate(frameDt)
	}

	id, recorded := f.ctrl.End(true)
	assert.True(t, recorded)
	assert.NotEqual(t, action.None, id)
	assert.Equal(t, 1, f.history.Len())

	newest, _ := f.history.Newest()
	assert.Equal(t, action.KIND_TRANSFORM, newest.Kind())
}

func TestEndCommitGroupRecordsMultiTransform(t *testing.T) {
	f := newControllerFixture(t)
	a := f.addProp(mgl64.Vec3{0, 100, 0})
	b := f.addProp(mgl64.Vec3{10, 100, 0})
	f.sel.Select(a.ID)
	f.sel.Select(b.ID)
	require.True(t, f.ctrl.Begin(a.ID))

	f.ctrl.HandleStick(input.Stick{Y: 1})
	for i := 0; i < 60; i++ {
		f.ctrl.OnFrameUpdate(frameDt)
	}

	_, recorded := f.ctrl.End(true)
	assert.True(t, recorded)
	require.Equal(t, 1, f.history.Len())

	newest, _ := f.history.Newest()
	assert.Equal(t, action.KIND_MULTI_TRANSFORM, newest.Kind())
}

func TestEndWithoutMovementRecordsNothing(t *testing.T) {
	f := newControllerFixture(t)
	// Object already on the aim line at its hold distance: the grab does not
	// displace it, so there is nothing worth recording.
	obj := f.addProp(mgl64.Vec3{0, 100, 0})
	require.True(t, f.ctrl.Begin(obj.ID))
	f.ctrl.OnFrameUpdate(frameDt)

	_, recorded := f.ctrl.End(true)
	assert.False(t, recorded)
	assert.Equal(t, 0, f.history.Len())
}

func TestEndRestoresCollision(t *testing.T) {
	f := newControllerFixture(t)
	obj := f.addProp(mgl64.Vec3{0, 100, 0})
	require.True(t, f.ctrl.Begin(obj.ID))

	f.ctrl.End(true)
	assert.Equal(t, []scene.ObjectID{obj.ID}, f.col.restored)
	assert.False(t, f.ctrl.Active())
}

func TestEndDefersCollisionUnderActor(t *testing.T) {
	f := newControllerFixture(t)
	obj := f.addProp(mgl64.Vec3{0, 100, 0})
	require.True(t, f.ctrl.Begin(obj.ID))

	// Someone climbed on while it was held.
	f.col.standing[obj.ID] = true
	f.ctrl.End(true)

	assert.Empty(t, f.col.restored)
	assert.Equal(t, 1, f.deferred.Len())
}

func TestEndWithoutCommitRecordsNothing(t *testing.T) {
	f := newControllerFixture(t)
	obj := f.addProp(mgl64.Vec3{0, 100, 0})
	require.True(t, f.ctrl.Begin(obj.ID))

	f.ctrl.HandleStick(input.Stick{Y: 1})
	for i := 0; i < 60; i++ {
		f.ctrl.OnFrameUpdate(frameDt)
	}

	_, recorded := f.ctrl.End(false)
	assert.False(t, recorded)
	assert.Equal(t, 0, f.history.Len())
}

func TestPrecisionRotationRejectedForGroups(t *testing.T) {
	f := newControllerFixture(t)
	a := f.addProp(mgl64.Vec3{0, 100, 0})
	b := f.addProp(mgl64.Vec3{10, 100, 0})
	f.sel.Select(a.ID)
	f.sel.Select(b.ID)
	require.True(t, f.ctrl.Begin(a.ID))

	f.ctrl.HandleTrigger(1.0)
	f.ctrl.OnFrameUpdate(frameDt)
	f.ctrl.OnFrameUpdate(frameDt)
	f.ctrl.OnFrameUpdate(frameDt)

	assert.Equal(t, []string{"Precision rotation needs a single object"}, f.notify.messages,
		"rejection fires once per squeeze, not per frame")
}

func TestPrecisionGestureFoldsIntoFinalAction(t *testing.T) {
	f := newControllerFixture(t)
	obj := f.addProp(mgl64.Vec3{0, 100, 0})
	require.True(t, f.ctrl.Begin(obj.ID))

	// Squeeze, twist the left wrist, release: one intermediate entry.
	f.ctrl.HandleTrigger(1.0)
	f.ctrl.OnFrameUpdate(frameDt)
	f.hands.poses[scene.HandLeft] = scene.HandPose{
		Position: mgl64.Vec3{-20, 0, 0},
		Rotation: xform.RotationAroundZ(0.6),
	}
	f.ctrl.OnFrameUpdate(frameDt)
	f.ctrl.HandleTrigger(0.0)
	f.ctrl.OnFrameUpdate(frameDt)
	assert.Equal(t, 1, f.history.Len(), "gesture records an intermediate entry")

	// Move the group and release: the intermediate entry folds into the
	// single grab action instead of piling up.
	f.ctrl.HandleStick(input.Stick{Y: 1})
	for i := 0; i < 60; i++ {
		f.ctrl.OnFrameUpdate(frameDt)
	}
	_, recorded := f.ctrl.End(true)
	assert.True(t, recorded)
	assert.Equal(t, 1, f.history.Len())
}

func TestBeginUnresolvableObjectNotifies(t *testing.T) {
	f := newControllerFixture(t)
	obj := f.addProp(mgl64.Vec3{0, 100, 0})
	f.sel.Select(obj.ID)
	f.world.Remove(obj.ID)

	// The whole group vanished between selecting and grabbing: the user
	// hears about it instead of the grip silently doing nothing.
	assert.False(t, f.ctrl.Begin(obj.ID))
	assert.False(t, f.ctrl.Active())
	assert.Contains(t, f.notify.messages, "Nothing to grab")
}

func TestFarObjectAcceleratesWithoutHold(t *testing.T) {
	f := newControllerFixture(t)
	obj := f.addProp(mgl64.Vec3{0, 1000, 0})
	require.True(t, f.ctrl.Begin(obj.ID))

	// Past the far distance threshold the push speeds up right away; one
	// second of pushing covers well over the base move speed.
	f.ctrl.HandleStick(input.Stick{Y: 1})
	for i := 0; i < 60; i++ {
		f.ctrl.OnFrameUpdate(frameDt)
	}

	moved, _ := f.world.Lookup(obj.ID)
	assert.Greater(t, moved.Transform.Position.Y(), 1250.0)
}

func TestPrecisionRotationActsInObjectLocalFrame(t *testing.T) {
	f := newControllerFixture(t)
	obj := f.addProp(mgl64.Vec3{0, 100, 0})

	pitched := xform.EulerToMatrix(mgl64.Vec3{0.9, 0, 0})
	f.world.SetTransform(obj.ID, xform.Transform{
		Position: mgl64.Vec3{0, 100, 0},
		Rotation: pitched,
		Scale:    1,
	}, mgl64.Vec3{0.9, 0, 0})

	require.True(t, f.ctrl.Begin(obj.ID))
	f.ctrl.HandleTrigger(1.0)
	f.ctrl.OnFrameUpdate(frameDt)
	f.hands.poses[scene.HandLeft] = scene.HandPose{
		Position: mgl64.Vec3{-20, 0, 0},
		Rotation: xform.RotationAroundZ(0.6),
	}
	f.ctrl.OnFrameUpdate(frameDt)

	// Wrist yaw turns the object around its own pitched axis, not the
	// world's. The counter-rotated delta composes after the object's
	// rotation; with pitch in play the two orders are distinct.
	delta := xform.RotationAroundZ(-0.6)
	moved, _ := f.world.Lookup(obj.ID)
	assert.True(t, moved.Transform.Rotation.ApproxEqualThreshold(pitched.Mul3(delta), 1e-9))
	assert.False(t, moved.Transform.Rotation.ApproxEqualThreshold(delta.Mul3(pitched), 1e-9))
}

func TestEndKeepsLastFrameGroundDecision(t *testing.T) {
	f := newControllerFixture(t)
	obj := f.addProp(mgl64.Vec3{0, 100, 0})

	ray := &switchRay{}
	f.ctrl.ray = ray

	require.True(t, f.ctrl.Begin(obj.ID))
	require.True(t, f.ctrl.ToggleGroundSnap())
	f.ctrl.OnFrameUpdate(frameDt)

	// The ground ray starts hitting only after the last visible frame.
	// Finalization keeps each object's shown decision, so the release does
	// not drop the object onto a surface the user never saw it land on.
	ray.result = scene.RaycastHit{
		Hit:      true,
		Position: mgl64.Vec3{0, 100, -50},
		Normal:   mgl64.Vec3{0, 0, 1},
	}
	f.ctrl.End(true)

	moved, _ := f.world.Lookup(obj.ID)
	assert.InDelta(t, 0, moved.Transform.Position.Z(), 1e-6)
}

func TestGripDragsGroupAndBakesOnRelease(t *testing.T) {
	f := newControllerFixture(t)
	obj := f.addProp(mgl64.Vec3{0, 100, 0})
	require.True(t, f.ctrl.Begin(obj.ID))

	f.ctrl.HandleGrip(1.0)
	f.ctrl.OnFrameUpdate(frameDt)

	f.hands.poses[scene.HandLeft] = scene.HandPose{
		Position: mgl64.Vec3{10, 0, 0},
		Rotation: mgl64.Ident3(),
	}
	for i := 0; i < 120; i++ {
		f.ctrl.OnFrameUpdate(frameDt)
	}

	moved, _ := f.world.Lookup(obj.ID)
	assert.InDelta(t, 30, moved.Transform.Position.X(), 1.0, "the group follows the off hand")

	// Releasing the grip bakes the offset; the group does not snap back.
	f.ctrl.HandleGrip(0.0)
	for i := 0; i < 30; i++ {
		f.ctrl.OnFrameUpdate(frameDt)
	}
	moved, _ = f.world.Lookup(obj.ID)
	assert.InDelta(t, 30, moved.Transform.Position.X(), 1.0)
}

func TestToggleGroundSnap(t *testing.T) {
	f := newControllerFixture(t)
	assert.True(t, f.ctrl.ToggleGroundSnap())
	assert.False(t, f.ctrl.ToggleGroundSnap())
}

func TestCaptureGridOverride(t *testing.T) {
	f := newControllerFixture(t)
	a := f.addProp(mgl64.Vec3{0, 0, 0})
	b := f.addProp(mgl64.Vec3{45, 0, 0})

	assert.True(t, f.ctrl.CaptureGridOverride(a.ID, b.ID))
	assert.False(t, f.ctrl.CaptureGridOverride(a.ID, scene.NewObjectID()))
}

func TestBeginWhileActiveIsNoOp(t *testing.T) {
	f := newControllerFixture(t)
	obj := f.addProp(mgl64.Vec3{0, 100, 0})
	require.True(t, f.ctrl.Begin(obj.ID))
	assert.True(t, f.ctrl.Begin(obj.ID))
	assert.Equal(t, []scene.ObjectID{obj.ID}, f.ctrl.Objects())
}

func TestEndWhileInactiveIsNoOp(t *testing.T) {
	f := newControllerFixture(t)
	id, recorded := f.ctrl.End(true)
	assert.Equal(t, action.None, id)
	assert.False(t, recorded)
}
