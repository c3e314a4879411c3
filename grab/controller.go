package grab

import (
	"log/slog"
	"math"

	"github.com/akmonengine/sculpt/action"
	"github.com/akmonengine/sculpt/config"
	"github.com/akmonengine/sculpt/input"
	"github.com/akmonengine/sculpt/scene"
	"github.com/akmonengine/sculpt/xform"
	"github.com/go-gl/mathgl/mgl64"
)

// NPCPlacer handles the placement path for actors. Grabbing an NPC is a
// different interaction from grabbing furniture; when a selection holds
// exactly actors, the grab controller hands off here. Begin reports whether
// the placer took over.
type NPCPlacer interface {
	Begin(id scene.ObjectID) bool
}

type grabbedObject struct {
	snapshot          ObjectSnapshot
	collisionDisabled bool
	// grounded remembers whether the last frame ground-snapped this object,
	// so finalization lands it the way the user last saw it.
	grounded bool
}

// Controller runs a remote grab session: it owns the grabbed group, the
// hold distance, accumulated rotation and scale, and writes object poses
// every frame until the grab ends.
type Controller struct {
	cfg       config.GrabOptions
	world     scene.World
	ray       scene.Raycaster
	hands     scene.HandPoses
	collision scene.CollisionControl
	notify    scene.Notifier
	history   *action.Repository
	ids       *action.IDGenerator
	resolver  *Resolver
	snap      *SnapController
	accel     *Accel
	smoother  *Smoother
	deferred  *DeferredCollisions
	handRot   *HandRotation
	handTrans *HandTranslation
	npcPlacer NPCPlacer
	log       *slog.Logger

	active            bool
	objects           []grabbedObject
	pivot             mgl64.Vec3
	distance          float64
	accumAngle        float64
	scaleMul          float64
	scaleMode         bool
	groundSnap        bool
	stick             input.Stick
	trigger           float64
	grip              float64
	precisionRejected bool

	// gestureActions are intermediate precision-rotation entries, folded
	// into the final action when the grab ends.
	gestureActions []action.ID
	gestureStart   []action.ObjectState
}

type ControllerDeps struct {
	World     scene.World
	Ray       scene.Raycaster
	Hands     scene.HandPoses
	Collision scene.CollisionControl
	Notify    scene.Notifier
	History   *action.Repository
	IDs       *action.IDGenerator
	Resolver  *Resolver
	Snap      *SnapController
	Deferred  *DeferredCollisions
	NPCPlacer NPCPlacer
	Logger    *slog.Logger
}

func NewController(cfg config.Options, deps ControllerDeps) *Controller {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		cfg:       cfg.Grab,
		world:     deps.World,
		ray:       deps.Ray,
		hands:     deps.Hands,
		collision: deps.Collision,
		notify:    deps.Notify,
		history:   deps.History,
		ids:       deps.IDs,
		resolver:  deps.Resolver,
		snap:      deps.Snap,
		accel:     NewAccel(cfg.Accel),
		smoother:  NewSmoother(cfg.Grab.SmootherSpeed),
		deferred:  deps.Deferred,
		handRot:   NewHandRotation(),
		handTrans: NewHandTranslation(),
		npcPlacer: deps.NPCPlacer,
		log:       log,
		scaleMul:  1,
	}
}

func (c *Controller) Active() bool {
	return c.active
}

// Objects returns the ids being grabbed, in group order.
func (c *Controller) Objects() []scene.ObjectID {
	out := make([]scene.ObjectID, len(c.objects))
	for i, o := range c.objects {
		out[i] = o.snapshot.ID
	}
	return out
}

// Begin starts a grab on the primary object and reports whether a grab
// session is now running.
func (c *Controller) Begin(primary scene.ObjectID) bool {
	if c.active {
		return true
	}

	group, reason := c.resolver.Resolve(primary)
	if reason == SkipNPCOnlySelection {
		if len(group) == 1 && c.npcPlacer != nil && c.npcPlacer.Begin(group[0]) {
			return false
		}
		c.notify.Notify("Cannot grab actors")
		return false
	}

	hand, ok := c.hands.Pose(scene.HandRight)
	if !ok {
		return false
	}

	c.objects = c.objects[:0]
	for _, id := range group {
		obj, found := c.world.Lookup(id)
		if !found || obj.Kind == scene.KindActor {
			continue
		}
		c.objects = append(c.objects, grabbedObject{
			snapshot: ObjectSnapshot{
				ID:           id,
				Initial:      obj.Transform,
				InitialEuler: obj.Euler,
			},
		})
	}
	if len(c.objects) == 0 {
		c.notify.Notify("Nothing to grab")
		return false
	}

	for i := range c.objects {
		id := c.objects[i].snapshot.ID
		if c.collision.IsActorStandingOn(id) {
			continue
		}
		c.objects[i].collisionDisabled = c.collision.DisableCollision(id)
	}

	c.pivot = c.computePivot()
	for i := range c.objects {
		c.objects[i].snapshot.Offset = c.objects[i].snapshot.Initial.Position.Sub(c.pivot)
	}

	c.distance = math.Max(hand.Position.Sub(c.pivot).Len(), c.cfg.MinHoldDistance)
	c.accumAngle = 0
	c.scaleMul = 1
	c.scaleMode = false
	c.groundSnap = false
	c.stick = input.Stick{}
	c.trigger = 0
	c.grip = 0
	c.precisionRejected = false
	c.gestureActions = c.gestureActions[:0]
	c.handRot.Reset()
	c.handTrans.Reset()
	c.snap.ResetSmoothing()
	c.accel.Reset()

	// Snap the group to the aim point right away and seed the smoother so
	// the first frame does not ease in from the old pose.
	target := c.targetPose(hand)
	c.smoother.SetCurrent(target)
	c.applyPoses(target, xform.ExtractZRotation(target.Rotation))

	c.active = true
	c.log.Debug("grab started", "objects", len(c.objects), "reason", reason.String())
	return true
}

// pivot is the group's horizontal center at its lowest point, so the whole
// group hangs from where it meets the ground.
func (c *Controller) computePivot() mgl64.Vec3 {
	var sumX, sumY float64
	minZ := math.Inf(1)
	for _, o := range c.objects {
		p := o.snapshot.Initial.Position
		sumX += p.X()
		sumY += p.Y()
		minZ = math.Min(minZ, p.Z())
	}
	n := float64(len(c.objects))
	return mgl64.Vec3{sumX / n, sumY / n, minZ}
}

func (c *Controller) targetPose(hand scene.HandPose) xform.Transform {
	aim := hand.Position.Add(hand.Forward().Mul(c.distance))
	return xform.Transform{
		Position: aim,
		Rotation: xform.RotationAroundZ(c.accumAngle),
		Scale:    1,
	}
}

// HandleStick stores the raw right-stick deflection for the next frame.
func (c *Controller) HandleStick(s input.Stick) {
	c.stick = s
}

// HandleTrigger feeds the left trigger for precision rotation.
func (c *Controller) HandleTrigger(value float64) {
	c.trigger = value
}

// HandleGrip feeds the left grip for the drag gesture.
func (c *Controller) HandleGrip(value float64) {
	c.grip = value
}

// SetScaleMode switches the stick's Y axis between distance and scale.
func (c *Controller) SetScaleMode(on bool) {
	c.scaleMode = on
}

// ToggleGroundSnap flips ground snapping and returns the new state.
func (c *Controller) ToggleGroundSnap() bool {
	c.groundSnap = !c.groundSnap
	return c.groundSnap
}

// ToggleSnapping flips grid snapping and returns the new state.
func (c *Controller) ToggleSnapping() bool {
	return c.snap.Toggle()
}

// CaptureGridOverride aligns the snap grid to two reference objects.
func (c *Controller) CaptureGridOverride(a, b scene.ObjectID) bool {
	objA, okA := c.world.Lookup(a)
	objB, okB := c.world.Lookup(b)
	if !okA || !okB {
		return false
	}
	c.snap.SetOverride(c.snap.ComputeGridOverride(
		objA.Transform.Position,
		objB.Transform.Position,
		objA.Euler.Z(),
	))
	return true
}

func (c *Controller) OnFrameUpdate(dt float64) {
	if !c.active {
		return
	}
	hand, ok := c.hands.Pose(scene.HandRight)
	if !ok {
		return
	}

	shaped := c.stick.Shape(c.cfg.ThumbstickDeadzone)

	if c.scaleMode {
		c.scaleMul += shaped.Y * c.cfg.ScaleSpeed * dt
		c.scaleMul = mgl64.Clamp(c.scaleMul, c.cfg.MinScale, c.cfg.MaxScale)
		c.accel.Multiplier(dt, 0, c.distance)
	} else {
		mult := c.accel.Multiplier(dt, shaped.Y, c.distance)
		if shaped.Y != 0 {
			c.distance += shaped.Y * c.cfg.MoveSpeed * mult * dt
			c.distance = math.Max(c.distance, c.cfg.MinHoldDistance)
		}
	}

	c.accumAngle += shaped.X * c.cfg.RotateSpeed * dt

	c.updateHandRotation()
	c.updateHandTranslation(dt)

	c.smoother.SetTarget(c.targetPose(hand))
	smoothed := c.smoother.Step(dt)

	target, angle := c.snap.ComputeSmoothedSnap(smoothed, dt)
	c.applyPoses(target, angle)
}

func (c *Controller) calcInput(target xform.Transform, angle float64) CalcInput {
	// The drag offset shifts the whole group's aim point. It applies after
	// snapping so the grid does not quantize the gesture away.
	return CalcInput{
		Aim:              target.Position.Add(c.handTrans.Translation()),
		Angle:            angle,
		ScaleMul:         c.scaleMul,
		RotationSnapStep: c.snap.RotationStep(),
		GroundSnap:       c.groundSnap,
		Ray:              c.ray,
		GroundRayMax:     c.cfg.GroundRayMaxDistance,
	}
}

func (c *Controller) applyPoses(target xform.Transform, angle float64) {
	in := c.calcInput(target, angle)
	precision := c.precisionActive()

	for i := range c.objects {
		o := &c.objects[i]
		pose := ComputePose(o.snapshot, in)
		o.grounded = pose.Grounded
		if precision {
			pose = c.precisionPose(pose)
		}
		c.world.SetTransform(o.snapshot.ID, pose.Transform, pose.Euler)
	}
}

// applyFinalPoses writes the release placement. Each object keeps the
// ground-snap decision from its last visible frame instead of re-deciding,
// so the recorded result cannot disagree with what was shown.
func (c *Controller) applyFinalPoses(target xform.Transform, angle float64) {
	in := c.calcInput(target, angle)
	precision := c.precisionActive()

	for i := range c.objects {
		o := &c.objects[i]
		in.GroundSnap = o.grounded
		pose := ComputePose(o.snapshot, in)
		if precision {
			pose = c.precisionPose(pose)
		}
		c.world.SetTransform(o.snapshot.ID, pose.Transform, pose.Euler)
	}
}

func (c *Controller) precisionActive() bool {
	return len(c.objects) == 1 && (c.handRot.Engaged() || c.hasBakedRotation())
}

func (c *Controller) hasBakedRotation() bool {
	return !c.handRot.Rotation(mgl64.Ident3()).ApproxEqual(mgl64.Ident3())
}

// precisionPose layers the left-hand rotation over the computed pose. The
// rotation right-multiplies so it acts in the object's local frame, keeping
// wrist yaw/pitch/roll mapped to the object's own axes. The Euler angles
// have to come from the matrix here; free-hand rotation has no angle-space
// form. That is why precision gestures record their own history entries.
func (c *Controller) precisionPose(pose Pose) Pose {
	handRot := mgl64.Ident3()
	if left, ok := c.hands.Pose(scene.HandLeft); ok {
		handRot = left.Rotation
	}
	pose.Transform.Rotation = pose.Transform.Rotation.Mul3(c.handRot.Rotation(handRot))
	pose.Euler = xform.MatrixToEuler(pose.Transform.Rotation)
	return pose
}

func (c *Controller) updateHandRotation() {
	left, ok := c.hands.Pose(scene.HandLeft)
	if !ok {
		return
	}

	if !c.handRot.Engaged() && c.trigger >= handRotEngageThreshold && len(c.objects) > 1 {
		if !c.precisionRejected {
			c.precisionRejected = true
			c.notify.Notify("Precision rotation needs a single object")
		}
		return
	}
	if c.trigger < handRotReleaseThreshold {
		c.precisionRejected = false
	}

	engaged, released := c.handRot.Update(c.trigger, left.Rotation)
	if engaged {
		obj, found := c.world.Lookup(c.objects[0].snapshot.ID)
		if found {
			c.gestureStart = append(c.gestureStart[:0], action.ObjectState{
				Transform: obj.Transform,
				Euler:     obj.Euler,
			})
		}
	}
	if released {
		c.recordGesture()
	}
}

func (c *Controller) updateHandTranslation(dt float64) {
	left, ok := c.hands.Pose(scene.HandLeft)
	if !ok {
		return
	}
	c.handTrans.Update(c.grip, left.Position)
	c.handTrans.Step(dt, left.Position)
}

// recordGesture stores an intermediate undo entry for one precision
// rotation gesture. These entries survive only until the grab ends; End
// removes them and records the whole grab as one action.
func (c *Controller) recordGesture() {
	if len(c.objects) != 1 || len(c.gestureStart) == 0 {
		return
	}
	obj, found := c.world.Lookup(c.objects[0].snapshot.ID)
	if !found {
		return
	}

	id := c.ids.Next()
	c.history.Add(action.Transform{
		ActionID: id,
		ObjectChange: action.ObjectChange{
			Object: obj.ID,
			Before: c.gestureStart[0],
			After:  action.ObjectState{Transform: obj.Transform, Euler: obj.Euler},
		},
	})
	c.gestureActions = append(c.gestureActions, id)
	c.gestureStart = c.gestureStart[:0]
}

// End finishes the grab. With commit true the final poses are written and
// one action is recorded; with commit false the objects are left where the
// last frame put them and nothing is recorded.
func (c *Controller) End(commit bool) (action.ID, bool) {
	if !c.active {
		return action.None, false
	}
	c.active = false

	// Final placement reuses the smoother's current pose through the same
	// calculator the per-frame update used, so nothing jumps on release.
	final := c.smoother.Current()
	target, angle := c.snap.ComputeSmoothedSnap(final, 0)
	c.applyFinalPoses(target, angle)

	for _, o := range c.objects {
		if !o.collisionDisabled {
			continue
		}
		if c.collision.IsActorStandingOn(o.snapshot.ID) {
			c.deferred.Register(o.snapshot.ID)
		} else {
			c.collision.RestoreCollision(o.snapshot.ID)
		}
	}

	for _, id := range c.gestureActions {
		c.history.Remove(id)
	}
	c.gestureActions = c.gestureActions[:0]

	var recorded action.ID
	var ok bool
	if commit {
		recorded, ok = c.recordResult()
	}

	c.objects = c.objects[:0]
	c.handRot.Reset()
	c.handTrans.Reset()
	c.log.Debug("grab ended", "committed", commit, "recorded", ok)
	return recorded, ok
}

// recordResult records the grab as one history entry, including only the
// objects that noticeably changed.
func (c *Controller) recordResult() (action.ID, bool) {
	var changes []action.ObjectChange
	for _, o := range c.objects {
		obj, found := c.world.Lookup(o.snapshot.ID)
		if !found {
			continue
		}

		distSq := obj.Transform.Position.Sub(o.snapshot.Initial.Position).LenSqr()
		scaleChange := math.Abs(obj.Transform.Scale - o.snapshot.Initial.Scale)
		if distSq < 1.0 && scaleChange <= 0.001 {
			continue
		}

		changes = append(changes, action.ObjectChange{
			Object: o.snapshot.ID,
			Before: action.ObjectState{Transform: o.snapshot.Initial, Euler: o.snapshot.InitialEuler},
			After:  action.ObjectState{Transform: obj.Transform, Euler: obj.Euler},
		})
	}

	switch len(changes) {
	case 0:
		return action.None, false
	case 1:
		id := c.ids.Next()
		c.history.Add(action.Transform{ActionID: id, ObjectChange: changes[0]})
		return id, true
	default:
		id := c.ids.Next()
		c.history.Add(action.MultiTransform{ActionID: id, Changes: changes})
		return id, true
	}
}
