package grab

import (
	"github.com/akmonengine/sculpt/scene"
	"github.com/akmonengine/sculpt/xform"
	"github.com/go-gl/mathgl/mgl64"
)

// ObjectSnapshot is one grabbed object's state captured at grab start.
// Initial pose and Euler angles come straight from the object's
// authoritative state and are never recomputed during the grab.
type ObjectSnapshot struct {
	ID           scene.ObjectID
	Initial      xform.Transform
	InitialEuler mgl64.Vec3
	// Offset is the object's position relative to the group pivot.
	Offset mgl64.Vec3
}

// Pose is a computed placement: the transform to write, the Euler angles it
// was built from, and whether the position landed on a surface below.
type Pose struct {
	Transform xform.Transform
	Euler     mgl64.Vec3
	Grounded  bool
}

// CalcInput is everything ComputePose needs for one frame. The per-frame
// update, action recording and finalization all build the same input, so
// all three see bit-identical results.
type CalcInput struct {
	Aim      mgl64.Vec3
	Angle    float64
	ScaleMul float64
	// RotationSnapStep snaps each object's final yaw when positive.
	RotationSnapStep float64
	GroundSnap       bool
	Ray              scene.Raycaster
	GroundRayMax     float64
}

var worldUp = mgl64.Vec3{0, 0, 1}
var worldDown = mgl64.Vec3{0, 0, -1}

// ComputePose places one grabbed object. This is the only function that
// turns grab state into a transform; every caller goes through it.
//
// The yaw is tracked in angle space, not matrix space: finalZ comes from
// the object's initial Euler yaw minus the accumulated angle, and the
// rotation matrix is the initial matrix composed with a pure Z delta. The
// angles never round-trip through a matrix, so undoing the grab can restore
// them exactly.
func ComputePose(obj ObjectSnapshot, in CalcInput) Pose {
	rotated := xform.RotatePointAroundZ(obj.Offset, mgl64.Vec3{}, in.Angle)
	position := in.Aim.Add(rotated.Mul(in.ScaleMul))

	finalZ := obj.InitialEuler.Z() - in.Angle
	if in.RotationSnapStep > 0 {
		finalZ = xform.SnapAngle(finalZ, in.RotationSnapStep)
	}

	if in.GroundSnap && in.Ray != nil {
		if pose, ok := groundPose(obj, in, position, finalZ); ok {
			return pose
		}
	}

	effectiveDelta := obj.InitialEuler.Z() - finalZ
	rotation := xform.RotationAroundZ(-effectiveDelta).Mul3(obj.Initial.Rotation)
	euler := mgl64.Vec3{obj.InitialEuler.X(), obj.InitialEuler.Y(), finalZ}

	return Pose{
		Transform: xform.Transform{
			Position: position,
			Rotation: rotation,
			Scale:    obj.Initial.Scale * in.ScaleMul,
		},
		Euler: euler,
	}
}

// groundPose drops the object onto whatever lies straight below the
// candidate position and tilts it to the surface. A miss falls back to the
// floating path.
func groundPose(obj ObjectSnapshot, in CalcInput, position mgl64.Vec3, finalZ float64) (Pose, bool) {
	hit := in.Ray.CastRay(position, worldDown, in.GroundRayMax)
	if !hit.Hit {
		return Pose{}, false
	}

	normal := hit.Normal
	if normal.Len() > 0.001 {
		normal = normal.Normalize()
	} else {
		normal = worldUp
	}

	euler := xform.SurfaceNormalToEuler(normal, finalZ)
	return Pose{
		Transform: xform.Transform{
			Position: hit.Position,
			Rotation: xform.EulerToMatrix(euler),
			Scale:    obj.Initial.Scale * in.ScaleMul,
		},
		Euler:    euler,
		Grounded: true,
	}, true
}
