package xform

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Angles are radians. Matrices follow the row-vector convention of the host
// engine (v' = v * M): for a pure Z rotation, entry[0][1] = +sin and
// entry[1][0] = -sin. mgl64.Mat3 is column-major in memory, so entries are
// addressed through At/row helpers rather than raw indices.

// mat3 builds a matrix from row-ordered entries.
func mat3(m00, m01, m02, m10, m11, m12, m20, m21, m22 float64) mgl64.Mat3 {
	return mgl64.Mat3{
		m00, m10, m20,
		m01, m11, m21,
		m02, m12, m22,
	}
}

// EulerToMatrix converts (x, y, z) Euler angles to a rotation matrix,
// matching the host engine's SetEulerAnglesXYZ exactly.
func EulerToMatrix(angles mgl64.Vec3) mgl64.Mat3 {
	cx := math.Cos(angles.X())
	sx := math.Sin(angles.X())
	cy := math.Cos(angles.Y())
	sy := math.Sin(angles.Y())
	cz := math.Cos(angles.Z())
	sz := math.Sin(angles.Z())

	return mat3(
		cy*cz, cy*sz, -sy,
		sx*sy*cz-cx*sz, sx*sy*sz+cx*cz, sx*cy,
		cx*sy*cz+sx*sz, cx*sy*sz-sx*cz, cx*cy,
	)
}

// MatrixToEuler extracts (x, y, z) Euler angles from a rotation matrix.
// This extraction is lossy near the gimbal singularity; callers that need
// to restore an orientation exactly must carry the original angles instead
// of round-tripping through a matrix.
func MatrixToEuler(m mgl64.Mat3) mgl64.Vec3 {
	sy := math.Sqrt(m.At(0, 0)*m.At(0, 0) + m.At(1, 0)*m.At(1, 0))
	singular := sy < 1e-6

	if !singular {
		return mgl64.Vec3{
			math.Atan2(m.At(2, 1), m.At(2, 2)),
			math.Atan2(-m.At(2, 0), sy),
			math.Atan2(m.At(1, 0), m.At(0, 0)),
		}
	}
	return mgl64.Vec3{
		math.Atan2(-m.At(1, 2), m.At(1, 1)),
		math.Atan2(-m.At(2, 0), sy),
		0,
	}
}

// ExtractZRotation reads the yaw directly off a rotation matrix.
// entry[0][0] = cosY*cosZ and entry[0][1] = cosY*sinZ, so the ratio is
// unaffected by pitch as long as cosY is nonzero.
func ExtractZRotation(m mgl64.Mat3) float64 {
	return math.Atan2(m.At(0, 1), m.At(0, 0))
}

// RotationAroundZ builds a pure Z-axis rotation matrix.
func RotationAroundZ(angle float64) mgl64.Mat3 {
	c := math.Cos(angle)
	s := math.Sin(angle)
	return mat3(
		c, s, 0,
		-s, c, 0,
		0, 0, 1,
	)
}

// RotatePointAroundZ rotates point around a vertical axis through origin.
// Z is unchanged.
func RotatePointAroundZ(point, origin mgl64.Vec3, angle float64) mgl64.Vec3 {
	c := math.Cos(angle)
	s := math.Sin(angle)

	dx := point.X() - origin.X()
	dy := point.Y() - origin.Y()

	return mgl64.Vec3{
		origin.X() + dx*c - dy*s,
		origin.Y() + dx*s + dy*c,
		point.Z(),
	}
}

// SurfaceNormalToEuler derives pitch and roll so the object's local up axis
// aligns with the given surface normal, preserving the caller's yaw.
//
// For R = Rx(pitch) * Ry(roll), the local Z axis maps to
// (sin(roll), -sin(pitch)*cos(roll), cos(pitch)*cos(roll)). Solving for a
// unit normal gives roll = atan2(nx, sqrt(ny²+nz²)) and
// pitch = atan2(-ny, nz). A normal pointing almost straight along ±X is the
// gimbal case: roll pins to ±90° and pitch collapses to zero.
func SurfaceNormalToEuler(normal mgl64.Vec3, preservedYaw float64) mgl64.Vec3 {
	nx := normal.X()
	ny := normal.Y()
	nz := normal.Z()

	cosRoll := math.Sqrt(ny*ny + nz*nz)

	var pitch, roll float64
	if cosRoll > 1e-6 {
		roll = math.Atan2(nx, cosRoll)
		pitch = math.Atan2(-ny, nz)
	} else {
		if nx > 0 {
			roll = math.Pi / 2
		} else {
			roll = -math.Pi / 2
		}
		pitch = 0
	}

	return mgl64.Vec3{pitch, roll, preservedYaw}
}

// NormalizeAngle wraps an angle into (-π, π].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// SnapAngle rounds an angle to the nearest multiple of step.
func SnapAngle(a, step float64) float64 {
	if step <= 0 {
		return a
	}
	return math.Round(a/step) * step
}

// Mat3ToQuat converts a rotation matrix to a quaternion.
func Mat3ToQuat(m mgl64.Mat3) mgl64.Quat {
	return mgl64.Mat4ToQuat(m.Mat4())
}

// QuatToMat3 converts a quaternion back to a rotation matrix.
func QuatToMat3(q mgl64.Quat) mgl64.Mat3 {
	return q.Mat4().Mat3()
}
