package xform

import "github.com/go-gl/mathgl/mgl64"

// Transform represents a world pose: position, rotation matrix and uniform scale
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Mat3
	Scale    float64
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.Ident3(),
		Scale:    1.0,
	}
}
