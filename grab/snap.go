package grab

import (
	"math"

	"github.com/akmonengine/sculpt/config"
	"github.com/akmonengine/sculpt/xform"
	"github.com/go-gl/mathgl/mgl64"
)

// SnapPositionToGrid rounds a position to the nearest grid intersection,
// per axis.
func SnapPositionToGrid(p mgl64.Vec3, grid float64) mgl64.Vec3 {
	if grid <= 0 {
		return p
	}
	return mgl64.Vec3{
		math.Round(p.X()/grid) * grid,
		math.Round(p.Y()/grid) * grid,
		math.Round(p.Z()/grid) * grid,
	}
}

// GridOverride realigns the grid to reference objects instead of world
// origin: Offset anchors it, Scale stretches the cell size, RotationOffset
// shifts the rotation stops.
type GridOverride struct {
	Offset         mgl64.Vec3
	Scale          float64
	RotationOffset float64
	Active         bool
}

// SnapController owns the snapping state of a grab session: enabled flags,
// the optional grid override, and its own smoother so the jump between grid
// cells glides instead of popping.
type SnapController struct {
	cfg             config.SnapOptions
	positionEnabled bool
	rotationEnabled bool
	override        GridOverride
	smoother        *Smoother
	smoothing       bool
}

func NewSnapController(cfg config.SnapOptions) *SnapController {
	return &SnapController{
		cfg:             cfg,
		positionEnabled: cfg.PositionEnabled,
		rotationEnabled: cfg.RotationEnabled,
		smoother:        NewSmoother(cfg.SmootherSpeed),
	}
}

func (s *SnapController) Enabled() bool {
	return s.positionEnabled
}

func (s *SnapController) SetEnabled(enabled bool) {
	s.positionEnabled = enabled
	s.rotationEnabled = enabled
	if !enabled {
		s.ResetSmoothing()
	}
}

// Toggle flips snapping and returns the new state.
func (s *SnapController) Toggle() bool {
	s.SetEnabled(!s.positionEnabled)
	return s.positionEnabled
}

// RotationStep is the angular size of one rotation stop.
func (s *SnapController) RotationStep() float64 {
	if !s.rotationEnabled || s.cfg.RotationStops <= 0 {
		return 0
	}
	return 2 * math.Pi / float64(s.cfg.RotationStops)
}

func (s *SnapController) Override() GridOverride {
	return s.override
}

func (s *SnapController) SetOverride(o GridOverride) {
	s.override = o
	s.override.Active = true
	// Reseed the smoother so the new alignment applies immediately.
	s.ResetSmoothing()
}

func (s *SnapController) ClearOverride() {
	s.override = GridOverride{}
	s.ResetSmoothing()
}

// ComputeGridOverride derives an override from two reference positions and
// the first object's yaw: the grid is anchored at posA, its cell size
// stretched so a whole number of cells spans the two objects, and the
// rotation stops shifted to pass through rotA.
func (s *SnapController) ComputeGridOverride(posA, posB mgl64.Vec3, rotA float64) GridOverride {
	grid := s.cfg.PositionGrid

	step := 2 * math.Pi / float64(s.cfg.RotationStops)
	rotOffset := math.Mod(rotA, step)
	if rotOffset > step/2 {
		rotOffset -= step
	} else if rotOffset < -step/2 {
		rotOffset += step
	}

	dist := posB.Sub(posA).Len()
	if dist < 1e-6 {
		// Coincident references give no usable spacing or orientation.
		return GridOverride{Offset: posA, Scale: 1, Active: true}
	}

	n := math.Round(dist / grid)
	if n < 1 {
		n = 1
	}
	effective := dist / n

	return GridOverride{
		Offset:         posA,
		Scale:          effective / grid,
		RotationOffset: rotOffset,
		Active:         true,
	}
}

// ResetSmoothing drops the snap smoother state; the next snapped frame
// seeds it fresh.
func (s *SnapController) ResetSmoothing() {
	s.smoothing = false
	s.smoother.Reset()
}

// ComputeSmoothedSnap snaps the raw target pose to the grid and smooths the
// transition between grid cells. Returns the pose to aim at and its yaw.
// With snapping disabled the raw pose passes straight through.
func (s *SnapController) ComputeSmoothedSnap(raw xform.Transform, dt float64) (xform.Transform, float64) {
	if !s.positionEnabled {
		s.ResetSmoothing()
		return raw, xform.ExtractZRotation(raw.Rotation)
	}

	// Only the position snaps here; the rotation stays raw through the
	// smoother and each object's final yaw snaps in ComputePose.
	snapped := raw
	snapped.Position = s.snapPosition(raw.Position)

	if !s.smoothing {
		s.smoother.SetCurrent(snapped)
		s.smoothing = true
	}
	s.smoother.SetTarget(snapped)
	smoothed := s.smoother.Step(dt)

	return smoothed, xform.ExtractZRotation(smoothed.Rotation)
}

func (s *SnapController) snapPosition(p mgl64.Vec3) mgl64.Vec3 {
	grid := s.cfg.PositionGrid
	if !s.override.Active {
		return SnapPositionToGrid(p, grid)
	}
	effective := grid * s.override.Scale
	rel := p.Sub(s.override.Offset)
	return s.override.Offset.Add(SnapPositionToGrid(rel, effective))
}

// EffectiveRotationOffset is the shift of the rotation stops when an
// override is active, or zero on the default grid.
func (s *SnapController) EffectiveRotationOffset() float64 {
	if !s.override.Active {
		return 0
	}
	return s.override.RotationOffset
}
