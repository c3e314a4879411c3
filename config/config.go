// Package config holds the editor's tunables, loadable from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Options struct {
	Grab     GrabOptions     `yaml:"grab"`
	Snap     SnapOptions     `yaml:"snap"`
	Accel    AccelOptions    `yaml:"accel"`
	EditMode EditModeOptions `yaml:"edit_mode"`
}

type GrabOptions struct {
	// MinHoldDistance keeps grabbed objects from being reeled into the hand.
	MinHoldDistance      float64 `yaml:"min_hold_distance"`
	MoveSpeed            float64 `yaml:"move_speed"`
	RotateSpeed          float64 `yaml:"rotate_speed"`
	ThumbstickDeadzone   float64 `yaml:"thumbstick_deadzone"`
	ScaleSpeed           float64 `yaml:"scale_speed"`
	MinScale             float64 `yaml:"min_scale"`
	MaxScale             float64 `yaml:"max_scale"`
	GroundRayMaxDistance float64 `yaml:"ground_ray_max_distance"`
	SmootherSpeed        float64 `yaml:"smoother_speed"`
	GroupMove            bool    `yaml:"group_move"`
	TouchingExpansion    float64 `yaml:"touching_expansion"`
	TouchingRadius       float64 `yaml:"touching_radius"`
	TouchingMaxResults   int     `yaml:"touching_max_results"`
}

type SnapOptions struct {
	PositionGrid    float64 `yaml:"position_grid"`
	RotationStops   int     `yaml:"rotation_stops"`
	SmootherSpeed   float64 `yaml:"smoother_speed"`
	PositionEnabled bool    `yaml:"position_enabled"`
	RotationEnabled bool    `yaml:"rotation_enabled"`
}

type AccelOptions struct {
	// FastModeThreshold is how long a sustained push lasts before fast
	// mode engages.
	FastModeThreshold     float64 `yaml:"fast_mode_threshold"`
	FarDistanceThreshold  float64 `yaml:"far_distance_threshold"`
	SlowdownDistance      float64 `yaml:"slowdown_distance"`
	FastMoveMultiplier    float64 `yaml:"fast_move_multiplier"`
	SpeedTransitionTime   float64 `yaml:"speed_transition_time"`
	FullThrottleThreshold float64 `yaml:"full_throttle_threshold"`
	RequireFullThrottle   bool    `yaml:"require_full_throttle"`
}

type EditModeOptions struct {
	// HoldThreshold separates a click (select) from a hold (grab), seconds.
	HoldThreshold   float64 `yaml:"hold_threshold"`
	DoubleTapWindow float64 `yaml:"double_tap_window"`
	SphereRadius    float64 `yaml:"sphere_radius"`
	SphereDistance  float64 `yaml:"sphere_distance"`
	RayMaxDistance  float64 `yaml:"ray_max_distance"`
}

func DefaultOptions() Options {
	return Options{
		Grab: GrabOptions{
			MinHoldDistance:      50,
			MoveSpeed:            200,
			RotateSpeed:          2.0,
			ThumbstickDeadzone:   0.15,
			ScaleSpeed:           1.0,
			MinScale:             0.1,
			MaxScale:             100,
			GroundRayMaxDistance: 2000,
			SmootherSpeed:        20,
			GroupMove:            true,
			TouchingExpansion:    5,
			TouchingRadius:       400,
			TouchingMaxResults:   30,
		},
		Snap: SnapOptions{
			PositionGrid:    20,
			RotationStops:   24,
			SmootherSpeed:   16,
			PositionEnabled: true,
			RotationEnabled: true,
		},
		Accel: AccelOptions{
			FastModeThreshold:     1.0,
			FarDistanceThreshold:  800,
			SlowdownDistance:      130,
			FastMoveMultiplier:    3.0,
			SpeedTransitionTime:   0.15,
			FullThrottleThreshold: 0.92,
			RequireFullThrottle:   true,
		},
		EditMode: EditModeOptions{
			HoldThreshold:   0.25,
			DoubleTapWindow: 0.35,
			SphereRadius:    50,
			SphereDistance:  150,
			RayMaxDistance:  5000,
		},
	}
}

// Load reads options from a YAML file on top of the defaults, so a partial
// file only overrides what it names.
func Load(path string) (Options, error) {
	opts := DefaultOptions()

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("reading options file: %w", err)
	}

	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parsing options file %s: %w", path, err)
	}

	opts.Validate()
	return opts, nil
}

// Validate clamps values that would break the controllers back to defaults.
func (o *Options) Validate() {
	def := DefaultOptions()

	if o.Grab.MinHoldDistance <= 0 {
		o.Grab.MinHoldDistance = def.Grab.MinHoldDistance
	}
	if o.Grab.MoveSpeed <= 0 {
		o.Grab.MoveSpeed = def.Grab.MoveSpeed
	}
	if o.Grab.ThumbstickDeadzone < 0 || o.Grab.ThumbstickDeadzone >= 1 {
		o.Grab.ThumbstickDeadzone = def.Grab.ThumbstickDeadzone
	}
	if o.Grab.MinScale <= 0 {
		o.Grab.MinScale = def.Grab.MinScale
	}
	if o.Grab.MaxScale < o.Grab.MinScale {
		o.Grab.MaxScale = def.Grab.MaxScale
	}
	if o.Grab.SmootherSpeed <= 0 {
		o.Grab.SmootherSpeed = def.Grab.SmootherSpeed
	}
	if o.Grab.GroundRayMaxDistance <= 0 {
		o.Grab.GroundRayMaxDistance = def.Grab.GroundRayMaxDistance
	}
	if o.Snap.PositionGrid <= 0 {
		o.Snap.PositionGrid = def.Snap.PositionGrid
	}
	if o.Snap.RotationStops <= 0 {
		o.Snap.RotationStops = def.Snap.RotationStops
	}
	if o.Snap.SmootherSpeed <= 0 {
		o.Snap.SmootherSpeed = def.Snap.SmootherSpeed
	}
	if o.Accel.SpeedTransitionTime <= 0 {
		o.Accel.SpeedTransitionTime = def.Accel.SpeedTransitionTime
	}
	if o.Accel.FastMoveMultiplier < 1 {
		o.Accel.FastMoveMultiplier = def.Accel.FastMoveMultiplier
	}
	if o.EditMode.HoldThreshold <= 0 {
		o.EditMode.HoldThreshold = def.EditMode.HoldThreshold
	}
	if o.EditMode.DoubleTapWindow <= 0 {
		o.EditMode.DoubleTapWindow = def.EditMode.DoubleTapWindow
	}
	if o.EditMode.RayMaxDistance <= 0 {
		o.EditMode.RayMaxDistance = def.EditMode.RayMaxDistance
	}
	if o.EditMode.SphereRadius <= 0 {
		o.EditMode.SphereRadius = def.EditMode.SphereRadius
	}
	if o.EditMode.SphereDistance <= 0 {
		o.EditMode.SphereDistance = def.EditMode.SphereDistance
	}
}
