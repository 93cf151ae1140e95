package swarm

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig wraps every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid swarm config")

// Boundary selects what happens when a particle leaves the search box.
type Boundary string

const (
	// BoundaryClamp pins the position to the violated bound and zeroes that
	// velocity component.
	BoundaryClamp Boundary = "clamp"
	// BoundaryReflect mirrors the position back inside the box and reverses
	// that velocity component.
	BoundaryReflect Boundary = "reflect"
)

// Default swarm parameters.
const (
	DefaultSwarmSize       = 30
	DefaultInertia         = 0.5
	DefaultCognitive       = 1.5
	DefaultSocial          = 1.5
	DefaultLowerBound      = 0.0
	DefaultUpperBound      = 23.0
	DefaultInitialVelocity = 1.0
)

// Config holds the swarm parameters.
type Config struct {
	SwarmSize int     `json:"swarm_size"`
	Inertia   float64 `json:"inertia"`
	Cognitive float64 `json:"cognitive"`
	Social    float64 `json:"social"`

	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`

	// InitialVelocity is the half-width of the uniform range initial
	// velocities are drawn from. Zero starts every particle at rest.
	InitialVelocity float64 `json:"initial_velocity"`
	// MaxVelocity caps each velocity component. Zero disables the cap.
	MaxVelocity float64  `json:"max_velocity"`
	Boundary    Boundary `json:"boundary"`

	// Workers > 1 evaluates particles concurrently. The objective must then
	// be safe for concurrent use.
	Workers int `json:"workers"`
	// Seed seeds the random source when none is injected. Zero picks a
	// time-based seed.
	Seed int64 `json:"seed"`
}

// Defaults returns a Config with conventional PSO coefficients over the
// hour range [0,23].
func Defaults() Config {
	return Config{
		SwarmSize:       DefaultSwarmSize,
		Inertia:         DefaultInertia,
		Cognitive:       DefaultCognitive,
		Social:          DefaultSocial,
		LowerBound:      DefaultLowerBound,
		UpperBound:      DefaultUpperBound,
		InitialVelocity: DefaultInitialVelocity,
		Boundary:        BoundaryClamp,
		Workers:         1,
	}
}

// Validate checks every parameter and returns an error wrapping
// ErrInvalidConfig.
func (c Config) Validate() error {
	if c.SwarmSize <= 0 {
		return fmt.Errorf("%w: swarm_size %d must be positive", ErrInvalidConfig, c.SwarmSize)
	}
	for name, v := range map[string]float64{
		"inertia":          c.Inertia,
		"cognitive":        c.Cognitive,
		"social":           c.Social,
		"initial_velocity": c.InitialVelocity,
		"max_velocity":     c.MaxVelocity,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s %v must be finite and non-negative", ErrInvalidConfig, name, v)
		}
	}
	if math.IsNaN(c.LowerBound) || math.IsInf(c.LowerBound, 0) ||
		math.IsNaN(c.UpperBound) || math.IsInf(c.UpperBound, 0) {
		return fmt.Errorf("%w: bounds must be finite", ErrInvalidConfig)
	}
	if c.LowerBound >= c.UpperBound {
		return fmt.Errorf("%w: lower_bound %v must be below upper_bound %v", ErrInvalidConfig, c.LowerBound, c.UpperBound)
	}
	switch c.Boundary {
	case BoundaryClamp, BoundaryReflect:
	default:
		return fmt.Errorf("%w: unknown boundary policy %q", ErrInvalidConfig, c.Boundary)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d must not be negative", ErrInvalidConfig, c.Workers)
	}
	return nil
}
