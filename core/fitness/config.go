package fitness

import (
	"errors"
	"math"
)

// Default weighting of the fitness terms.
const (
	DefaultCapacityKW       = 5.0
	DefaultPenaltyFactor    = 10000.0
	DefaultDiscomfortWeight = 0.1
)

// Config holds the constants that combine cost, discomfort and the capacity
// penalty into one fitness value.
type Config struct {
	// CapacityKW is the hard peak-power limit of the household.
	CapacityKW float64 `json:"capacity_kw"`
	// PenaltyFactor multiplies the kW by which the worst hour exceeds CapacityKW.
	PenaltyFactor float64 `json:"penalty_factor"`
	// DiscomfortWeight converts hours of deviation into cost units.
	DiscomfortWeight float64 `json:"discomfort_weight"`
	// CircularDiscomfort measures deviation around the clock (23h -> 0h is one
	// hour). The default linear distance scores it as 23 hours.
	CircularDiscomfort bool `json:"circular_discomfort"`
}

// DefaultConfig returns the 5 kW / 10000 / 0.1 weighting.
func DefaultConfig() Config {
	return Config{
		CapacityKW:       DefaultCapacityKW,
		PenaltyFactor:    DefaultPenaltyFactor,
		DiscomfortWeight: DefaultDiscomfortWeight,
	}
}

// SetDefaults replaces unset values with the defaults.
func (c *Config) SetDefaults() {
	if c.CapacityKW == 0 {
		c.CapacityKW = DefaultCapacityKW
	}
	if c.PenaltyFactor == 0 {
		c.PenaltyFactor = DefaultPenaltyFactor
	}
	if c.DiscomfortWeight == 0 {
		c.DiscomfortWeight = DefaultDiscomfortWeight
	}
}

// Validate rejects non-positive capacity and negative or non-finite weights.
func (c Config) Validate() error {
	if !finite(c.CapacityKW) || c.CapacityKW <= 0 {
		return errors.New("capacity_kw must be positive")
	}
	if !finite(c.PenaltyFactor) || c.PenaltyFactor < 0 {
		return errors.New("penalty_factor must not be negative")
	}
	if !finite(c.DiscomfortWeight) || c.DiscomfortWeight < 0 {
		return errors.New("discomfort_weight must not be negative")
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
