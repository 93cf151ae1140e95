package config

import (
	"fmt"

	"github.com/kilianp07/loadshift/core/swarm"
)

// DefaultIterations is the number of swarm sweeps per run.
const DefaultIterations = 100

// DefaultDataPath is the appliance dataset read when none is configured.
const DefaultDataPath = "data/appliances.csv"

// OptimizerConfig holds the run length and swarm parameters.
type OptimizerConfig struct {
	Iterations int          `json:"iterations"`
	Swarm      swarm.Config `json:"swarm"`
}

// SetDefaults applies the default iteration count.
func (c *OptimizerConfig) SetDefaults() {
	if c.Iterations == 0 {
		c.Iterations = DefaultIterations
	}
}

// Validate checks the iteration count and the swarm parameters.
func (c OptimizerConfig) Validate() error {
	if c.Iterations <= 0 {
		return fmt.Errorf("%w: iterations %d must be positive", swarm.ErrInvalidIterations, c.Iterations)
	}
	return c.Swarm.Validate()
}

// DataConfig locates the appliance dataset.
type DataConfig struct {
	Path string `json:"path"`
}

// SetDefaults applies DefaultDataPath.
func (c *DataConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = DefaultDataPath
	}
}
