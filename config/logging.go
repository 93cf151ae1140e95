package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

// DefaultLogLevel is used when logging.level is unset.
const DefaultLogLevel = "info"

// LoggingConfig defines the global log level.
type LoggingConfig struct {
	Level string `json:"level"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = DefaultLogLevel
	}
}

// Validate checks that the level is known to zerolog.
func (c LoggingConfig) Validate() error {
	if _, err := zerolog.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("unknown level %q", c.Level)
	}
	return nil
}
