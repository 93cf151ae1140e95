// Package config loads the service configuration from a YAML or JSON file
// with K_-prefixed environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/loadshift/core/fitness"
	"github.com/kilianp07/loadshift/core/metrics"
	"github.com/kilianp07/loadshift/core/swarm"
	"github.com/kilianp07/loadshift/core/tariff"
	"github.com/kilianp07/loadshift/infra/monitoring"
	"github.com/kilianp07/loadshift/infra/mqtt"
)

// EnvPrefix marks environment variables that override file values.
// K_OPTIMIZER__SWARM__SWARM_SIZE=50 sets optimizer.swarm.swarm_size.
const EnvPrefix = "K_"

type Config struct {
	Optimizer OptimizerConfig   `json:"optimizer"`
	Fitness   fitness.Config    `json:"fitness"`
	Tariff    tariff.TOU        `json:"tariff"`
	Data      DataConfig        `json:"data"`
	Metrics   metrics.Config    `json:"metrics"`
	MQTT      mqtt.Config       `json:"mqtt"`
	Sentry    monitoring.Config `json:"sentry"`
	Logging   LoggingConfig     `json:"logging"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Optimizer: OptimizerConfig{Iterations: DefaultIterations, Swarm: swarm.Defaults()},
		Fitness:   fitness.DefaultConfig(),
		Tariff:    tariff.DefaultTOU(),
		Data:      DataConfig{Path: DefaultDataPath},
		Logging:   LoggingConfig{Level: DefaultLogLevel},
	}
}

// Load reads path on top of Default, applies environment overrides and
// validates the result. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills values left at zero by the file.
func (c *Config) SetDefaults() {
	c.Optimizer.SetDefaults()
	c.Fitness.SetDefaults()
	c.Tariff.SetDefaults()
	c.Data.SetDefaults()
	c.Logging.SetDefaults()
	if c.MQTT.Broker != "" {
		c.MQTT.SetDefaults()
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Optimizer.Validate(); err != nil {
		return fmt.Errorf("optimizer: %w", err)
	}
	if err := c.Fitness.Validate(); err != nil {
		return fmt.Errorf("fitness: %w", err)
	}
	if err := c.Tariff.Validate(); err != nil {
		return fmt.Errorf("tariff: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.MQTT.Broker != "" {
		if err := c.MQTT.Validate(); err != nil {
			return err
		}
	}
	return nil
}
