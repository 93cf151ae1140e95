// Package cmd implements the loadshift command line.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/loadshift/config"
	coremon "github.com/kilianp07/loadshift/core/monitoring"
	"github.com/kilianp07/loadshift/infra/logger"
	"github.com/kilianp07/loadshift/infra/monitoring"
)

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "loadshift",
		Short:         "Schedule shiftable household appliances against a time-of-use tariff",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	load := func() (*config.Config, error) { return loadConfig(cfgPath) }
	root.AddCommand(newOptimizeCmd(load), newEvaluateCmd(load), newTariffCmd(load))
	return root
}

// Execute runs the CLI.
func Execute() error { return NewRootCmd().Execute() }

type configLoader func() (*config.Config, error)

// loadConfig reads the configuration and applies its process-wide settings:
// the log level and the error monitor.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, err
	}
	coremon.Init(mon)
	return cfg, nil
}
