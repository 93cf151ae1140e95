package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/loadshift/app"
	"github.com/kilianp07/loadshift/infra/logger"
	"github.com/kilianp07/loadshift/pkg/export"
)

type optimizeFlags struct {
	data       string
	iterations int
	swarmSize  int
	inertia    float64
	seed       int64
	workers    int
	format     string
	publish    bool
}

func newOptimizeCmd(load configLoader) *cobra.Command {
	var f optimizeFlags
	c := &cobra.Command{
		Use:   "optimize",
		Short: "Search start hours for the shiftable appliances and print the plan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOptimize(cmd, load, f)
		},
	}
	fl := c.Flags()
	fl.StringVar(&f.data, "data", "", "appliance dataset (csv, yaml or json)")
	fl.IntVar(&f.iterations, "iterations", 0, "number of swarm iterations")
	fl.IntVar(&f.swarmSize, "swarm-size", 0, "number of particles")
	fl.Float64Var(&f.inertia, "inertia", 0, "inertia weight")
	fl.Int64Var(&f.seed, "seed", 0, "random seed (0 picks one from the clock)")
	fl.IntVar(&f.workers, "workers", 0, "concurrent particle evaluations")
	fl.StringVar(&f.format, "format", "text", "output format: text, json or csv")
	fl.BoolVar(&f.publish, "publish", false, "publish the plan to the configured MQTT broker")
	return c
}

func runOptimize(cmd *cobra.Command, load configLoader, f optimizeFlags) error {
	if err := checkFormat(f.format, "text", "json", "csv"); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := load()
	if err != nil {
		return err
	}
	fl := cmd.Flags()
	if fl.Changed("data") {
		cfg.Data.Path = f.data
	}
	if fl.Changed("iterations") {
		cfg.Optimizer.Iterations = f.iterations
	}
	if fl.Changed("swarm-size") {
		cfg.Optimizer.Swarm.SwarmSize = f.swarmSize
	}
	if fl.Changed("inertia") {
		cfg.Optimizer.Swarm.Inertia = f.inertia
	}
	if fl.Changed("seed") {
		cfg.Optimizer.Swarm.Seed = f.seed
	}
	if fl.Changed("workers") {
		cfg.Optimizer.Swarm.Workers = f.workers
	}
	if err := cfg.Optimizer.Validate(); err != nil {
		return err
	}
	if !f.publish {
		cfg.MQTT.Broker = ""
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	rep, runErr := svc.Run(ctx)
	if runErr != nil && rep.RunID == "" {
		return runErr
	}
	if err := writeReport(cmd.OutOrStdout(), f.format, rep); err != nil {
		return err
	}
	return runErr
}

func writeReport(w io.Writer, format string, rep app.Report) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "csv":
		return export.WriteCSV(w, rep.Plan)
	}
	s := rep.Summary
	fmt.Fprintf(w, "run %s  seed %d  iterations %d  evaluations %d  (%s)\n",
		rep.RunID, rep.Seed, rep.Iterations, rep.Evaluations, rep.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "cost        %8.4f -> %8.4f  (saves %.4f, %.2f%%)\n", s.BaselineCost, s.OptimizedCost, s.Savings, s.EfficiencyGainPct)
	fmt.Fprintf(w, "peak kW     %8.2f -> %8.2f\n", rep.Baseline.PeakLoad, rep.Optimized.PeakLoad)
	fmt.Fprintf(w, "discomfort  %8.0f -> %8.0f hours\n", rep.Baseline.Discomfort, rep.Optimized.Discomfort)
	fmt.Fprintf(w, "penalty     %8.2f -> %8.2f\n", rep.Baseline.Penalty, rep.Optimized.Penalty)
	fmt.Fprintf(w, "fitness     %8.4f -> %8.4f\n\n", rep.Baseline.Fitness, rep.Optimized.Fitness)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "APPLIANCE\tSHIFTABLE\tPREFERRED\tSTART\tEND\tKW\tSHIFT")
	for _, e := range rep.Plan.Entries {
		fmt.Fprintf(tw, "%s\t%t\t%02d:00\t%02d:00\t%02d:00\t%.2f\t%+d\n",
			e.Appliance, e.Shiftable, e.PreferredHour, e.StartHour, e.EndHour, e.PowerKW, e.Shift)
	}
	return tw.Flush()
}

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want one of %v)", format, allowed)
}
