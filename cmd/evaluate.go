package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/loadshift/app"
	"github.com/kilianp07/loadshift/core/fitness"
	coremetrics "github.com/kilianp07/loadshift/core/metrics"
	"github.com/kilianp07/loadshift/core/model"
	"github.com/kilianp07/loadshift/core/schedule"
	"github.com/kilianp07/loadshift/core/tariff"
	"github.com/kilianp07/loadshift/infra/logger"
)

func newEvaluateCmd(load configLoader) *cobra.Command {
	var (
		data   string
		hours  []float64
		format string
	)
	c := &cobra.Command{
		Use:   "evaluate",
		Short: "Score start hours for the shiftable appliances (defaults to their preferred hours)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format, "text", "json"); err != nil {
				return err
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("data") {
				cfg.Data.Path = data
			}
			cfg.MQTT.Broker = ""
			svc, err := app.New(cfg, app.WithSink(coremetrics.NopSink{}), app.WithLogger(logger.NopLogger{}))
			if err != nil {
				return err
			}
			defer svc.Close()

			ev := svc.Evaluator()
			if !cmd.Flags().Changed("hours") {
				hours = fitness.Baseline(ev.Shiftable())
			}
			res, err := ev.Evaluate(hours)
			if err != nil {
				return err
			}
			plan, err := schedule.Build("", svc.Appliances(), hours)
			if err != nil {
				return err
			}
			return writeEvaluation(cmd.OutOrStdout(), format, res, plan, cfg.Tariff.Schedule())
		},
	}
	c.Flags().StringVar(&data, "data", "", "appliance dataset (csv, yaml or json)")
	c.Flags().Float64SliceVar(&hours, "hours", nil, "start hour per shiftable appliance, in dataset order")
	c.Flags().StringVar(&format, "format", "text", "output format: text or json")
	return c
}

type evaluation struct {
	fitness.Result
	Plan schedule.Plan `json:"plan"`
}

func writeEvaluation(w io.Writer, format string, res fitness.Result, plan schedule.Plan, prices tariff.Schedule) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(evaluation{Result: res, Plan: plan})
	}
	fmt.Fprintf(w, "fitness %.4f  cost %.4f  discomfort %.0fh  penalty %.2f  peak %.2f kW\n\n",
		res.Fitness, res.Cost, res.Discomfort, res.Penalty, res.PeakLoad)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "APPLIANCE\tSTART\tEND\tSHIFT")
	for _, e := range plan.Entries {
		fmt.Fprintf(tw, "%s\t%02d:00\t%02d:00\t%+d\n", e.Appliance, e.StartHour, e.EndHour, e.Shift)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "HOUR\tLOAD KW\tPRICE")
	for h := 0; h < model.HoursPerDay; h++ {
		fmt.Fprintf(tw, "%02d\t%.2f\t%.2f\n", h, res.Load[h], prices.Price(h))
	}
	return tw.Flush()
}
