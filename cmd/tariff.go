package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/loadshift/core/tariff"
)

func newTariffCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "tariff",
		Short: "Print the hourly time-of-use tariff",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			tou := cfg.Tariff
			prices := tou.Schedule()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "HOUR\tBAND\tPRICE")
			for h := 0; h < tariff.Hours; h++ {
				fmt.Fprintf(tw, "%02d:00\t%s\t%.2f\n", h, tou.Band(h), prices.Price(h))
			}
			return tw.Flush()
		},
	}
}
