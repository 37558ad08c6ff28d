package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newPriorityCmd(a *app) *cobra.Command {
	var flags struct {
		traject  string
		strategy string
	}
	cmd := &cobra.Command{
		Use:   "priority",
		Short: "Rank the sections of a traject by marginal risk per cost",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			strategy, err := a.strategy(flags.strategy)
			if err != nil {
				return err
			}
			res, err := a.svc.Prioritize(cmd.Context(), flags.traject, strategy)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			r := res.Ranking
			fmt.Fprintf(out, "Traject %s, strategy %s, run %s\nBase risk: %.0f\n\n", r.Traject, r.Strategy, res.RunID, r.BaseRisk)
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tSECTION\tCOST\tRISK IF REVERTED\tINDEX")
			for i, e := range r.Entries {
				if !e.Reinforced {
					fmt.Fprintf(w, "%d\t%s\t-\t-\t0\n", i+1, e.Section)
					continue
				}
				fmt.Fprintf(w, "%d\t%s\t%.0f\t%.0f\t%.4g\n", i+1, e.Section, e.Cost, e.CounterfactualRisk, e.Index)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&flags.traject, "traject", "", "traject name")
	cmd.Flags().StringVar(&flags.strategy, "strategy", "", "vr|dsn (default from config)")
	_ = cmd.MarkFlagRequired("traject")
	return cmd
}
