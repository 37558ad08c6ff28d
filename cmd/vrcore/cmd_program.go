package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newProgramCmd(a *app) *cobra.Command {
	var flags struct {
		strategy string
		every    int
	}
	cmd := &cobra.Command{
		Use:   "program",
		Short: "Evaluate the stored reinforcement program over calendar years",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.every <= 0 {
				return fmt.Errorf("--every must be positive, got %d", flags.every)
			}
			strategy, err := a.strategy(flags.strategy)
			if err != nil {
				return err
			}
			res, err := a.svc.Program(cmd.Context(), strategy)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Program, strategy %s, run %s\n\n", strategy, res.RunID)
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROJECT\tSTART\tEND\tCOST")
			for _, c := range res.Costs {
				fmt.Fprintf(w, "%s\t%d\t%d\t%.0f\n", c.Name, c.StartYear, c.EndYear, c.Cost)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			names := make([]string, 0, len(res.Curves))
			for name := range res.Curves {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				c := res.Curves[name]
				betas := c.Betas()
				fmt.Fprintf(out, "\nTraject %s\n", name)
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "YEAR\tPF\tBETA")
				for i, y := range c.Years {
					// boundary years appear twice; always show both
					boundary := i > 0 && c.Years[i-1] == y || i+1 < len(c.Years) && c.Years[i+1] == y
					if (y-c.Years[0])%flags.every != 0 && !boundary && i != len(c.Years)-1 {
						continue
					}
					fmt.Fprintf(w, "%d\t%.3e\t%.3f\n", y, c.Pf[i], betas[i])
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.strategy, "strategy", "", "vr|dsn (default from config)")
	cmd.Flags().IntVar(&flags.every, "every", 5, "print every n-th year plus project boundaries")
	return cmd
}
