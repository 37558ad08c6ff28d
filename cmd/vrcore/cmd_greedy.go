package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/replay"
)

func newGreedyCmd(a *app) *cobra.Command {
	var flags struct {
		traject    string
		strategy   string
		criterion  string
		targetYear int
		targetBeta float64
		compare    bool
	}
	cmd := &cobra.Command{
		Use:   "greedy",
		Short: "Replay the optimizer steps of a traject",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			strategy, err := a.strategy(flags.strategy)
			if err != nil {
				return err
			}
			kind, err := replay.ParseCriterion(flags.criterion)
			if err != nil {
				return err
			}
			crit := replay.Criterion{Kind: kind}
			if kind == replay.StopTargetReliability {
				crit = replay.TargetReliability(flags.targetYear, flags.targetBeta)
			}

			res, err := a.svc.GreedyTrace(cmd.Context(), flags.traject, strategy, crit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Traject %s, strategy %s, criterion %s, run %s\n\n", flags.traject, strategy, kind, res.RunID)

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "IDX\tSTEP\tSECTIONS\tCOST\tCUMULATIVE\tPF(0)")
			for _, st := range res.Trace.Steps {
				pf0 := 0.0
				if len(st.Curve.Pf) > 0 {
					pf0 = st.Curve.Pf[0]
				}
				fmt.Fprintf(w, "%d\t%d\t%s\t%.0f\t%.0f\t%.3e\n",
					st.Index, st.Number, strings.Join(st.Sections, ","), st.IncrementalCost, st.CumulativeCost, pf0)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			s := res.Summary
			fmt.Fprintf(out, "\nSteps: %d  Sections: %d  Final cost: %.0f  Pf(0): %.3e -> %.3e\n",
				s.TotalSteps, s.SectionsTouched, s.FinalCost, s.InitialPf, s.FinalPf)
			fmt.Fprintf(out, "Order: %s\n", strings.Join(res.Trace.Order, ", "))
			if res.Trace.Stopped {
				fmt.Fprintf(out, "Stopped at step %d\n", res.Trace.TerminalStep)
			}
			if res.Trace.OptimalStep > 0 {
				fmt.Fprintf(out, "Economic optimum at step %d\n", res.Trace.OptimalStep)
			}

			if flags.compare {
				if len(res.Comparison) == 0 {
					fmt.Fprintln(out, "\nNo recorded trace to compare.")
					return nil
				}
				fmt.Fprintln(out)
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "IDX\tREPLAYED\tRECORDED\tMAX |dPF|\tMATCH")
				for _, c := range res.Comparison {
					fmt.Fprintf(w, "%d\t%.0f\t%.0f\t%.2e\t%t\n", c.Index, c.ReplayedCost, c.RecordedCost, c.MaxPfDiff, c.Match)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(out, "Diverging rows: %d\n", replay.Diverging(res.Comparison))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.traject, "traject", "", "traject name")
	cmd.Flags().StringVar(&flags.strategy, "strategy", "", "vr|dsn (default from config)")
	cmd.Flags().StringVar(&flags.criterion, "criterion", "", "none|economic_optimum|target_reliability (default economic_optimum)")
	cmd.Flags().IntVar(&flags.targetYear, "target-year", 2075, "calendar year of the target reliability")
	cmd.Flags().Float64Var(&flags.targetBeta, "target-beta", 4.5, "target system beta")
	cmd.Flags().BoolVar(&flags.compare, "compare", false, "compare against the recorded optimizer trace")
	_ = cmd.MarkFlagRequired("traject")
	return cmd
}
