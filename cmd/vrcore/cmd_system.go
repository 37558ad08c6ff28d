package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/diagnostics"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/engine"
)

func newSystemCmd(a *app) *cobra.Command {
	var flags struct {
		traject    string
		section    string
		strategy   string
		reinforced bool
	}
	cmd := &cobra.Command{
		Use:   "system",
		Short: "Evaluate the system failure probability curve of a traject",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			strategy, err := a.strategy(flags.strategy)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flags.section != "" {
				res, err := a.svc.SectionCurve(cmd.Context(), flags.traject, flags.section, strategy, flags.reinforced)
				if err != nil {
					return err
				}
				state := "assessment"
				if res.Reinforced {
					state = "reinforced (" + string(strategy) + ")"
				}
				fmt.Fprintf(out, "Traject %s, section %s, %s, run %s\n\n", flags.traject, res.Section, state, res.RunID)
				return writeCurve(out, res.Curve, a.cfg.ReferenceYear)
			}

			res, err := a.svc.SystemCurve(cmd.Context(), flags.traject, strategy, flags.reinforced)
			if err != nil {
				return err
			}

			state := "unreinforced"
			if flags.reinforced {
				state = "reinforced (" + string(strategy) + ")"
			}
			fmt.Fprintf(out, "Traject %s, %s, run %s\n\n", flags.traject, state, res.RunID)
			if err := writeCurve(out, res.Curve, a.cfg.ReferenceYear); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return writeReport(out, res.Report)
		},
	}
	cmd.Flags().StringVar(&flags.traject, "traject", "", "traject name")
	cmd.Flags().StringVar(&flags.section, "section", "", "evaluate only this section")
	cmd.Flags().StringVar(&flags.strategy, "strategy", "", "vr|dsn (default from config)")
	cmd.Flags().BoolVar(&flags.reinforced, "reinforced", false, "apply the final measures of the strategy")
	_ = cmd.MarkFlagRequired("traject")
	return cmd
}

// #region output
func writeCurve(out io.Writer, c engine.Curve, referenceYear int) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "YEAR\tPF\tBETA")
	betas := c.Betas()
	for i, off := range c.Offsets {
		fmt.Fprintf(w, "%d\t%.3e\t%.3f\n", referenceYear+off, c.Pf[i], betas[i])
	}
	return w.Flush()
}

func writeReport(out io.Writer, r diagnostics.Report) error {
	verdict := "PASS"
	if !r.Passed {
		verdict = "FAIL"
	}
	fmt.Fprintf(out, "Diagnostics: %s", verdict)
	if r.Reason != "" {
		fmt.Fprintf(out, " (%s)", r.Reason)
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, m := range r.Metrics {
		mark := "ok"
		if !m.Pass {
			mark = "!!"
		}
		fmt.Fprintf(w, "  %s\t%g\t%s\n", m.Name, m.Value, mark)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if r.SignallingYear > 0 {
		fmt.Fprintf(out, "Signalling value exceeded from %d\n", r.SignallingYear)
	}
	if r.LowerBoundYear > 0 {
		fmt.Fprintf(out, "Lower bound exceeded from %d\n", r.LowerBoundYear)
	}
	return nil
}

// #endregion output
