package replay

import (
	"math"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
)

// #region comparison
// Comparison is one row of a replayed-versus-recorded trace comparison.
type Comparison struct {
	Index        int
	ReplayedCost float64
	RecordedCost float64
	MaxPfDiff    float64 // largest absolute pf difference over the assessment axis
	Match        bool
}

// Compare lines a reconstructed trace up against the optimizer's recorded trace,
// step by step. A row matches when the costs agree within costTol (relative) and
// every pf agrees within pfTol (absolute). Only the common prefix is compared.
func Compare(trace Trace, recorded []traject.RecordedStep, costTol, pfTol float64) []Comparison {
	n := len(trace.Steps)
	if len(recorded) < n {
		n = len(recorded)
	}
	rows := make([]Comparison, n)
	for i := 0; i < n; i++ {
		got := trace.Steps[i]
		want := recorded[i]
		row := Comparison{
			Index:        i,
			ReplayedCost: got.CumulativeCost,
			RecordedCost: want.CumulativeCost,
		}

		pfMatch := len(got.Curve.Pf) == len(want.Pf)
		for j := 0; j < len(got.Curve.Pf) && j < len(want.Pf); j++ {
			d := math.Abs(got.Curve.Pf[j] - want.Pf[j])
			if d > row.MaxPfDiff {
				row.MaxPfDiff = d
			}
		}
		if row.MaxPfDiff > pfTol {
			pfMatch = false
		}
		row.Match = pfMatch && costsAgree(got.CumulativeCost, want.CumulativeCost, costTol)
		rows[i] = row
	}
	return rows
}

// Diverging counts the rows that do not match.
func Diverging(rows []Comparison) int {
	n := 0
	for _, r := range rows {
		if !r.Match {
			n++
		}
	}
	return n
}

func costsAgree(a, b, tol float64) bool {
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale == 0 {
		return true
	}
	return math.Abs(a-b)/scale <= tol
}

// #endregion comparison
