package analysis

import (
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/diagnostics"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/engine"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/replay"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/risk"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/schedule"
)

// #region results
// ImportResult lists what an import stored.
type ImportResult struct {
	Trajects []string
	Projects int
}

// SystemResult is a system curve with its diagnostics.
type SystemResult struct {
	RunID  string
	Curve  engine.Curve
	Report diagnostics.Report
}

// SectionResult is the Section pseudo-mode curve of one section. Reinforced
// reports whether the final measure was applied.
type SectionResult struct {
	RunID      string
	Section    string
	Reinforced bool
	Curve      engine.Curve
}

// GreedyResult is a reconstructed greedy trace, compared against the recorded
// optimizer trace when one was imported.
type GreedyResult struct {
	RunID      string
	Trace      replay.Trace
	Summary    replay.ReplaySummary
	Comparison []replay.Comparison
}

// PriorityResult is a risk-based ranking.
type PriorityResult struct {
	RunID   string
	Ranking risk.Ranking
}

// ProgramResult holds the calendar curves and project costs of a program.
type ProgramResult struct {
	RunID  string
	Curves map[string]schedule.CalendarCurve
	Costs  []schedule.ProjectCost
}

// #endregion results

// Comparison tolerances against the recorded optimizer trace.
const (
	compareCostTol = 1e-6 // relative
	comparePfTol   = 1e-9 // absolute
)
