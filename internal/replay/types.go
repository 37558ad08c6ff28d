package replay

import (
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/engine"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
)

// #region criterion
// CriterionKind enumerates the stop criteria of a greedy replay.
type CriterionKind string

const (
	// StopNever replays every optimizer step.
	StopNever CriterionKind = "none"
	// StopEconomicOptimum stops at the step with minimal total LCC plus total risk.
	StopEconomicOptimum CriterionKind = "economic_optimum"
	// StopTargetReliability stops once the system beta in a target year reaches a target.
	StopTargetReliability CriterionKind = "target_reliability"
)

// Criterion configures when a replay terminates.
type Criterion struct {
	Kind       CriterionKind
	TargetYear int     // calendar year, StopTargetReliability only
	TargetBeta float64 // StopTargetReliability only
}

// #endregion criterion

// #region replay-config
// ReplayConfig bundles the inputs of one replay besides the traject itself.
type ReplayConfig struct {
	Strategy      traject.Strategy
	ReferenceYear int
	Criterion     Criterion
}

// DefaultReplayConfig replays the VR strategy to its economic optimum.
func DefaultReplayConfig(referenceYear int) ReplayConfig {
	return ReplayConfig{
		Strategy:      traject.VR,
		ReferenceYear: referenceYear,
		Criterion:     Criterion{Kind: StopEconomicOptimum},
	}
}

// #endregion replay-config

// #region trace
// TraceStep is the system state after one reinforcement step. Index 0 is the
// fully unreinforced state.
type TraceStep struct {
	Index           int
	Number          int // optimizer step number, 0 for the initial state
	Sections        []string
	Curve           engine.Curve
	IncrementalCost float64
	CumulativeCost  float64
}

// Trace is the outcome of replaying one strategy of one traject.
type Trace struct {
	Traject      string
	Strategy     traject.Strategy
	Steps        []TraceStep
	Order        []string // sections in order first touched
	TerminalStep int      // optimizer step number the replay ended on
	Stopped      bool     // true when the stop criterion fired
	OptimalStep  int      // economic optimum step number, 0 when not computed
}

// Costs returns the cumulative cost per trace step.
func (t Trace) Costs() []float64 {
	out := make([]float64, len(t.Steps))
	for i, s := range t.Steps {
		out[i] = s.CumulativeCost
	}
	return out
}

// Final returns the last trace step and false when the trace is empty.
func (t Trace) Final() (TraceStep, bool) {
	if len(t.Steps) == 0 {
		return TraceStep{}, false
	}
	return t.Steps[len(t.Steps)-1], true
}

// #endregion trace

// #region summary
// ReplaySummary provides aggregate figures of a trace.
type ReplaySummary struct {
	TotalSteps      int
	SectionsTouched int
	FinalCost       float64
	InitialPf       float64 // system pf at the first offset before reinforcement
	FinalPf         float64 // system pf at the first offset after the last step
}

// #endregion summary
