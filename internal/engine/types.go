package engine

import (
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/reliability"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
)

// #region section-state
// StateKind selects which series of a section feed the system computation.
type StateKind int

const (
	// Assessment uses the section's initial (pre-reinforcement) series.
	Assessment StateKind = iota
	// Reinforced uses the section's final measure for a strategy.
	Reinforced
	// Override uses caller-supplied series, falling back to the initial series
	// for mechanisms the override does not carry.
	Override
)

// SectionState is the state selector of one section.
type SectionState struct {
	Kind     StateKind
	Strategy traject.Strategy
	Series   map[traject.MechanismKind]reliability.Series
}

// AssessmentState selects the initial assessment.
func AssessmentState() SectionState {
	return SectionState{Kind: Assessment}
}

// ReinforcedState selects the final measure of a strategy.
func ReinforcedState(strategy traject.Strategy) SectionState {
	return SectionState{Kind: Reinforced, Strategy: strategy}
}

// OverrideState selects caller-supplied series.
func OverrideState(series map[traject.MechanismKind]reliability.Series) SectionState {
	return SectionState{Kind: Override, Series: series}
}

// #endregion section-state

// #region curve
// Curve is a system failure probability time series.
type Curve struct {
	Offsets    []int
	Pf         []float64
	Mechanisms map[traject.MechanismKind][]float64
}

// Len returns the number of points on the time axis.
func (c Curve) Len() int {
	return len(c.Offsets)
}

// Betas converts the system probabilities into reliability indices. Probabilities
// above one (possible with the union bound) become NaN.
func (c Curve) Betas() []float64 {
	out := make([]float64, len(c.Pf))
	for i, p := range c.Pf {
		out[i] = reliability.ToBeta(p)
	}
	return out
}

// At interpolates the system probability at the given offsets, extrapolating
// linearly outside the assessment axis.
func (c Curve) At(offsets []int) ([]float64, error) {
	return reliability.Interpolate(offsets, c.Offsets, c.Pf)
}

// #endregion curve
