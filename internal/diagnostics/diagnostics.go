package diagnostics

import (
	"fmt"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/engine"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/reliability"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
)

// #region harness
// Harness checks system curves for conditions the computation reports but never
// corrects: union-bound sums above one, extrapolation far past the assessment
// axis, and exceedance of the traject standard.
type Harness struct {
	config Config
}

// NewHarness creates a harness with the given configuration.
func NewHarness(config Config) *Harness {
	return &Harness{config: config}
}

// Run checks curve over the calendar window [from, to].
func (h *Harness) Run(curve engine.Curve, standard traject.Standard, from, to int) (Report, error) {
	if to < from {
		return Report{}, fmt.Errorf("diagnostics: window %d..%d: %w", from, to, reliability.ErrInvalidAxis)
	}
	var metrics []Metric
	var failReasons []string
	passed := true

	// 1. Union bound: the summed system pf is not renormalised
	maxPf := 0.0
	for _, p := range curve.Pf {
		if p > maxPf {
			maxPf = p
		}
	}
	boundPass := maxPf <= 1
	metrics = append(metrics, Metric{Name: "max_pf", Value: maxPf, Pass: boundPass})
	if !boundPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("system pf %.4f exceeds 1", maxPf))
	}

	// 2. Extrapolation distance of the window
	dist := h.extrapolation(curve, from, to)
	extraPass := dist <= h.config.MaxExtrapolation
	metrics = append(metrics, Metric{Name: "extrapolation_years", Value: float64(dist), Pass: extraPass})
	if !extraPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("window extrapolates %d years past the assessment axis (max %d)", dist, h.config.MaxExtrapolation))
	}

	// 3. Standard exceedance
	years := reliability.Years(from, to)
	pf := make([]float64, len(years))
	if curve.Len() > 0 {
		offsets := make([]int, len(years))
		for i, y := range years {
			offsets[i] = y - h.config.ReferenceYear
		}
		var err error
		if pf, err = curve.At(offsets); err != nil {
			return Report{}, fmt.Errorf("diagnostics: %w", err)
		}
	}
	lower := firstExceedance(years, pf, standard.LowerBound)
	signalling := firstExceedance(years, pf, standard.Signalling)

	metrics = append(metrics, Metric{Name: "lower_bound_exceedance", Value: float64(lower), Pass: lower == 0})
	if lower != 0 {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("lower bound %.2e exceeded in %d", standard.LowerBound, lower))
	}
	// informational only, does not fail
	metrics = append(metrics, Metric{Name: "signalling_exceedance", Value: float64(signalling), Pass: signalling == 0})

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("diagnostics failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("diagnostics failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return Report{
		Passed:         passed,
		LowerBoundYear: lower,
		SignallingYear: signalling,
		Metrics:        metrics,
		Reason:         reason,
	}, nil
}

// #endregion harness

// #region helpers
// extrapolation returns how many years the window reaches outside the curve's axis.
func (h *Harness) extrapolation(curve engine.Curve, from, to int) int {
	if curve.Len() == 0 {
		return 0
	}
	first := curve.Offsets[0] + h.config.ReferenceYear
	last := curve.Offsets[curve.Len()-1] + h.config.ReferenceYear
	dist := 0
	if d := first - from; d > dist {
		dist = d
	}
	if d := to - last; d > dist {
		dist = d
	}
	return dist
}

// firstExceedance returns the first year whose pf exceeds threshold, or 0.
func firstExceedance(years []int, pf []float64, threshold float64) int {
	if threshold <= 0 {
		return 0
	}
	for i, p := range pf {
		if p > threshold {
			return years[i]
		}
	}
	return 0
}

// #endregion helpers
