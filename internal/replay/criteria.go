package replay

import (
	"fmt"
	"math"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/engine"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/reliability"
)

// #region constructors
// NoStop replays every step.
func NoStop() Criterion {
	return Criterion{Kind: StopNever}
}

// EconomicOptimum stops at the step minimising total LCC plus total risk.
func EconomicOptimum() Criterion {
	return Criterion{Kind: StopEconomicOptimum}
}

// TargetReliability stops once the system beta in year reaches beta.
func TargetReliability(year int, beta float64) Criterion {
	return Criterion{Kind: StopTargetReliability, TargetYear: year, TargetBeta: beta}
}

// ParseCriterion maps a token to a criterion kind.
func ParseCriterion(s string) (CriterionKind, error) {
	switch CriterionKind(s) {
	case StopNever, StopEconomicOptimum, StopTargetReliability:
		return CriterionKind(s), nil
	case "":
		return StopEconomicOptimum, nil
	}
	return "", fmt.Errorf("unknown stop criterion %q", s)
}

// #endregion constructors

// #region optimum
// optimalIndex scans the grouped steps once and returns the 1-based trace index of
// the step with minimal TotalLCC + TotalRisk. Ties keep the earliest step.
func optimalIndex(groups []stepGroup) int {
	best := 0
	bestValue := math.Inf(1)
	for i, g := range groups {
		v := g.totalLCC + g.totalRisk
		if v < bestValue {
			bestValue = v
			best = i + 1
		}
	}
	return best
}

// #endregion optimum

// #region target
// meetsTarget reports whether the curve's system beta at the target calendar year
// reaches the target beta. Unconvertible probabilities never meet a target.
func meetsTarget(c engine.Curve, referenceYear int, crit Criterion) (bool, float64, error) {
	if c.Len() == 0 {
		return false, math.NaN(), nil
	}
	pf, err := c.At([]int{crit.TargetYear - referenceYear})
	if err != nil {
		return false, math.NaN(), fmt.Errorf("target year %d: %w", crit.TargetYear, err)
	}
	beta := reliability.ToBeta(pf[0])
	if math.IsNaN(beta) {
		return false, beta, nil
	}
	return beta >= crit.TargetBeta, beta, nil
}

// #endregion target
