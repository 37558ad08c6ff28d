package aggregate

import (
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
)

// #region rule
// Rule selects how per-section probabilities of one mechanism combine.
type Rule int

const (
	// IndependentSeries treats sections as independent: 1 - Π(1 - pᵢ).
	IndependentSeries Rule = iota
	// WeakestLink treats sections as fully dependent: max(pᵢ).
	WeakestLink
)

func (r Rule) String() string {
	if r == WeakestLink {
		return "weakest_link"
	}
	return "independent_series"
}

// RuleFor returns the combination rule of a mechanism. Overflow and revetment are
// fully dependent along the traject; everything else carries a length effect.
func RuleFor(m traject.MechanismKind) Rule {
	switch m {
	case traject.Overflow, traject.Revetment:
		return WeakestLink
	default:
		return IndependentSeries
	}
}

// #endregion rule

// #region combine
// Combine merges per-section probability series into one system series of length n.
// Each contribution must have length n. No contributions yields zeros.
func Combine(rule Rule, contributions [][]float64, n int) []float64 {
	out := make([]float64, n)
	if len(contributions) == 0 {
		return out
	}

	switch rule {
	case WeakestLink:
		for _, c := range contributions {
			for i := 0; i < n; i++ {
				if c[i] > out[i] {
					out[i] = c[i]
				}
			}
		}
	default:
		survive := make([]float64, n)
		for i := range survive {
			survive[i] = 1
		}
		for _, c := range contributions {
			for i := 0; i < n; i++ {
				survive[i] *= 1 - c[i]
			}
		}
		for i := range out {
			out[i] = 1 - survive[i]
		}
	}
	return out
}

// Mechanism combines contributions using the rule of mechanism m.
func Mechanism(m traject.MechanismKind, contributions [][]float64, n int) []float64 {
	return Combine(RuleFor(m), contributions, n)
}

// #endregion combine
