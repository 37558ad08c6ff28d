package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
)

// 1. Rule selection per mechanism.
func TestRuleFor(t *testing.T) {
	assert.Equal(t, WeakestLink, RuleFor(traject.Overflow))
	assert.Equal(t, WeakestLink, RuleFor(traject.Revetment))
	assert.Equal(t, IndependentSeries, RuleFor(traject.Piping))
	assert.Equal(t, IndependentSeries, RuleFor(traject.StabilityInner))
	assert.Equal(t, "weakest_link", WeakestLink.String())
}

// 2. Two independent sections: 1 - 0.99*0.98.
func TestCombine_IndependentTwoSections(t *testing.T) {
	got := Mechanism(traject.Piping, [][]float64{{0.01}, {0.02}}, 1)
	assert.InDelta(t, 1-0.99*0.98, got[0], 1e-12)
	assert.InDelta(t, 0.0298, got[0], 1e-4)
}

// 3. Weakest link picks the worst section.
func TestCombine_WeakestLink(t *testing.T) {
	got := Mechanism(traject.Overflow, [][]float64{{0.001}, {0.05}, {0.002}}, 1)
	assert.Equal(t, 0.05, got[0])
}

// 4. Weakest link is invariant to insertion order.
func TestCombine_WeakestLinkOrderInvariant(t *testing.T) {
	a := []float64{0.001, 0.3}
	b := []float64{0.05, 0.02}
	assert.Equal(t,
		Combine(WeakestLink, [][]float64{a, b}, 2),
		Combine(WeakestLink, [][]float64{b, a}, 2),
	)
}

// 5. Independent combination is monotonically non-decreasing in each component.
func TestCombine_IndependentMonotone(t *testing.T) {
	prev := -1.0
	for p1 := 0.0; p1 <= 1.0; p1 += 0.05 {
		got := Combine(IndependentSeries, [][]float64{{p1}, {0.2}}, 1)[0]
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

// 6. No contributing sections means the mechanism contributes nothing.
func TestCombine_NoContributions(t *testing.T) {
	assert.Equal(t, []float64{0, 0, 0}, Combine(IndependentSeries, nil, 3))
	assert.Equal(t, []float64{0, 0}, Combine(WeakestLink, [][]float64{}, 2))
}

// 7. Per time step combination keeps steps independent.
func TestCombine_PerTimeStep(t *testing.T) {
	got := Combine(IndependentSeries, [][]float64{{0.1, 0.0}, {0.1, 0.5}}, 2)
	assert.InDelta(t, 0.19, got[0], 1e-12)
	assert.InDelta(t, 0.5, got[1], 1e-12)
}
