package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/config"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/engine"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject/trajecttest"
)

type mk = map[traject.MechanismKind]float64

func flatConfig(horizon int) config.Config {
	cfg := config.Default()
	cfg.DiscountRate = 0
	cfg.RiskHorizon = horizon
	return cfg
}

func rankedTraject() *traject.Traject {
	a := trajecttest.WithMeasure(trajecttest.Section("A", trajecttest.Axis, mk{traject.Piping: 0.01}),
		traject.VR, 100, mk{traject.Piping: 1e-5})
	b := trajecttest.WithMeasure(trajecttest.Section("B", trajecttest.Axis, mk{traject.Piping: 0.02}),
		traject.VR, 100, mk{traject.Piping: 1e-5})
	c := trajecttest.Section("C", trajecttest.Axis, mk{traject.Piping: 0.001})
	t := trajecttest.Traject("38-1", a, b, c)
	t.Orders[traject.VR] = []string{"A", "B"}
	return t
}

func TestTotalRisk_Undiscounted(t *testing.T) {
	curve := engine.Curve{Offsets: []int{0, 100}, Pf: []float64{1e-4, 1e-4}}
	got, err := TotalRisk(curve, 1e6, flatConfig(10))
	require.NoError(t, err)
	assert.InDelta(t, 10*1e6*1e-4, got, 1e-9)
}

func TestTotalRisk_Discounted(t *testing.T) {
	cfg := config.Default()
	cfg.DiscountRate = 0.03
	cfg.RiskHorizon = 100
	curve := engine.Curve{Offsets: []int{0, 100}, Pf: []float64{1e-4, 1e-4}}

	got, err := TotalRisk(curve, 1e6, cfg)
	require.NoError(t, err)

	annuity := (1 - math.Pow(1.03, -100)) / (1 - 1/1.03)
	assert.InDelta(t, 1e6*1e-4*annuity, got, 1e-6)
}

func TestTotalRisk_InterpolatesYearly(t *testing.T) {
	curve := engine.Curve{Offsets: []int{0, 10}, Pf: []float64{0, 1e-3}}
	got, err := TotalRisk(curve, 1, flatConfig(11))
	require.NoError(t, err)
	// 0 + 1e-4 + ... + 1e-3
	assert.InDelta(t, 55e-4, got, 1e-12)
}

func TestTotalRisk_EmptyCurve(t *testing.T) {
	got, err := TotalRisk(engine.Curve{}, 1e9, config.Default())
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestPrioritize_RanksByMarginalRisk(t *testing.T) {
	tr := rankedTraject()
	cfg := flatConfig(10)

	r, err := Prioritize(tr, traject.VR, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, r.Sections())

	keep := 1 - 1e-5
	base := 1 - keep*keep*0.999
	cfA := 1 - 0.99*keep*0.999
	cfB := 1 - keep*0.98*0.999

	assert.InDelta(t, 1e9*10*base, r.BaseRisk, 1e-3)
	assert.InDelta(t, 1e9*10*(cfB-base)/100, r.Entries[0].Index, 1e-3)
	assert.InDelta(t, 1e9*10*(cfA-base)/100, r.Entries[1].Index, 1e-3)
	assert.True(t, r.Entries[0].Reinforced)
	assert.False(t, r.Entries[2].Reinforced)
	assert.Zero(t, r.Entries[2].Index)
}

func TestPrioritize_TiesKeepSectionOrder(t *testing.T) {
	a := trajecttest.WithMeasure(trajecttest.Section("A", trajecttest.Axis, mk{traject.Piping: 0.01}),
		traject.VR, 100, mk{traject.Piping: 1e-5})
	b := trajecttest.WithMeasure(trajecttest.Section("B", trajecttest.Axis, mk{traject.Piping: 0.01}),
		traject.VR, 100, mk{traject.Piping: 1e-5})
	tr := trajecttest.Traject("38-1", a, b)
	tr.Orders[traject.VR] = []string{"B", "A"}

	r, err := Prioritize(tr, traject.VR, flatConfig(10))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, r.Sections())
}

func TestPrioritize_NothingReinforced(t *testing.T) {
	tr := rankedTraject()
	r, err := Prioritize(tr, traject.DSN, flatConfig(10))
	require.NoError(t, err)
	for _, e := range r.Entries {
		assert.Zero(t, e.Index)
	}
	assert.Equal(t, []string{"A", "B", "C"}, r.Sections())
}

func TestPrioritize_DegenerateCost(t *testing.T) {
	tr := rankedTraject()
	tr.Sections[1].Measures[traject.VR].Cost = 0

	_, err := Prioritize(tr, traject.VR, flatConfig(10))
	assert.ErrorIs(t, err, traject.ErrDegenerateCost)
}

func TestPrioritize_UnknownStrategy(t *testing.T) {
	_, err := Prioritize(rankedTraject(), "cheapest", flatConfig(10))
	assert.ErrorIs(t, err, traject.ErrUnknownStrategy)
}
