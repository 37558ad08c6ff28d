package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
)

// helper: recorded trace copied from a replay, optionally perturbed.
func recordedFrom(trace Trace) []traject.RecordedStep {
	out := make([]traject.RecordedStep, len(trace.Steps))
	for i, s := range trace.Steps {
		out[i] = traject.RecordedStep{
			CumulativeCost: s.CumulativeCost,
			Pf:             append([]float64(nil), s.Curve.Pf...),
		}
	}
	return out
}

func TestCompare_AllMatch(t *testing.T) {
	trace, err := Replay(greedyTraject(), config(NoStop()))
	require.NoError(t, err)

	rows := Compare(trace, recordedFrom(trace), 1e-9, 1e-9)
	require.Len(t, rows, len(trace.Steps))
	assert.Equal(t, 0, Diverging(rows))
}

func TestCompare_DetectsDivergence(t *testing.T) {
	trace, err := Replay(greedyTraject(), config(NoStop()))
	require.NoError(t, err)

	rec := recordedFrom(trace)
	rec[2].CumulativeCost *= 1.5
	rec[3].Pf[0] += 0.01

	rows := Compare(trace, rec, 1e-6, 1e-6)
	assert.Equal(t, 2, Diverging(rows))
	assert.False(t, rows[2].Match)
	assert.False(t, rows[3].Match)
	assert.InDelta(t, 0.01, rows[3].MaxPfDiff, 1e-12)
}

func TestCompare_CommonPrefixOnly(t *testing.T) {
	trace, err := Replay(greedyTraject(), config(NoStop()))
	require.NoError(t, err)

	rows := Compare(trace, recordedFrom(trace)[:2], 1e-9, 1e-9)
	assert.Len(t, rows, 2)
}

func TestParseCriterion(t *testing.T) {
	k, err := ParseCriterion("target_reliability")
	require.NoError(t, err)
	assert.Equal(t, StopTargetReliability, k)

	k, err = ParseCriterion("")
	require.NoError(t, err)
	assert.Equal(t, StopEconomicOptimum, k)

	_, err = ParseCriterion("cheapest")
	assert.Error(t, err)
}
