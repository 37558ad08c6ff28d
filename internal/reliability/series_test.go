package reliability

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// #region conversion-tests
func TestToBeta_RoundTrip(t *testing.T) {
	for beta := -6.0; beta <= 8.0; beta += 0.25 {
		got := ToBeta(ToPf(beta))
		assert.InDelta(t, beta, got, 1e-6, "beta=%v", beta)
	}
}

func TestToPf_KnownValues(t *testing.T) {
	assert.InDelta(t, 0.5, ToPf(0), 1e-12)
	assert.InDelta(t, 0.0227501319, ToPf(2), 1e-9)
	assert.Less(t, ToPf(4), ToPf(3), "higher beta must be safer")
}

func TestToBeta_OutOfRange(t *testing.T) {
	assert.True(t, math.IsNaN(ToBeta(1.2)))
	assert.True(t, math.IsNaN(ToBeta(-0.1)))
	assert.True(t, math.IsInf(ToBeta(0), 1))
}

func TestFromProbabilities(t *testing.T) {
	s := FromProbabilities([]int{0, 10}, []float64{0.01, 0.02})
	require.Len(t, s.Betas, 2)
	pfs := s.Probabilities()
	assert.InDelta(t, 0.01, pfs[0], 1e-12)
	assert.InDelta(t, 0.02, pfs[1], 1e-12)
}

// #endregion conversion-tests

// #region interpolate-tests
func TestInterpolate_Midpoint(t *testing.T) {
	got, err := Interpolate([]int{2030}, []int{2025, 2035}, []float64{4.0, 3.0})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 3.5, got[0], 1e-12)
}

func TestInterpolate_ExactKnots(t *testing.T) {
	got, err := Interpolate([]int{0, 20, 50}, []int{0, 20, 50}, []float64{4.1, 3.9, 3.2})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{4.1, 3.9, 3.2}, got, 1e-12)
}

func TestInterpolate_ExtrapolatesBothEnds(t *testing.T) {
	got, err := Interpolate([]int{2015, 2045}, []int{2025, 2035}, []float64{4.0, 3.0})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, got[0], 1e-12)
	assert.InDelta(t, 2.0, got[1], 1e-12)
}

func TestInterpolate_SinglePointIsConstant(t *testing.T) {
	got, err := Interpolate([]int{0, 5, 100}, []int{10}, []float64{3.3})
	require.NoError(t, err)
	assert.Equal(t, []float64{3.3, 3.3, 3.3}, got)
}

func TestInterpolate_EmptyQuery(t *testing.T) {
	got, err := Interpolate(nil, []int{0, 1}, []float64{1, 2})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInterpolate_InvalidAxis(t *testing.T) {
	cases := map[string]struct {
		years  []int
		values []float64
	}{
		"empty":          {nil, nil},
		"unequal":        {[]int{0, 1}, []float64{1}},
		"not increasing": {[]int{0, 5, 5}, []float64{1, 2, 3}},
		"decreasing":     {[]int{10, 0}, []float64{1, 2}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Interpolate([]int{1}, tc.years, tc.values)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidAxis))
		})
	}
}

// #endregion interpolate-tests

// #region series-tests
func TestSeries_Validate(t *testing.T) {
	assert.NoError(t, Series{Offsets: []int{0, 19, 20}, Betas: []float64{4, 3.9, 3.8}}.Validate())
	assert.ErrorIs(t, Series{Offsets: []int{0, 19}, Betas: []float64{4}}.Validate(), ErrInvalidAxis)
}

func TestYears(t *testing.T) {
	assert.Equal(t, []int{3, 4, 5}, Years(3, 5))
	assert.Nil(t, Years(5, 3))
}

func TestSameAxis(t *testing.T) {
	assert.True(t, SameAxis([]int{0, 20}, []int{0, 20}))
	assert.False(t, SameAxis([]int{0, 20}, []int{0, 25}))
	assert.False(t, SameAxis([]int{0}, []int{0, 20}))
}

// #endregion series-tests
