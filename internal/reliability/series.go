package reliability

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat/distuv"
)

// #region conversion
// ToPf converts a reliability index into a failure probability: pf = Φ(-β).
func ToPf(beta float64) float64 {
	return distuv.UnitNormal.CDF(-beta)
}

// ToBeta converts a failure probability into a reliability index: β = -Φ⁻¹(pf).
// Probabilities outside [0, 1] have no reliability index and yield NaN.
func ToBeta(pf float64) float64 {
	if math.IsNaN(pf) || pf < 0 || pf > 1 {
		return math.NaN()
	}
	return -distuv.UnitNormal.Quantile(pf)
}

// #endregion conversion

// #region validate
// Validate checks that offsets and betas line up and that offsets strictly increase.
func (s Series) Validate() error {
	if len(s.Offsets) != len(s.Betas) {
		return fmt.Errorf("%w: %d offsets for %d values", ErrInvalidAxis, len(s.Offsets), len(s.Betas))
	}
	return checkAxis(s.Offsets)
}

// SameAxis reports whether two series share the exact same offsets.
func SameAxis(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func checkAxis(years []int) error {
	if len(years) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidAxis)
	}
	for i := 1; i < len(years); i++ {
		if years[i] <= years[i-1] {
			return fmt.Errorf("%w: year %d does not follow %d", ErrInvalidAxis, years[i], years[i-1])
		}
	}
	return nil
}

// #endregion validate

// #region interpolate
// Interpolate evaluates the piecewise-linear function through (knownYears, knownValues)
// at every query year. Queries outside the known range are extrapolated linearly from
// the two nearest end points rather than clamped. A single known point gives a constant.
func Interpolate(query []int, knownYears []int, knownValues []float64) ([]float64, error) {
	if len(knownYears) != len(knownValues) {
		return nil, fmt.Errorf("%w: %d years for %d values", ErrInvalidAxis, len(knownYears), len(knownValues))
	}
	if err := checkAxis(knownYears); err != nil {
		return nil, err
	}

	out := make([]float64, len(query))
	n := len(knownYears)
	if n == 1 {
		for i := range out {
			out[i] = knownValues[0]
		}
		return out, nil
	}

	xs := make([]float64, n)
	for i, y := range knownYears {
		xs[i] = float64(y)
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, knownValues); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAxis, err)
	}

	for i, q := range query {
		x := float64(q)
		switch {
		case x < xs[0]:
			out[i] = extrapolate(xs[0], xs[1], knownValues[0], knownValues[1], x)
		case x > xs[n-1]:
			out[i] = extrapolate(xs[n-2], xs[n-1], knownValues[n-2], knownValues[n-1], x)
		default:
			out[i] = pl.Predict(x)
		}
	}
	return out, nil
}

func extrapolate(x0, x1, y0, y1, x float64) float64 {
	slope := (y1 - y0) / (x1 - x0)
	return y0 + slope*(x-x0)
}

// At evaluates the series' reliability index at the given offsets.
func (s Series) At(offsets []int) ([]float64, error) {
	return Interpolate(offsets, s.Offsets, s.Betas)
}

// #endregion interpolate

// #region span
// Years returns the inclusive run of integer years from first to last.
func Years(first, last int) []int {
	if last < first {
		return nil
	}
	out := make([]int, 0, last-first+1)
	for y := first; y <= last; y++ {
		out = append(out, y)
	}
	return out
}

// #endregion span
