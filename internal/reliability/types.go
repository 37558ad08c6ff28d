package reliability

import "errors"

// #region errors
// ErrInvalidAxis is returned when a time axis is empty, has a length that does not
// match its values, or is not strictly increasing.
var ErrInvalidAxis = errors.New("invalid time axis")

// #endregion errors

// #region series
// Series is a reliability index time series. Offsets are years counted from the
// configured reference year; Betas holds one reliability index per offset.
type Series struct {
	Offsets []int     `json:"offsets" yaml:"years"`
	Betas   []float64 `json:"betas" yaml:"betas"`
}

// Len returns the number of points on the time axis.
func (s Series) Len() int {
	return len(s.Offsets)
}

// Empty reports whether the series carries no points.
func (s Series) Empty() bool {
	return len(s.Offsets) == 0
}

// Probabilities returns the failure probability at every point.
func (s Series) Probabilities() []float64 {
	out := make([]float64, len(s.Betas))
	for i, b := range s.Betas {
		out[i] = ToPf(b)
	}
	return out
}

// FromProbabilities builds a Series from failure probabilities.
func FromProbabilities(offsets []int, pfs []float64) Series {
	betas := make([]float64, len(pfs))
	for i, p := range pfs {
		betas[i] = ToBeta(p)
	}
	return Series{Offsets: append([]int(nil), offsets...), Betas: betas}
}

// #endregion series
