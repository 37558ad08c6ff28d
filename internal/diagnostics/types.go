package diagnostics

// #region diagnostics-config
// Config holds the thresholds of the curve checks.
type Config struct {
	ReferenceYear    int // calendar year of offset 0
	MaxExtrapolation int // years a query window may reach past the assessment axis
}

// DefaultConfig returns the thresholds used by the CLI and the service.
func DefaultConfig(referenceYear int) Config {
	return Config{
		ReferenceYear:    referenceYear,
		MaxExtrapolation: 25,
	}
}

// #endregion diagnostics-config

// #region metric
// Metric captures a single check result.
type Metric struct {
	Name  string
	Value float64
	Pass  bool
}

// #endregion metric

// #region report
// Report is the outcome of checking one system curve.
type Report struct {
	Passed bool
	// First calendar years the curve exceeds the standard; 0 when it never does
	// inside the window.
	LowerBoundYear int
	SignallingYear int
	Metrics        []Metric
	Reason         string
}

// Metric returns the named metric.
func (r Report) Metric(name string) (Metric, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// #endregion report
