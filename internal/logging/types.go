package logging

import "time"

// #region run-entry
// RunEntry is a single row in the analysis_runs table.
type RunEntry struct {
	RunID      string // generated when empty
	Operation  string // "system" | "greedy" | "prioritize" | "program"
	Traject    string
	Strategy   string
	ParamsJSON string
	Outcome    string // "ok" | "error"
	Detail     string
	Duration   time.Duration
	CreatedAt  time.Time
}

// #endregion run-entry

// #region run-params
// RunParams captures the settings an analysis ran with. Serialized as JSON into
// analysis_runs.params_json so a run can be repeated exactly.
type RunParams struct {
	ReferenceYear int     `json:"reference_year"`
	DiscountRate  float64 `json:"discount_rate"`
	RiskHorizon   int     `json:"risk_horizon"`

	// Greedy replay only
	Criterion  string  `json:"criterion,omitempty"`
	TargetYear int     `json:"target_year,omitempty"`
	TargetBeta float64 `json:"target_beta,omitempty"`

	// Program only
	StartYear   int `json:"start_year,omitempty"`
	HorizonYear int `json:"horizon_year,omitempty"`
	Projects    int `json:"projects,omitempty"`
}

// #endregion run-params
