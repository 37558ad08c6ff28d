package fixture

// #region fixture-types

// Fixture is the top-level structure of an import file. Both YAML and JSON parse.
type Fixture struct {
	Description string           `yaml:"description"`
	Trajects    []FixtureTraject `yaml:"trajects"`
	Projects    []FixtureProject `yaml:"projects"`
}

// FixtureTraject mirrors traject.Traject with string keyed maps.
type FixtureTraject struct {
	Name     string                           `yaml:"name"`
	Standard FixtureStandard                  `yaml:"standard"`
	Damage   float64                          `yaml:"damage"`
	Sections []FixtureSection                 `yaml:"sections"`
	Orders   map[string][]string              `yaml:"orders"`
	Steps    map[string][]FixtureStep         `yaml:"steps"`
	Recorded map[string][]FixtureRecordedStep `yaml:"recorded"`
}

// FixtureStandard holds the annual threshold probabilities.
type FixtureStandard struct {
	LowerBound float64 `yaml:"lower_bound"`
	Signalling float64 `yaml:"signalling"`
}

// FixtureSection mirrors traject.Section. InAnalysis defaults to true.
type FixtureSection struct {
	Name       string                    `yaml:"name"`
	Length     float64                   `yaml:"length"`
	InAnalysis *bool                     `yaml:"in_analysis"`
	Mechanisms []string                  `yaml:"mechanisms"`
	Initial    map[string]FixtureSeries  `yaml:"initial"`
	Measures   map[string]FixtureMeasure `yaml:"measures"`
}

// FixtureSeries is a time series given either as betas or as failure probabilities.
type FixtureSeries struct {
	Years []int     `yaml:"years"`
	Betas []float64 `yaml:"betas"`
	Pf    []float64 `yaml:"pf"`
}

// FixtureMeasure mirrors traject.Measure.
type FixtureMeasure struct {
	Name       string                   `yaml:"name"`
	Cost       float64                  `yaml:"cost"`
	Parameters map[string]float64       `yaml:"parameters"`
	Series     map[string]FixtureSeries `yaml:"series"`
}

// FixtureStep mirrors traject.OptimizerStep.
type FixtureStep struct {
	Number    int                      `yaml:"number"`
	Section   string                   `yaml:"section"`
	Measure   string                   `yaml:"measure"`
	LCC       float64                  `yaml:"lcc"`
	TotalLCC  float64                  `yaml:"total_lcc"`
	TotalRisk float64                  `yaml:"total_risk"`
	Series    map[string]FixtureSeries `yaml:"series"`
}

// FixtureRecordedStep mirrors traject.RecordedStep.
type FixtureRecordedStep struct {
	CumulativeCost float64   `yaml:"cumulative_cost"`
	Pf             []float64 `yaml:"pf"`
}

// FixtureProject mirrors traject.Project.
type FixtureProject struct {
	Name      string              `yaml:"name"`
	StartYear int                 `yaml:"start_year"`
	EndYear   int                 `yaml:"end_year"`
	Sections  []FixtureSectionRef `yaml:"sections"`
}

// FixtureSectionRef mirrors traject.SectionRef.
type FixtureSectionRef struct {
	Traject string `yaml:"traject"`
	Section string `yaml:"section"`
}

// #endregion fixture-types
