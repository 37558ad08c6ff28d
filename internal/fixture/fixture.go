package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/reliability"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
)

// #region fixture-loader

// Load reads and parses an import file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes YAML or JSON import data. Unknown fields are rejected.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty fixture")
		}
		return nil, err
	}
	return &f, nil
}

// #endregion fixture-loader

// #region conversion

// ToTrajects converts and validates every traject of the fixture.
func (f *Fixture) ToTrajects() ([]*traject.Traject, error) {
	out := make([]*traject.Traject, 0, len(f.Trajects))
	seen := make(map[string]bool, len(f.Trajects))
	for i := range f.Trajects {
		t, err := f.Trajects[i].ToTraject()
		if err != nil {
			return nil, err
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("fixture: duplicate traject %q", t.Name)
		}
		seen[t.Name] = true
		out = append(out, t)
	}
	return out, nil
}

// Resolver looks up a traject that a project references but the fixture does not
// carry.
type Resolver func(name string) (*traject.Traject, error)

// ToProgram converts the fixture's projects together with its trajects and
// validates the references. Trajects missing from the fixture are looked up with
// resolve; a nil resolve leaves them unknown.
func (f *Fixture) ToProgram(resolve Resolver) (traject.Program, error) {
	trajects, err := f.ToTrajects()
	if err != nil {
		return traject.Program{}, err
	}
	p := traject.Program{
		Projects: f.ToProjects(),
		Trajects: make(map[string]*traject.Traject, len(trajects)),
	}
	for _, t := range trajects {
		p.Trajects[t.Name] = t
	}
	if resolve != nil {
		for _, pr := range p.Projects {
			for _, ref := range pr.Sections {
				if _, ok := p.Trajects[ref.Traject]; ok {
					continue
				}
				t, err := resolve(ref.Traject)
				if err != nil {
					return traject.Program{}, fmt.Errorf("fixture: project %s: %w", pr.Name, err)
				}
				p.Trajects[ref.Traject] = t
			}
		}
	}
	if err := p.Validate(); err != nil {
		return traject.Program{}, fmt.Errorf("fixture: %w", err)
	}
	return p, nil
}

// ToProjects converts the projects without resolving their references.
func (f *Fixture) ToProjects() []traject.Project {
	out := make([]traject.Project, 0, len(f.Projects))
	for _, fp := range f.Projects {
		p := traject.Project{Name: fp.Name, StartYear: fp.StartYear, EndYear: fp.EndYear}
		for _, ref := range fp.Sections {
			p.Sections = append(p.Sections, traject.SectionRef{Traject: ref.Traject, Section: ref.Section})
		}
		out = append(out, p)
	}
	return out
}

// ToTraject converts a FixtureTraject to a validated domain Traject.
func (ft *FixtureTraject) ToTraject() (*traject.Traject, error) {
	t := &traject.Traject{
		Name:     ft.Name,
		Standard: traject.Standard{LowerBound: ft.Standard.LowerBound, Signalling: ft.Standard.Signalling},
		Damage:   ft.Damage,
		Orders:   make(map[traject.Strategy][]string, len(ft.Orders)),
		Steps:    make(map[traject.Strategy][]traject.OptimizerStep, len(ft.Steps)),
		Recorded: make(map[traject.Strategy][]traject.RecordedStep, len(ft.Recorded)),
	}

	for i := range ft.Sections {
		s, err := ft.Sections[i].toSection()
		if err != nil {
			return nil, fmt.Errorf("traject %s: %w", ft.Name, err)
		}
		t.Sections = append(t.Sections, s)
	}

	for key, order := range ft.Orders {
		strategy, err := traject.ParseStrategy(key)
		if err != nil {
			return nil, fmt.Errorf("traject %s orders: %w", ft.Name, err)
		}
		t.Orders[strategy] = append([]string(nil), order...)
	}

	for key, steps := range ft.Steps {
		strategy, err := traject.ParseStrategy(key)
		if err != nil {
			return nil, fmt.Errorf("traject %s steps: %w", ft.Name, err)
		}
		for _, fs := range steps {
			series, err := toSeriesMap(fs.Series)
			if err != nil {
				return nil, fmt.Errorf("traject %s step %d: %w", ft.Name, fs.Number, err)
			}
			t.Steps[strategy] = append(t.Steps[strategy], traject.OptimizerStep{
				Number:    fs.Number,
				Section:   fs.Section,
				Measure:   fs.Measure,
				LCC:       fs.LCC,
				TotalLCC:  fs.TotalLCC,
				TotalRisk: fs.TotalRisk,
				Series:    series,
			})
		}
	}

	for key, recorded := range ft.Recorded {
		strategy, err := traject.ParseStrategy(key)
		if err != nil {
			return nil, fmt.Errorf("traject %s recorded: %w", ft.Name, err)
		}
		for _, rs := range recorded {
			t.Recorded[strategy] = append(t.Recorded[strategy], traject.RecordedStep{
				CumulativeCost: rs.CumulativeCost,
				Pf:             append([]float64(nil), rs.Pf...),
			})
		}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (fs *FixtureSection) toSection() (*traject.Section, error) {
	s := &traject.Section{
		Name:       fs.Name,
		Length:     fs.Length,
		InAnalysis: fs.InAnalysis == nil || *fs.InAnalysis,
		Measures:   make(map[traject.Strategy]*traject.Measure, len(fs.Measures)),
	}
	for _, token := range fs.Mechanisms {
		m, err := traject.ParseMechanism(token)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", fs.Name, err)
		}
		s.Mechanisms = append(s.Mechanisms, m)
	}

	initial, err := toSeriesMap(fs.Initial)
	if err != nil {
		return nil, fmt.Errorf("section %s initial: %w", fs.Name, err)
	}
	s.Initial = initial
	if s.Initial == nil {
		s.Initial = make(map[traject.MechanismKind]reliability.Series)
	}

	for key, fm := range fs.Measures {
		strategy, err := traject.ParseStrategy(key)
		if err != nil {
			return nil, fmt.Errorf("section %s measures: %w", fs.Name, err)
		}
		series, err := toSeriesMap(fm.Series)
		if err != nil {
			return nil, fmt.Errorf("section %s measure %s: %w", fs.Name, strategy, err)
		}
		if series == nil {
			series = make(map[traject.MechanismKind]reliability.Series)
		}
		s.Measures[strategy] = &traject.Measure{
			Name:       fm.Name,
			Cost:       fm.Cost,
			Parameters: fm.Parameters,
			Series:     series,
		}
	}
	return s, nil
}

func toSeriesMap(in map[string]FixtureSeries) (map[traject.MechanismKind]reliability.Series, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[traject.MechanismKind]reliability.Series, len(in))
	for key, fs := range in {
		m, err := traject.ParseMechanism(key)
		if err != nil {
			return nil, err
		}
		ser, err := fs.ToSeries()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m, err)
		}
		out[m] = ser
	}
	return out, nil
}

// ToSeries converts betas or probabilities into a Series. Giving both is an error.
func (fs FixtureSeries) ToSeries() (reliability.Series, error) {
	switch {
	case len(fs.Betas) > 0 && len(fs.Pf) > 0:
		return reliability.Series{}, fmt.Errorf("series has both betas and pf")
	case len(fs.Pf) > 0:
		if len(fs.Pf) != len(fs.Years) {
			return reliability.Series{}, fmt.Errorf("%w: %d years, %d values", reliability.ErrInvalidAxis, len(fs.Years), len(fs.Pf))
		}
		return reliability.FromProbabilities(fs.Years, fs.Pf), nil
	default:
		return reliability.Series{
			Offsets: append([]int(nil), fs.Years...),
			Betas:   append([]float64(nil), fs.Betas...),
		}, nil
	}
}

// #endregion conversion
