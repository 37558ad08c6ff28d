package traject

import (
	"fmt"
	"math"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/reliability"
)

// #region validate-traject
// Validate checks the structural invariants of an imported traject: every series is
// well formed, all mechanism series of one section share the section's time axis, and
// reinforcement orders and optimizer steps only reference known sections.
func (t *Traject) Validate() error {
	seen := make(map[string]bool, len(t.Sections))
	for _, s := range t.Sections {
		if s.Name == "" {
			return fmt.Errorf("traject %s: %w: empty section name", t.Name, ErrUnknownSection)
		}
		if seen[s.Name] {
			return fmt.Errorf("traject %s: duplicate section %q", t.Name, s.Name)
		}
		seen[s.Name] = true
		if err := s.validate(); err != nil {
			return fmt.Errorf("traject %s: %w", t.Name, err)
		}
	}

	for strategy, order := range t.Orders {
		if !strategy.Valid() {
			return fmt.Errorf("traject %s: %w: %q", t.Name, ErrUnknownStrategy, strategy)
		}
		for _, name := range order {
			if !seen[name] {
				return fmt.Errorf("traject %s: order %s: %w: %q", t.Name, strategy, ErrUnknownSection, name)
			}
		}
	}

	for strategy, steps := range t.Steps {
		if !strategy.Valid() {
			return fmt.Errorf("traject %s: %w: %q", t.Name, ErrUnknownStrategy, strategy)
		}
		for _, st := range steps {
			if !seen[st.Section] {
				return fmt.Errorf("traject %s: step %d: %w: %q", t.Name, st.Number, ErrUnknownSection, st.Section)
			}
			if !finite(st.LCC) || !finite(st.TotalLCC) || !finite(st.TotalRisk) {
				return fmt.Errorf("traject %s: step %d: %w: non-finite cost (lcc %v, total lcc %v, total risk %v)",
					t.Name, st.Number, ErrInvalidStep, st.LCC, st.TotalLCC, st.TotalRisk)
			}
			for m, ser := range st.Series {
				if err := ser.Validate(); err != nil {
					return fmt.Errorf("traject %s: step %d %s: %w", t.Name, st.Number, m, err)
				}
			}
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// #endregion validate-traject

// #region validate-section
func (s *Section) validate() error {
	var axis []int
	check := func(label string, m MechanismKind, ser reliability.Series) error {
		if err := ser.Validate(); err != nil {
			return fmt.Errorf("section %s %s %s: %w", s.Name, label, m, err)
		}
		if axis == nil {
			axis = ser.Offsets
			return nil
		}
		if !reliability.SameAxis(axis, ser.Offsets) {
			return fmt.Errorf("section %s %s %s: %w", s.Name, label, m, ErrAxisMismatch)
		}
		return nil
	}

	for _, m := range s.Mechanisms {
		if m == SectionMode {
			return fmt.Errorf("section %s: %w: %s cannot be an active mechanism", s.Name, ErrUnknownMechanism, m)
		}
	}
	for _, m := range Mechanisms {
		ser, ok := s.Initial[m]
		if !ok {
			continue
		}
		if err := check("initial", m, ser); err != nil {
			return err
		}
	}
	for strategy, measure := range s.Measures {
		if !strategy.Valid() {
			return fmt.Errorf("section %s: %w: %q", s.Name, ErrUnknownStrategy, strategy)
		}
		if measure == nil {
			continue
		}
		for _, m := range Mechanisms {
			ser, ok := measure.Series[m]
			if !ok {
				continue
			}
			if err := check(string(strategy), m, ser); err != nil {
				return err
			}
		}
	}
	return nil
}

// #endregion validate-section

// #region validate-program
// Validate checks that every project has a sane year window and references known
// trajects and sections.
func (p *Program) Validate() error {
	for _, pr := range p.Projects {
		if pr.StartYear > pr.EndYear {
			return fmt.Errorf("project %s: %w: start %d after end %d", pr.Name, ErrInvalidProject, pr.StartYear, pr.EndYear)
		}
		for _, ref := range pr.Sections {
			t, ok := p.Trajects[ref.Traject]
			if !ok {
				return fmt.Errorf("project %s: %w: %q", pr.Name, ErrUnknownTraject, ref.Traject)
			}
			if _, ok := t.Section(ref.Section); !ok {
				return fmt.Errorf("project %s: traject %s: %w: %q", pr.Name, ref.Traject, ErrUnknownSection, ref.Section)
			}
		}
	}
	return nil
}

// #endregion validate-program
