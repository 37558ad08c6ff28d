package schedule

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/config"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/engine"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/reliability"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
)

// #region run
// Run produces one calendar curve per traject of the program. Sections become
// reinforced exactly at their project's end year; projects are processed in end
// year order and trajects are evaluated concurrently.
func Run(ctx context.Context, program traject.Program, strategy traject.Strategy, cfg config.Config) (map[string]CalendarCurve, error) {
	if !strategy.Valid() {
		return nil, fmt.Errorf("schedule: %w: %q", traject.ErrUnknownStrategy, strategy)
	}
	if err := program.Validate(); err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}

	projects := append([]traject.Project(nil), program.Projects...)
	sort.SliceStable(projects, func(i, j int) bool { return projects[i].EndYear < projects[j].EndYear })

	names := make([]string, 0, len(program.Trajects))
	for name := range program.Trajects {
		names = append(names, name)
	}
	sort.Strings(names)

	var mu sync.Mutex
	out := make(map[string]CalendarCurve, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name
		t := program.Trajects[name]
		g.Go(func() error {
			curve, err := trajectCurve(gctx, t, projects, strategy, cfg)
			if err != nil {
				return fmt.Errorf("schedule traject %s: %w", t.Name, err)
			}
			mu.Lock()
			out[name] = curve
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// #endregion run

// #region traject-curve
// milestone is a completion year with the sections of one traject finished then.
type milestone struct {
	year     int
	sections []string
}

func milestonesFor(t *traject.Traject, projects []traject.Project) []milestone {
	var out []milestone
	for _, p := range projects {
		var secs []string
		for _, ref := range p.Sections {
			if ref.Traject == t.Name {
				secs = append(secs, ref.Section)
			}
		}
		if len(secs) == 0 {
			continue
		}
		if n := len(out); n > 0 && out[n-1].year == p.EndYear {
			out[n-1].sections = append(out[n-1].sections, secs...)
			continue
		}
		out = append(out, milestone{year: p.EndYear, sections: secs})
	}
	return out
}

// trajectCurve walks the milestones of one traject. Every window is evaluated with
// the cumulative set of sections reinforced so far and both ends are inclusive, so
// a milestone year appears once before and once after its reinforcement.
func trajectCurve(ctx context.Context, t *traject.Traject, projects []traject.Project, strategy traject.Strategy, cfg config.Config) (CalendarCurve, error) {
	out := CalendarCurve{Traject: t.Name}
	plan := engine.Unreinforced()
	from := cfg.ProgramStartYear
	horizon := cfg.ProgramHorizonYear

	for _, ms := range milestonesFor(t, projects) {
		if err := ctx.Err(); err != nil {
			return CalendarCurve{}, err
		}
		if ms.year >= from {
			to := ms.year
			if to > horizon {
				to = horizon
			}
			if err := appendWindow(&out, t, plan, from, to, cfg.ReferenceYear); err != nil {
				return CalendarCurve{}, err
			}
			if ms.year >= horizon {
				return out, nil
			}
			from = ms.year
		}
		for _, name := range ms.sections {
			plan = plan.With(name, engine.ReinforcedState(strategy))
		}
	}

	if err := appendWindow(&out, t, plan, from, horizon, cfg.ReferenceYear); err != nil {
		return CalendarCurve{}, err
	}
	return out, nil
}

func appendWindow(out *CalendarCurve, t *traject.Traject, plan engine.Plan, from, to, referenceYear int) error {
	years := reliability.Years(from, to)
	if len(years) == 0 {
		return nil
	}
	curve, err := engine.Traject(t, plan)
	if err != nil {
		return err
	}

	pf := make([]float64, len(years))
	if curve.Len() > 0 {
		offsets := make([]int, len(years))
		for i, y := range years {
			offsets[i] = y - referenceYear
		}
		pf, err = curve.At(offsets)
		if err != nil {
			return err
		}
	}
	out.Years = append(out.Years, years...)
	out.Pf = append(out.Pf, pf...)
	return nil
}

// #endregion traject-curve

// #region costs
// ProjectCosts sums the final measure cost of every section in each project, in
// end year order. Sections without a measure for the strategy cost nothing.
func ProjectCosts(program traject.Program, strategy traject.Strategy) ([]ProjectCost, error) {
	if !strategy.Valid() {
		return nil, fmt.Errorf("project costs: %w: %q", traject.ErrUnknownStrategy, strategy)
	}
	if err := program.Validate(); err != nil {
		return nil, fmt.Errorf("project costs: %w", err)
	}
	out := make([]ProjectCost, 0, len(program.Projects))
	for _, p := range program.Projects {
		pc := ProjectCost{Name: p.Name, StartYear: p.StartYear, EndYear: p.EndYear}
		for _, ref := range p.Sections {
			s, _ := program.Trajects[ref.Traject].Section(ref.Section)
			if m := s.Measure(strategy); m != nil {
				pc.Cost += m.Cost
			}
		}
		out = append(out, pc)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EndYear < out[j].EndYear })
	return out, nil
}

// #endregion costs
