package replay

import (
	"fmt"
	"sort"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/engine"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/reliability"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
)

// #region grouping
// stepGroup is one reinforcement step: every optimizer entry sharing a step number.
type stepGroup struct {
	number    int
	entries   []traject.OptimizerStep
	totalLCC  float64
	totalRisk float64
}

// groupSteps collects entries by step number, ordered by number. Entries keep their
// input order inside a group.
func groupSteps(steps []traject.OptimizerStep) []stepGroup {
	index := make(map[int]int)
	var groups []stepGroup
	for _, st := range steps {
		i, ok := index[st.Number]
		if !ok {
			i = len(groups)
			index[st.Number] = i
			groups = append(groups, stepGroup{number: st.Number})
		}
		g := &groups[i]
		g.entries = append(g.entries, st)
		g.totalLCC = st.TotalLCC
		g.totalRisk = st.TotalRisk
	}
	sort.SliceStable(groups, func(a, b int) bool { return groups[a].number < groups[b].number })
	return groups
}

// #endregion grouping

// #region accumulator
type costKey struct {
	section string
	measure string
}

// accumulator is the replay state between steps. apply returns a new accumulator
// and never mutates the receiver.
type accumulator struct {
	plan       engine.Plan
	overrides  map[string]map[traject.MechanismKind]reliability.Series
	charged    map[costKey]float64
	cumulative float64
	order      []string
}

func newAccumulator() accumulator {
	return accumulator{
		plan:      engine.Unreinforced(),
		overrides: map[string]map[traject.MechanismKind]reliability.Series{},
		charged:   map[costKey]float64{},
	}
}

// apply folds one step group into the accumulator. Each entry substitutes the
// section's post-step series and is charged the difference between its LCC and
// what the same section/sub-measure was already charged, never less than zero.
func (a accumulator) apply(t *traject.Traject, strategy traject.Strategy, g stepGroup) (accumulator, float64, []string) {
	next := accumulator{
		plan:       a.plan,
		overrides:  make(map[string]map[traject.MechanismKind]reliability.Series, len(a.overrides)+1),
		charged:    make(map[costKey]float64, len(a.charged)+len(g.entries)),
		cumulative: a.cumulative,
		order:      append([]string(nil), a.order...),
	}
	for k, v := range a.overrides {
		next.overrides[k] = v
	}
	for k, v := range a.charged {
		next.charged[k] = v
	}

	var increment float64
	var touched []string
	for _, e := range g.entries {
		merged := make(map[traject.MechanismKind]reliability.Series)
		for m, s := range next.overrides[e.Section] {
			merged[m] = s
		}
		for m, s := range postStepSeries(t, strategy, e) {
			merged[m] = s
		}
		next.overrides[e.Section] = merged
		next.plan = next.plan.With(e.Section, engine.OverrideState(merged))

		key := costKey{section: e.Section, measure: e.Measure}
		if delta := e.LCC - next.charged[key]; delta > 0 {
			increment += delta
			next.charged[key] = e.LCC
		}

		if !contains(next.order, e.Section) {
			next.order = append(next.order, e.Section)
		}
		if !contains(touched, e.Section) {
			touched = append(touched, e.Section)
		}
	}
	next.cumulative += increment
	return next, increment, touched
}

// postStepSeries returns the entry's own series, or the section's final measure
// series when the entry carries none.
func postStepSeries(t *traject.Traject, strategy traject.Strategy, e traject.OptimizerStep) map[traject.MechanismKind]reliability.Series {
	if len(e.Series) > 0 {
		return e.Series
	}
	s, ok := t.Section(e.Section)
	if !ok {
		return nil
	}
	if m := s.Measure(strategy); m != nil {
		return m.Series
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// #endregion accumulator

// #region replay
// Replay reconstructs the greedy trace of one strategy: starting from the fully
// unreinforced traject it applies the optimizer's steps in order, recomputing the
// system probability and the cumulative cost after each step, until the stop
// criterion fires or the steps run out. No steps yields an empty trace.
func Replay(t *traject.Traject, config ReplayConfig) (Trace, error) {
	if !config.Strategy.Valid() {
		return Trace{}, fmt.Errorf("replay %s: %w: %q", t.Name, traject.ErrUnknownStrategy, config.Strategy)
	}
	trace := Trace{Traject: t.Name, Strategy: config.Strategy}

	groups := groupSteps(t.Steps[config.Strategy])
	if len(groups) == 0 {
		return trace, nil
	}

	// 1. Precompute the economic optimum once.
	optimum := -1
	if config.Criterion.Kind == StopEconomicOptimum {
		optimum = optimalIndex(groups)
		if optimum < 1 {
			return Trace{}, fmt.Errorf("replay %s: %w: no step has a finite total cost", t.Name, traject.ErrInvalidStep)
		}
		trace.OptimalStep = groups[optimum-1].number
	}

	// 2. Initial state.
	acc := newAccumulator()
	curve, err := engine.Traject(t, acc.plan)
	if err != nil {
		return Trace{}, fmt.Errorf("replay initial state: %w", err)
	}
	trace.Steps = append(trace.Steps, TraceStep{Index: 0, Number: 0, Curve: curve})

	if config.Criterion.Kind == StopTargetReliability {
		met, _, err := meetsTarget(curve, config.ReferenceYear, config.Criterion)
		if err != nil {
			return Trace{}, err
		}
		if met {
			trace.Stopped = true
			return trace, nil
		}
	}

	// 3. Fold the steps.
	for i, g := range groups {
		var increment float64
		var touched []string
		acc, increment, touched = acc.apply(t, config.Strategy, g)

		curve, err := engine.Traject(t, acc.plan)
		if err != nil {
			return Trace{}, fmt.Errorf("replay step %d: %w", g.number, err)
		}
		trace.Steps = append(trace.Steps, TraceStep{
			Index:           i + 1,
			Number:          g.number,
			Sections:        touched,
			Curve:           curve,
			IncrementalCost: increment,
			CumulativeCost:  acc.cumulative,
		})
		trace.Order = acc.order
		trace.TerminalStep = g.number

		// 4. Stop check.
		switch config.Criterion.Kind {
		case StopEconomicOptimum:
			if i+1 >= optimum {
				trace.Stopped = true
			}
		case StopTargetReliability:
			met, _, err := meetsTarget(curve, config.ReferenceYear, config.Criterion)
			if err != nil {
				return Trace{}, err
			}
			trace.Stopped = met
		}
		if trace.Stopped {
			break
		}
	}

	return trace, nil
}

// Summarize computes aggregate figures of a trace.
func Summarize(trace Trace) ReplaySummary {
	s := ReplaySummary{
		TotalSteps:      len(trace.Steps),
		SectionsTouched: len(trace.Order),
	}
	last, ok := trace.Final()
	if !ok {
		return s
	}
	first := trace.Steps[0]
	s.FinalCost = last.CumulativeCost
	if len(first.Curve.Pf) > 0 {
		s.InitialPf = first.Curve.Pf[0]
	}
	if len(last.Curve.Pf) > 0 {
		s.FinalPf = last.Curve.Pf[0]
	}
	return s
}

// #endregion replay
