package engine

import (
	"fmt"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
)

// #region plan
// Plan assigns a SectionState to every section: a default plus per-section
// overrides. Plans are values; With returns a new plan and never mutates the
// receiver.
type Plan struct {
	fallback SectionState
	sections map[string]SectionState
}

// Unreinforced is the plan with every section in its assessment state.
func Unreinforced() Plan {
	return Plan{fallback: AssessmentState()}
}

// FullyReinforced reinforces every section in the strategy's reinforcement order.
// Sections outside the order stay unreinforced.
func FullyReinforced(t *traject.Traject, strategy traject.Strategy) (Plan, error) {
	if !strategy.Valid() {
		return Plan{}, fmt.Errorf("%w: %q", traject.ErrUnknownStrategy, strategy)
	}
	p := Unreinforced()
	for _, name := range t.Order(strategy) {
		p = p.With(name, ReinforcedState(strategy))
	}
	return p, nil
}

// ReinforcedSet reinforces exactly the named sections.
func ReinforcedSet(names []string, strategy traject.Strategy) Plan {
	p := Unreinforced()
	for _, name := range names {
		p = p.With(name, ReinforcedState(strategy))
	}
	return p
}

// With returns a copy of the plan where the named section takes state st.
func (p Plan) With(name string, st SectionState) Plan {
	next := Plan{
		fallback: p.fallback,
		sections: make(map[string]SectionState, len(p.sections)+1),
	}
	for k, v := range p.sections {
		next.sections[k] = v
	}
	next.sections[name] = st
	return next
}

// State returns the state selected for a section.
func (p Plan) State(name string) SectionState {
	if st, ok := p.sections[name]; ok {
		return st
	}
	return p.fallback
}

// #endregion plan
