package engine

import (
	"fmt"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/aggregate"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/reliability"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
)

// #region system
// System computes the total failure probability per time step for the given
// sections under plan. Each mechanism is aggregated across the included sections
// with its own combination rule and the mechanism probabilities are summed
// (first-order union bound, no correction term). Sections outside the analysis
// and mechanisms without series are skipped. Included series must share one
// assessment time axis.
func System(sections []*traject.Section, plan Plan) (Curve, error) {
	var axis []int
	contributions := make(map[traject.MechanismKind][][]float64)

	for _, s := range sections {
		if !s.InAnalysis {
			continue
		}
		st := plan.State(s.Name)
		for _, m := range traject.Mechanisms {
			ser, ok, err := selectSeries(s, m, st)
			if err != nil {
				return Curve{}, fmt.Errorf("section %s: %w", s.Name, err)
			}
			if !ok {
				continue
			}
			if axis == nil {
				axis = ser.Offsets
			} else if !reliability.SameAxis(axis, ser.Offsets) {
				return Curve{}, fmt.Errorf("section %s %s: %w", s.Name, m, traject.ErrAxisMismatch)
			}
			contributions[m] = append(contributions[m], ser.Probabilities())
		}
	}

	n := len(axis)
	curve := Curve{
		Offsets:    append([]int(nil), axis...),
		Pf:         make([]float64, n),
		Mechanisms: make(map[traject.MechanismKind][]float64, len(contributions)),
	}
	for _, m := range traject.Mechanisms {
		c, ok := contributions[m]
		if !ok {
			continue
		}
		mech := aggregate.Mechanism(m, c, n)
		curve.Mechanisms[m] = mech
		for i, p := range mech {
			curve.Pf[i] += p
		}
	}
	return curve, nil
}

// Traject evaluates all sections of a traject.
func Traject(t *traject.Traject, plan Plan) (Curve, error) {
	c, err := System(t.Sections, plan)
	if err != nil {
		return Curve{}, fmt.Errorf("traject %s: %w", t.Name, err)
	}
	return c, nil
}

// #endregion system

// #region section-curve
// SectionCurve computes the section pseudo-mechanism: the independent combination
// of all active mechanisms of one section.
func SectionCurve(s *traject.Section, st SectionState) (Curve, error) {
	var axis []int
	var contributions [][]float64
	mechs := make(map[traject.MechanismKind][]float64)
	for _, m := range traject.Mechanisms {
		ser, ok, err := selectSeries(s, m, st)
		if err != nil {
			return Curve{}, fmt.Errorf("section %s: %w", s.Name, err)
		}
		if !ok {
			continue
		}
		if axis == nil {
			axis = ser.Offsets
		} else if !reliability.SameAxis(axis, ser.Offsets) {
			return Curve{}, fmt.Errorf("section %s %s: %w", s.Name, m, traject.ErrAxisMismatch)
		}
		pf := ser.Probabilities()
		mechs[m] = pf
		contributions = append(contributions, pf)
	}
	n := len(axis)
	return Curve{
		Offsets:    append([]int(nil), axis...),
		Pf:         aggregate.Combine(aggregate.IndependentSeries, contributions, n),
		Mechanisms: mechs,
	}, nil
}

// #endregion section-curve

// #region select
// selectSeries picks the series of mechanism m for section s under st. The bool is
// false when the mechanism is inactive or has no data, which callers skip.
func selectSeries(s *traject.Section, m traject.MechanismKind, st SectionState) (reliability.Series, bool, error) {
	if !s.Active(m) {
		return reliability.Series{}, false, nil
	}
	initial, hasInitial := s.Initial[m]

	switch st.Kind {
	case Assessment:
	case Reinforced:
		if !st.Strategy.Valid() {
			return reliability.Series{}, false, fmt.Errorf("%w: %q", traject.ErrUnknownStrategy, st.Strategy)
		}
		if measure := s.Measure(st.Strategy); measure != nil {
			if ser, ok := measure.Series[m]; ok && !ser.Empty() {
				return ser, true, nil
			}
		}
	case Override:
		if ser, ok := st.Series[m]; ok && !ser.Empty() {
			return ser, true, nil
		}
	default:
		return reliability.Series{}, false, fmt.Errorf("unknown state kind %d", st.Kind)
	}

	if !hasInitial || initial.Empty() {
		return reliability.Series{}, false, nil
	}
	return initial, true, nil
}

// #endregion select
