// Package trajecttest provides small builders for trajects used across package tests.
package trajecttest

import (
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/reliability"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
)

// Axis is the assessment time axis the optimizer reports on.
var Axis = []int{0, 19, 20, 25, 50, 75, 100}

// Constant returns a series with the same failure probability at every offset.
func Constant(axis []int, pf float64) reliability.Series {
	pfs := make([]float64, len(axis))
	for i := range pfs {
		pfs[i] = pf
	}
	return reliability.FromProbabilities(axis, pfs)
}

// Section builds an in-analysis section whose initial series are constant
// probabilities per mechanism.
func Section(name string, axis []int, pfs map[traject.MechanismKind]float64) *traject.Section {
	s := &traject.Section{
		Name:       name,
		Length:     100,
		InAnalysis: true,
		Initial:    make(map[traject.MechanismKind]reliability.Series, len(pfs)),
		Measures:   make(map[traject.Strategy]*traject.Measure),
	}
	for _, m := range traject.Mechanisms {
		pf, ok := pfs[m]
		if !ok {
			continue
		}
		s.Mechanisms = append(s.Mechanisms, m)
		s.Initial[m] = Constant(axis, pf)
	}
	return s
}

// WithMeasure attaches a final measure with constant post-measure probabilities.
func WithMeasure(s *traject.Section, strategy traject.Strategy, cost float64, pfs map[traject.MechanismKind]float64) *traject.Section {
	axis := s.Axis()
	m := &traject.Measure{
		Name:   "Soil reinforcement",
		Cost:   cost,
		Series: make(map[traject.MechanismKind]reliability.Series, len(pfs)),
	}
	for mech, pf := range pfs {
		m.Series[mech] = Constant(axis, pf)
	}
	s.Measures[strategy] = m
	return s
}

// Traject wraps sections into a traject with a default standard and damage.
func Traject(name string, sections ...*traject.Section) *traject.Traject {
	return &traject.Traject{
		Name:     name,
		Sections: sections,
		Standard: traject.Standard{LowerBound: 1.0 / 10000, Signalling: 1.0 / 30000},
		Damage:   1e9,
		Orders:   make(map[traject.Strategy][]string),
		Steps:    make(map[traject.Strategy][]traject.OptimizerStep),
		Recorded: make(map[traject.Strategy][]traject.RecordedStep),
	}
}
