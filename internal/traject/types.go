package traject

import (
	"fmt"
	"strings"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/reliability"
)

// #region mechanism
// MechanismKind enumerates failure modes.
type MechanismKind string

const (
	Overflow       MechanismKind = "Overflow"
	Piping         MechanismKind = "Piping"
	StabilityInner MechanismKind = "StabilityInner"
	Revetment      MechanismKind = "Revetment"

	// SectionMode is the per-section combination of all active mechanisms.
	SectionMode MechanismKind = "Section"
)

// Mechanisms lists the real failure modes in evaluation order.
var Mechanisms = []MechanismKind{Overflow, Piping, StabilityInner, Revetment}

// ParseMechanism maps a token to a MechanismKind, case-insensitively.
func ParseMechanism(s string) (MechanismKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "overflow":
		return Overflow, nil
	case "piping":
		return Piping, nil
	case "stabilityinner", "stability_inner":
		return StabilityInner, nil
	case "revetment":
		return Revetment, nil
	case "section":
		return SectionMode, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMechanism, s)
}

// #endregion mechanism

// #region strategy
// Strategy selects which optimizer outcome a post-measure state refers to.
type Strategy string

const (
	// VR is the cost-effectiveness optimized strategy.
	VR Strategy = "vr"
	// DSN is the cross-section standards compliant strategy.
	DSN Strategy = "dsn"
)

// ParseStrategy maps a token to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vr", "veiligheidsrendement":
		return VR, nil
	case "dsn", "doorsnede", "doorsnede-eisen":
		return DSN, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// Valid reports whether the strategy is one of the known values.
func (s Strategy) Valid() bool {
	return s == VR || s == DSN
}

// #endregion strategy

// #region section
// Measure is the final reinforcement of a section under one strategy.
type Measure struct {
	Name       string
	Parameters map[string]float64
	Cost       float64 // life-cycle cost
	Series     map[MechanismKind]reliability.Series
}

// Section is a discrete length of the defense line.
type Section struct {
	Name       string
	Length     float64 // m
	InAnalysis bool
	Mechanisms []MechanismKind // active mechanisms
	Initial    map[MechanismKind]reliability.Series
	Measures   map[Strategy]*Measure
}

// Active reports whether mechanism m is active on the section.
func (s *Section) Active(m MechanismKind) bool {
	for _, a := range s.Mechanisms {
		if a == m {
			return true
		}
	}
	return false
}

// Axis returns the assessment time axis shared by the section's initial series.
func (s *Section) Axis() []int {
	for _, m := range Mechanisms {
		if ser, ok := s.Initial[m]; ok && s.Active(m) && !ser.Empty() {
			return ser.Offsets
		}
	}
	return nil
}

// Measure returns the final measure for a strategy, or nil.
func (s *Section) Measure(strategy Strategy) *Measure {
	if s.Measures == nil {
		return nil
	}
	return s.Measures[strategy]
}

// #endregion section

// #region standard
// Standard holds the two reliability thresholds of a traject, as annual probabilities.
type Standard struct {
	LowerBound float64
	Signalling float64
}

// #endregion standard

// #region optimizer
// OptimizerStep is one bookkeeping entry of the optimizer's output. Entries sharing
// Number were applied together and form one reinforcement step.
type OptimizerStep struct {
	Number    int
	Section   string
	Measure   string // sub-measure identifier used for cost bookkeeping
	LCC       float64
	TotalLCC  float64
	TotalRisk float64
	Series    map[MechanismKind]reliability.Series // post-step series; empty means the final measure
}

// RecordedStep is one snapshot of the optimizer's own trace.
type RecordedStep struct {
	CumulativeCost float64
	Pf             []float64 // system pf per offset of the assessment axis
}

// #endregion optimizer

// #region traject
// Traject is a flood-defense system composed of ordered sections. It is
// immutable once built.
type Traject struct {
	Name     string
	Sections []*Section
	Standard Standard
	Damage   float64 // EUR
	Orders   map[Strategy][]string
	Steps    map[Strategy][]OptimizerStep
	Recorded map[Strategy][]RecordedStep
}

// Section looks up a section by name.
func (t *Traject) Section(name string) (*Section, bool) {
	for _, s := range t.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Order returns the reinforcement order for a strategy.
func (t *Traject) Order(strategy Strategy) []string {
	if t.Orders == nil {
		return nil
	}
	return t.Orders[strategy]
}

// InOrder reports whether the named section was reinforced under the strategy.
func (t *Traject) InOrder(strategy Strategy, name string) bool {
	for _, n := range t.Order(strategy) {
		if n == name {
			return true
		}
	}
	return false
}

// #endregion traject

// #region program
// SectionRef points at one section of one traject.
type SectionRef struct {
	Traject string
	Section string
}

// Project is one phased construction contract.
type Project struct {
	Name      string
	StartYear int
	EndYear   int
	Sections  []SectionRef
}

// Program is a set of projects plus the trajects they reference.
type Program struct {
	Projects []Project
	Trajects map[string]*Traject
}

// #endregion program
