package risk

import (
	"fmt"
	"math"
	"sort"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/config"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/engine"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
)

// #region total-risk
// TotalRisk discounts the expected damage over cfg.RiskHorizon years:
// sum over t in [0, H) of damage * pf(t) / (1+r)^t, with pf interpolated (or
// extrapolated) to yearly offsets. An empty curve carries no risk.
func TotalRisk(curve engine.Curve, damage float64, cfg config.Config) (float64, error) {
	if curve.Len() == 0 || cfg.RiskHorizon <= 0 {
		return 0, nil
	}
	offsets := make([]int, cfg.RiskHorizon)
	for i := range offsets {
		offsets[i] = i
	}
	pf, err := curve.At(offsets)
	if err != nil {
		return 0, fmt.Errorf("total risk: %w", err)
	}
	var sum float64
	for t, p := range pf {
		sum += damage * p / math.Pow(1+cfg.DiscountRate, float64(t))
	}
	return sum, nil
}

// #endregion total-risk

// #region prioritize
// Prioritize ranks the sections of t by marginal risk per unit cost. The base is
// the fully reinforced state; for every reinforced section a counterfactual reverts
// only that section to its assessment series. Sections outside the reinforced set
// score 0. Ties keep the traject's section order.
func Prioritize(t *traject.Traject, strategy traject.Strategy, cfg config.Config) (Ranking, error) {
	if !strategy.Valid() {
		return Ranking{}, fmt.Errorf("prioritize %s: %w: %q", t.Name, traject.ErrUnknownStrategy, strategy)
	}

	// 1. Reinforced set with cost checks up front
	reinforced := make(map[string]float64)
	var names []string
	for _, name := range t.Order(strategy) {
		s, ok := t.Section(name)
		if !ok {
			return Ranking{}, fmt.Errorf("prioritize %s: %w: %q", t.Name, traject.ErrUnknownSection, name)
		}
		m := s.Measure(strategy)
		if m == nil {
			continue
		}
		if _, dup := reinforced[name]; dup {
			continue
		}
		if m.Cost <= 0 || math.IsNaN(m.Cost) {
			return Ranking{}, fmt.Errorf("prioritize %s: section %s cost %v: %w", t.Name, name, m.Cost, traject.ErrDegenerateCost)
		}
		reinforced[name] = m.Cost
		names = append(names, name)
	}

	// 2. Base risk
	base := engine.ReinforcedSet(names, strategy)
	baseRisk, err := planRisk(t, base, cfg)
	if err != nil {
		return Ranking{}, fmt.Errorf("prioritize %s: %w", t.Name, err)
	}

	// 3. Counterfactual per section
	out := Ranking{Traject: t.Name, Strategy: strategy, BaseRisk: baseRisk}
	for _, s := range t.Sections {
		cost, ok := reinforced[s.Name]
		if !ok {
			out.Entries = append(out.Entries, Priority{Section: s.Name})
			continue
		}
		cf, err := planRisk(t, base.With(s.Name, engine.AssessmentState()), cfg)
		if err != nil {
			return Ranking{}, fmt.Errorf("prioritize %s: section %s: %w", t.Name, s.Name, err)
		}
		out.Entries = append(out.Entries, Priority{
			Section:            s.Name,
			Reinforced:         true,
			Cost:               cost,
			CounterfactualRisk: cf,
			Index:              (cf - baseRisk) / cost,
		})
	}

	// 4. Descending index
	sort.SliceStable(out.Entries, func(i, j int) bool { return out.Entries[i].Index > out.Entries[j].Index })
	return out, nil
}

func planRisk(t *traject.Traject, plan engine.Plan, cfg config.Config) (float64, error) {
	curve, err := engine.Traject(t, plan)
	if err != nil {
		return 0, err
	}
	return TotalRisk(curve, t.Damage, cfg)
}

// #endregion prioritize
