package risk

import "github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"

// #region ranking
// Priority is the risk-based index of one section.
type Priority struct {
	Section            string
	Reinforced         bool
	Cost               float64
	CounterfactualRisk float64 // total risk with only this section reverted; 0 when not reinforced
	Index              float64 // (counterfactual - base) / cost
}

// Ranking orders the sections of a traject by descending priority index.
type Ranking struct {
	Traject  string
	Strategy traject.Strategy
	BaseRisk float64 // total risk of the fully reinforced state
	Entries  []Priority
}

// Sections returns the section names in ranking order.
func (r Ranking) Sections() []string {
	out := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Section
	}
	return out
}

// #endregion ranking
