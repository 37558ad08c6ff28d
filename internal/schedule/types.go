package schedule

import "github.com/Deltares-research/VrtoolDashboard-sub000/internal/reliability"

// #region calendar-curve
// CalendarCurve is a system failure probability per calendar year. A year can occur
// twice at a project completion boundary: first before, then after the reinforcement.
type CalendarCurve struct {
	Traject string
	Years   []int
	Pf      []float64
}

// Betas converts the probabilities into reliability indices.
func (c CalendarCurve) Betas() []float64 {
	out := make([]float64, len(c.Pf))
	for i, p := range c.Pf {
		out[i] = reliability.ToBeta(p)
	}
	return out
}

// #endregion calendar-curve

// #region project-cost
// ProjectCost is the summed measure cost of one project.
type ProjectCost struct {
	Name      string
	StartYear int
	EndYear   int
	Cost      float64
}

// #endregion project-cost
