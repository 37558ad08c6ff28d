package analysis

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/config"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/diagnostics"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/engine"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/fixture"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/logging"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/replay"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/risk"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/schedule"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/store"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
)

// #region service-struct
// Service runs the evaluation core against stored trajects. Every analysis is
// logged and recorded in analysis_runs.
type Service struct {
	store  *store.Store
	cfg    config.Config
	logger *zap.Logger
	diag   *diagnostics.Harness
}

// NewService wires a service. A nil logger disables logging.
func NewService(st *store.Store, cfg config.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  st,
		cfg:    cfg,
		logger: logger,
		diag:   diagnostics.NewHarness(diagnostics.DefaultConfig(cfg.ReferenceYear)),
	}
}

// Config returns the settings the service runs with.
func (s *Service) Config() config.Config {
	return s.cfg
}

// #endregion service-struct

// #region import
// Import reads an import file, validates it as a whole and stores its trajects and
// projects in one transaction. Project references may point at trajects stored by
// an earlier import.
func (s *Service) Import(ctx context.Context, path string) (ImportResult, error) {
	f, err := fixture.Load(path)
	if err != nil {
		return ImportResult{}, err
	}

	// 1. Convert and validate everything before writing
	trajects, err := f.ToTrajects()
	if err != nil {
		return ImportResult{}, fmt.Errorf("import %s: %w", path, err)
	}
	var projects []traject.Project
	if len(f.Projects) > 0 {
		program, err := f.ToProgram(func(name string) (*traject.Traject, error) {
			return s.store.LoadTraject(ctx, name)
		})
		if err != nil {
			return ImportResult{}, fmt.Errorf("import %s: %w", path, err)
		}
		projects = program.Projects
	}

	// 2. Store
	ids, err := s.store.SaveImport(ctx, trajects, projects)
	if err != nil {
		return ImportResult{}, fmt.Errorf("import %s: %w", path, err)
	}

	var out ImportResult
	for i, t := range trajects {
		s.logger.Info("traject imported",
			zap.String("traject", t.Name),
			zap.String("traject_id", ids[i]),
			zap.Int("sections", len(t.Sections)),
		)
		out.Trajects = append(out.Trajects, t.Name)
	}
	if projects != nil {
		out.Projects = len(projects)
		s.logger.Info("program imported", zap.Int("projects", out.Projects))
	}
	return out, nil
}

// Delete removes a stored traject with everything derived from it.
func (s *Service) Delete(ctx context.Context, name string) error {
	start := time.Now()
	if err := s.store.DeleteTraject(ctx, name); err != nil {
		return s.fail("delete", name, "", start, err)
	}
	s.succeed("delete", name, "", start, s.params(), "traject deleted")
	return nil
}

// Trajects lists the stored trajects.
func (s *Service) Trajects(ctx context.Context) ([]store.TrajectInfo, error) {
	return s.store.ListTrajects(ctx)
}

// Runs returns the most recent recorded analyses.
func (s *Service) Runs(limit int) ([]logging.RunEntry, error) {
	return logging.ListRuns(s.store.DB(), limit)
}

// #endregion import

// #region system
// SystemCurve evaluates a traject either unreinforced or fully reinforced under the
// strategy, and checks the curve over the program window.
func (s *Service) SystemCurve(ctx context.Context, name string, strategy traject.Strategy, reinforced bool) (SystemResult, error) {
	start := time.Now()
	op := "system"

	t, err := s.store.LoadTraject(ctx, name)
	if err != nil {
		return SystemResult{}, s.fail(op, name, strategy, start, err)
	}

	plan := engine.Unreinforced()
	if reinforced {
		if plan, err = engine.FullyReinforced(t, strategy); err != nil {
			return SystemResult{}, s.fail(op, name, strategy, start, err)
		}
	}
	curve, err := engine.Traject(t, plan)
	if err != nil {
		return SystemResult{}, s.fail(op, name, strategy, start, err)
	}
	report, err := s.diag.Run(curve, t.Standard, s.cfg.ProgramStartYear, s.cfg.ProgramHorizonYear)
	if err != nil {
		return SystemResult{}, s.fail(op, name, strategy, start, err)
	}

	runID := s.succeed(op, name, strategy, start, s.params(), report.Reason,
		zap.Bool("reinforced", reinforced),
		zap.Bool("diagnostics_passed", report.Passed),
	)
	return SystemResult{RunID: runID, Curve: curve, Report: report}, nil
}


// SectionCurve evaluates the Section pseudo-mode curve of one section. With
// reinforced set, the section takes its final measure only when the strategy's
// order reinforces it.
func (s *Service) SectionCurve(ctx context.Context, name, section string, strategy traject.Strategy, reinforced bool) (SectionResult, error) {
	start := time.Now()
	op := "section"

	if !strategy.Valid() {
		return SectionResult{}, s.fail(op, name, strategy, start, fmt.Errorf("section curve: %w: %q", traject.ErrUnknownStrategy, strategy))
	}
	t, err := s.store.LoadTraject(ctx, name)
	if err != nil {
		return SectionResult{}, s.fail(op, name, strategy, start, err)
	}
	sec, ok := t.Section(section)
	if !ok {
		return SectionResult{}, s.fail(op, name, strategy, start, fmt.Errorf("section curve %s: %w: %q", name, traject.ErrUnknownSection, section))
	}

	state := engine.AssessmentState()
	applied := reinforced && t.InOrder(strategy, section)
	if applied {
		state = engine.ReinforcedState(strategy)
	}
	curve, err := engine.SectionCurve(sec, state)
	if err != nil {
		return SectionResult{}, s.fail(op, name, strategy, start, err)
	}

	runID := s.succeed(op, name, strategy, start, s.params(), section,
		zap.String("section", section),
		zap.Bool("reinforced", applied),
	)
	return SectionResult{RunID: runID, Section: section, Reinforced: applied, Curve: curve}, nil
}

// #endregion system

// #region greedy
// GreedyTrace replays the optimizer steps of a traject and compares the result
// with the recorded optimizer trace.
func (s *Service) GreedyTrace(ctx context.Context, name string, strategy traject.Strategy, crit replay.Criterion) (GreedyResult, error) {
	start := time.Now()
	op := "greedy"

	t, err := s.store.LoadTraject(ctx, name)
	if err != nil {
		return GreedyResult{}, s.fail(op, name, strategy, start, err)
	}
	trace, err := replay.Replay(t, replay.ReplayConfig{
		Strategy:      strategy,
		ReferenceYear: s.cfg.ReferenceYear,
		Criterion:     crit,
	})
	if err != nil {
		return GreedyResult{}, s.fail(op, name, strategy, start, err)
	}

	out := GreedyResult{Trace: trace, Summary: replay.Summarize(trace)}
	if recorded := t.Recorded[strategy]; len(recorded) > 0 {
		out.Comparison = replay.Compare(trace, recorded, compareCostTol, comparePfTol)
		if n := replay.Diverging(out.Comparison); n > 0 {
			s.logger.Warn("replay diverges from recorded trace",
				zap.String("traject", name),
				zap.Int("diverging_steps", n),
			)
		}
	}

	params := s.params()
	params.Criterion = string(crit.Kind)
	params.TargetYear = crit.TargetYear
	params.TargetBeta = crit.TargetBeta
	out.RunID = s.succeed(op, name, strategy, start, params,
		fmt.Sprintf("%d steps, terminal step %d", out.Summary.TotalSteps, trace.TerminalStep),
		zap.Int("steps", out.Summary.TotalSteps),
		zap.Bool("stopped", trace.Stopped),
		zap.Float64("final_cost", out.Summary.FinalCost),
	)
	return out, nil
}

// #endregion greedy

// #region prioritize
// Prioritize ranks the sections of a traject by marginal risk per cost.
func (s *Service) Prioritize(ctx context.Context, name string, strategy traject.Strategy) (PriorityResult, error) {
	start := time.Now()
	op := "prioritize"

	t, err := s.store.LoadTraject(ctx, name)
	if err != nil {
		return PriorityResult{}, s.fail(op, name, strategy, start, err)
	}
	ranking, err := risk.Prioritize(t, strategy, s.cfg)
	if err != nil {
		return PriorityResult{}, s.fail(op, name, strategy, start, err)
	}

	runID := s.succeed(op, name, strategy, start, s.params(),
		fmt.Sprintf("%d sections ranked", len(ranking.Entries)),
		zap.Float64("base_risk", ranking.BaseRisk),
	)
	return PriorityResult{RunID: runID, Ranking: ranking}, nil
}

// #endregion prioritize

// #region program
// Program evaluates the stored program over the configured calendar window.
func (s *Service) Program(ctx context.Context, strategy traject.Strategy) (ProgramResult, error) {
	start := time.Now()
	op := "program"

	program, err := s.store.LoadProgram(ctx)
	if err != nil {
		return ProgramResult{}, s.fail(op, "", strategy, start, err)
	}
	curves, err := schedule.Run(ctx, program, strategy, s.cfg)
	if err != nil {
		return ProgramResult{}, s.fail(op, "", strategy, start, err)
	}
	costs, err := schedule.ProjectCosts(program, strategy)
	if err != nil {
		return ProgramResult{}, s.fail(op, "", strategy, start, err)
	}

	params := s.params()
	params.StartYear = s.cfg.ProgramStartYear
	params.HorizonYear = s.cfg.ProgramHorizonYear
	params.Projects = len(program.Projects)
	runID := s.succeed(op, "", strategy, start, params,
		fmt.Sprintf("%d trajects, %d projects", len(curves), len(program.Projects)),
		zap.Int("trajects", len(curves)),
	)
	return ProgramResult{RunID: runID, Curves: curves, Costs: costs}, nil
}

// #endregion program

// #region run-log
func (s *Service) params() logging.RunParams {
	return logging.RunParams{
		ReferenceYear: s.cfg.ReferenceYear,
		DiscountRate:  s.cfg.DiscountRate,
		RiskHorizon:   s.cfg.RiskHorizon,
	}
}

func (s *Service) succeed(op, name string, strategy traject.Strategy, start time.Time, params logging.RunParams, detail string, fields ...zap.Field) string {
	elapsed := time.Since(start)
	runID, err := logging.LogRun(s.store.DB(), logging.RunEntry{
		Operation:  op,
		Traject:    name,
		Strategy:   string(strategy),
		ParamsJSON: logging.EncodeParams(params),
		Outcome:    "ok",
		Detail:     detail,
		Duration:   elapsed,
	})
	if err != nil {
		s.logger.Warn("failed to record run", zap.String("operation", op), zap.Error(err))
	}
	fields = append(fields,
		zap.String("run_id", runID),
		zap.String("traject", name),
		zap.String("strategy", string(strategy)),
		zap.Duration("elapsed", elapsed),
	)
	s.logger.Info(op+" complete", fields...)
	return runID
}

func (s *Service) fail(op, name string, strategy traject.Strategy, start time.Time, cause error) error {
	elapsed := time.Since(start)
	if _, err := logging.LogRun(s.store.DB(), logging.RunEntry{
		Operation: op,
		Traject:   name,
		Strategy:  string(strategy),
		Outcome:   "error",
		Detail:    cause.Error(),
		Duration:  elapsed,
	}); err != nil {
		s.logger.Warn("failed to record run", zap.String("operation", op), zap.Error(err))
	}
	s.logger.Error(op+" failed",
		zap.String("traject", name),
		zap.String("strategy", string(strategy)),
		zap.Error(cause),
	)
	return cause
}

// #endregion run-log
