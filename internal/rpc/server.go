package rpc

import (
	"context"
	"errors"
	"fmt"
	"math"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/analysis"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/engine"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/replay"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/store"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
)

// #region server-struct
// Server implements EvaluatorServer on top of an analysis service.
type Server struct {
	svc *analysis.Service
}

// NewServer creates a server.
func NewServer(svc *analysis.Service) *Server {
	return &Server{svc: svc}
}

var _ EvaluatorServer = (*Server)(nil)

// #endregion server-struct

// #region system-curve
// SystemCurve takes {traject, strategy?, reinforced?, section?} and returns
// {run_id, offsets, pf, betas, mechanisms{kind: pf}, diagnostics{passed, reason,
// lower_bound_year, signalling_year}}. With a section it returns that section's
// curve as {run_id, section, reinforced, offsets, pf, betas, mechanisms} instead.
func (s *Server) SystemCurve(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	strategy, err := s.strategy(in)
	if err != nil {
		return nil, toStatus(err)
	}
	if section := stringField(in, "section"); section != "" {
		res, err := s.svc.SectionCurve(ctx, stringField(in, "traject"), section, strategy, boolField(in, "reinforced"))
		if err != nil {
			return nil, toStatus(err)
		}
		return newStruct(map[string]interface{}{
			"run_id":     res.RunID,
			"section":    res.Section,
			"reinforced": res.Reinforced,
			"offsets":    intList(res.Curve.Offsets),
			"pf":         floatList(res.Curve.Pf),
			"betas":      floatList(finite(res.Curve.Betas())),
			"mechanisms": mechanismMap(res.Curve),
		})
	}
	res, err := s.svc.SystemCurve(ctx, stringField(in, "traject"), strategy, boolField(in, "reinforced"))
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]interface{}{
		"run_id":     res.RunID,
		"offsets":    intList(res.Curve.Offsets),
		"pf":         floatList(res.Curve.Pf),
		"betas":      floatList(finite(res.Curve.Betas())),
		"mechanisms": mechanismMap(res.Curve),
		"diagnostics": map[string]interface{}{
			"passed":           res.Report.Passed,
			"reason":           res.Report.Reason,
			"lower_bound_year": res.Report.LowerBoundYear,
			"signalling_year":  res.Report.SignallingYear,
		},
	})
}

// #endregion system-curve

// #region greedy-trace
// GreedyTrace takes {traject, strategy?, criterion?, target_year?, target_beta?}
// and returns {run_id, costs, order, terminal_step, stopped, optimal_step,
// steps[{index, number, sections, pf}], diverging_steps}.
func (s *Server) GreedyTrace(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	strategy, err := s.strategy(in)
	if err != nil {
		return nil, toStatus(err)
	}
	kind, err := replay.ParseCriterion(stringField(in, "criterion"))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	crit := replay.Criterion{Kind: kind}
	if kind == replay.StopTargetReliability {
		if !hasField(in, "target_year") || !hasField(in, "target_beta") {
			return nil, status.Error(codes.InvalidArgument, "target_reliability needs target_year and target_beta")
		}
		year := numberField(in, "target_year")
		if year <= 0 || year != math.Trunc(year) {
			return nil, status.Errorf(codes.InvalidArgument, "target_year %v is not a calendar year", year)
		}
		crit = replay.TargetReliability(int(year), numberField(in, "target_beta"))
	}

	res, err := s.svc.GreedyTrace(ctx, stringField(in, "traject"), strategy, crit)
	if err != nil {
		return nil, toStatus(err)
	}

	steps := make([]interface{}, len(res.Trace.Steps))
	for i, st := range res.Trace.Steps {
		steps[i] = map[string]interface{}{
			"index":    st.Index,
			"number":   st.Number,
			"sections": stringList(st.Sections),
			"pf":       floatList(st.Curve.Pf),
		}
	}
	return newStruct(map[string]interface{}{
		"run_id":          res.RunID,
		"costs":           floatList(res.Trace.Costs()),
		"order":           stringList(res.Trace.Order),
		"terminal_step":   res.Trace.TerminalStep,
		"stopped":         res.Trace.Stopped,
		"optimal_step":    res.Trace.OptimalStep,
		"steps":           steps,
		"diverging_steps": replay.Diverging(res.Comparison),
	})
}

// #endregion greedy-trace

// #region prioritize
// Prioritize takes {traject, strategy?} and returns {run_id, base_risk,
// ranking[{section, index, cost, reinforced}]}.
func (s *Server) Prioritize(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	strategy, err := s.strategy(in)
	if err != nil {
		return nil, toStatus(err)
	}
	res, err := s.svc.Prioritize(ctx, stringField(in, "traject"), strategy)
	if err != nil {
		return nil, toStatus(err)
	}
	ranking := make([]interface{}, len(res.Ranking.Entries))
	for i, e := range res.Ranking.Entries {
		ranking[i] = map[string]interface{}{
			"section":    e.Section,
			"index":      e.Index,
			"cost":       e.Cost,
			"reinforced": e.Reinforced,
		}
	}
	return newStruct(map[string]interface{}{
		"run_id":    res.RunID,
		"base_risk": res.Ranking.BaseRisk,
		"ranking":   ranking,
	})
}

// #endregion prioritize

// #region program
// Program takes {strategy?} and returns {run_id, curves{traject: {years, pf}},
// costs[{name, start_year, end_year, cost}]}.
func (s *Server) Program(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	strategy, err := s.strategy(in)
	if err != nil {
		return nil, toStatus(err)
	}
	res, err := s.svc.Program(ctx, strategy)
	if err != nil {
		return nil, toStatus(err)
	}
	curves := make(map[string]interface{}, len(res.Curves))
	for name, c := range res.Curves {
		curves[name] = map[string]interface{}{
			"years": intList(c.Years),
			"pf":    floatList(c.Pf),
		}
	}
	costs := make([]interface{}, len(res.Costs))
	for i, c := range res.Costs {
		costs[i] = map[string]interface{}{
			"name":       c.Name,
			"start_year": c.StartYear,
			"end_year":   c.EndYear,
			"cost":       c.Cost,
		}
	}
	return newStruct(map[string]interface{}{
		"run_id": res.RunID,
		"curves": curves,
		"costs":  costs,
	})
}

// #endregion program

// #region helpers
func (s *Server) strategy(in *structpb.Struct) (traject.Strategy, error) {
	token := stringField(in, "strategy")
	if token == "" {
		return s.svc.Config().DefaultStrategy, nil
	}
	return traject.ParseStrategy(token)
}

func mechanismMap(c engine.Curve) map[string]interface{} {
	out := make(map[string]interface{}, len(c.Mechanisms))
	for m, pf := range c.Mechanisms {
		out[string(m)] = floatList(pf)
	}
	return out
}

// finite replaces non-finite betas (pf of zero or above one) with 0 so the
// response stays JSON safe.
func finite(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		if !math.IsNaN(f) && !math.IsInf(f, 0) {
			out[i] = f
		}
	}
	return out
}

// toStatus maps domain errors onto gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, traject.ErrUnknownTraject),
		errors.Is(err, traject.ErrUnknownSection),
		errors.Is(err, store.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, traject.ErrUnknownStrategy),
		errors.Is(err, traject.ErrUnknownMechanism),
		errors.Is(err, traject.ErrInvalidProject):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, traject.ErrAxisMismatch),
		errors.Is(err, traject.ErrInvalidAxis),
		errors.Is(err, traject.ErrDegenerateCost),
		errors.Is(err, traject.ErrInvalidStep):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, fmt.Sprintf("evaluate: %v", err))
}

// #endregion helpers
