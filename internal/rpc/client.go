package rpc

import (
	"context"
	"fmt"
	"sort"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/replay"
)

// #region types
// CurveResult holds the response of a SystemCurve call. Passed and Reason are
// empty for section curves; Reinforced is set only for them.
type CurveResult struct {
	RunID      string
	Offsets    []int
	Pf         []float64
	Betas      []float64
	Passed     bool
	Reason     string
	Reinforced bool
}

// TraceResult holds the response of a GreedyTrace call.
type TraceResult struct {
	RunID          string
	Costs          []float64
	Order          []string
	TerminalStep   int
	Stopped        bool
	OptimalStep    int
	DivergingSteps int
}

// RankedSection is one entry of a Prioritize response.
type RankedSection struct {
	Section    string
	Index      float64
	Cost       float64
	Reinforced bool
}

// ProgramCurve is one traject curve of a Program response.
type ProgramCurve struct {
	Traject string
	Years   []int
	Pf      []float64
}

// #endregion types

// #region client-struct
// Client wraps a gRPC connection to a vrcore.Evaluator server.
type Client struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}

// #endregion client-struct

// #region constructor
// NewClient connects to an evaluator server.
func NewClient(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, cc: conn}, nil
}

// NewClientWithConn creates a Client on an existing connection, which the caller
// keeps ownership of.
func NewClientWithConn(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Close shuts down a connection opened by NewClient.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) invoke(ctx context.Context, method string, req map[string]interface{}) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// #endregion constructor

// #region system-curve
// SystemCurve evaluates a stored traject.
func (c *Client) SystemCurve(ctx context.Context, trajectName, strategy string, reinforced bool) (CurveResult, error) {
	out, err := c.invoke(ctx, MethodSystemCurve, map[string]interface{}{
		"traject":    trajectName,
		"strategy":   strategy,
		"reinforced": reinforced,
	})
	if err != nil {
		return CurveResult{}, fmt.Errorf("system curve rpc: %w", err)
	}
	f := out.GetFields()
	diag := f["diagnostics"].GetStructValue()
	return CurveResult{
		RunID:   f["run_id"].GetStringValue(),
		Offsets: intsOf(f["offsets"]),
		Pf:      floatsOf(f["pf"]),
		Betas:   floatsOf(f["betas"]),
		Passed:  boolField(diag, "passed"),
		Reason:  stringField(diag, "reason"),
	}, nil
}

// SectionCurve evaluates one section of a stored traject.
func (c *Client) SectionCurve(ctx context.Context, trajectName, section, strategy string, reinforced bool) (CurveResult, error) {
	out, err := c.invoke(ctx, MethodSystemCurve, map[string]interface{}{
		"traject":    trajectName,
		"section":    section,
		"strategy":   strategy,
		"reinforced": reinforced,
	})
	if err != nil {
		return CurveResult{}, fmt.Errorf("section curve rpc: %w", err)
	}
	f := out.GetFields()
	return CurveResult{
		RunID:      f["run_id"].GetStringValue(),
		Offsets:    intsOf(f["offsets"]),
		Pf:         floatsOf(f["pf"]),
		Betas:      floatsOf(f["betas"]),
		Reinforced: f["reinforced"].GetBoolValue(),
	}, nil
}

// #endregion system-curve

// #region greedy-trace
// GreedyTrace replays the optimizer steps of a stored traject. An empty criterion
// selects the economic optimum; the target fields are sent only for
// target_reliability.
func (c *Client) GreedyTrace(ctx context.Context, trajectName, strategy, criterion string, targetYear int, targetBeta float64) (TraceResult, error) {
	req := map[string]interface{}{
		"traject":   trajectName,
		"strategy":  strategy,
		"criterion": criterion,
	}
	if criterion == string(replay.StopTargetReliability) {
		req["target_year"] = targetYear
		req["target_beta"] = targetBeta
	}
	out, err := c.invoke(ctx, MethodGreedyTrace, req)
	if err != nil {
		return TraceResult{}, fmt.Errorf("greedy trace rpc: %w", err)
	}
	f := out.GetFields()
	return TraceResult{
		RunID:          f["run_id"].GetStringValue(),
		Costs:          floatsOf(f["costs"]),
		Order:          stringsOf(f["order"]),
		TerminalStep:   int(f["terminal_step"].GetNumberValue()),
		Stopped:        f["stopped"].GetBoolValue(),
		OptimalStep:    int(f["optimal_step"].GetNumberValue()),
		DivergingSteps: int(f["diverging_steps"].GetNumberValue()),
	}, nil
}

// #endregion greedy-trace

// #region prioritize
// Prioritize ranks the sections of a stored traject.
func (c *Client) Prioritize(ctx context.Context, trajectName, strategy string) ([]RankedSection, error) {
	out, err := c.invoke(ctx, MethodPrioritize, map[string]interface{}{
		"traject":  trajectName,
		"strategy": strategy,
	})
	if err != nil {
		return nil, fmt.Errorf("prioritize rpc: %w", err)
	}
	list := out.GetFields()["ranking"].GetListValue().GetValues()
	results := make([]RankedSection, len(list))
	for i, v := range list {
		e := v.GetStructValue()
		results[i] = RankedSection{
			Section:    stringField(e, "section"),
			Index:      numberField(e, "index"),
			Cost:       numberField(e, "cost"),
			Reinforced: boolField(e, "reinforced"),
		}
	}
	return results, nil
}

// #endregion prioritize

// #region program
// Program evaluates the stored program. Curves are returned by traject name.
func (c *Client) Program(ctx context.Context, strategy string) ([]ProgramCurve, error) {
	out, err := c.invoke(ctx, MethodProgram, map[string]interface{}{
		"strategy": strategy,
	})
	if err != nil {
		return nil, fmt.Errorf("program rpc: %w", err)
	}
	curves := out.GetFields()["curves"].GetStructValue().GetFields()
	results := make([]ProgramCurve, 0, len(curves))
	for name, v := range curves {
		f := v.GetStructValue().GetFields()
		results = append(results, ProgramCurve{
			Traject: name,
			Years:   intsOf(f["years"]),
			Pf:      floatsOf(f["pf"]),
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Traject < results[j].Traject })
	return results, nil
}

// #endregion program
