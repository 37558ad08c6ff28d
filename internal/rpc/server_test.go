package rpc

import (
	"context"
	"errors"
	"net"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/analysis"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/config"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/store"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
)

// #region harness
type harness struct {
	client  *Client
	metrics *Metrics
}

func startServer(t *testing.T) harness {
	t.Helper()
	st, err := store.NewStore(filepath.Join(t.TempDir(), "rpc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := analysis.NewService(st, config.Default(), zap.NewNop())
	_, err = svc.Import(context.Background(), filepath.Join("..", "fixture", "testdata", "program.yaml"))
	require.NoError(t, err)

	metrics := NewMetrics()
	srv := NewGRPCServer(NewServer(svc), metrics, zap.NewNop())
	lis := bufconn.Listen(1 << 20)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return harness{client: NewClientWithConn(conn), metrics: metrics}
}

// #endregion harness

// #region rpc-tests
func TestSystemCurve(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()

	base, err := h.client.SystemCurve(ctx, "16-1", "vr", false)
	require.NoError(t, err)
	reinforced, err := h.client.SystemCurve(ctx, "16-1", "", true)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 19, 20, 25, 50, 75, 100}, base.Offsets)
	require.Len(t, base.Pf, 7)
	assert.NotEmpty(t, base.RunID)
	assert.False(t, base.Passed)
	for i := range base.Pf {
		assert.Less(t, reinforced.Pf[i], base.Pf[i])
		assert.Greater(t, reinforced.Betas[i], base.Betas[i])
	}
}

func TestSectionCurve(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()

	base, err := h.client.SectionCurve(ctx, "16-1", "DV01", "vr", false)
	require.NoError(t, err)
	reinforced, err := h.client.SectionCurve(ctx, "16-1", "DV01", "vr", true)
	require.NoError(t, err)
	assert.False(t, base.Reinforced)
	assert.True(t, reinforced.Reinforced)
	require.Len(t, base.Pf, 7)
	for i := range base.Pf {
		assert.Less(t, reinforced.Pf[i], base.Pf[i])
	}

	_, err = h.client.SectionCurve(ctx, "16-1", "DV99", "vr", false)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestGreedyTrace(t *testing.T) {
	h := startServer(t)

	res, err := h.client.GreedyTrace(context.Background(), "16-1", "vr", "none", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2e6, 6.5e6}, res.Costs)
	assert.Equal(t, []string{"DV02", "DV01"}, res.Order)
	assert.Equal(t, 2, res.TerminalStep)
	assert.False(t, res.Stopped)
	assert.Zero(t, res.DivergingSteps)
}

func TestPrioritize(t *testing.T) {
	h := startServer(t)

	ranking, err := h.client.Prioritize(context.Background(), "16-1", "vr")
	require.NoError(t, err)
	require.Len(t, ranking, 3)
	assert.Equal(t, "DV03", ranking[2].Section)
	assert.False(t, ranking[2].Reinforced)
	assert.Greater(t, ranking[0].Index, ranking[1].Index)
}

func TestProgram(t *testing.T) {
	h := startServer(t)

	curves, err := h.client.Program(context.Background(), "vr")
	require.NoError(t, err)
	require.Len(t, curves, 2)
	assert.Equal(t, "16-1", curves[0].Traject)
	assert.Equal(t, 2025, curves[0].Years[0])
	assert.Equal(t, len(curves[0].Years), len(curves[0].Pf))
}

func TestErrorCodes(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()

	_, err := h.client.SystemCurve(ctx, "99-9", "vr", false)
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = h.client.Prioritize(ctx, "16-1", "cheapest")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = h.client.GreedyTrace(ctx, "16-1", "vr", "whenever", 0, 0)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGreedyTrace_TargetFields(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()

	_, err := h.client.invoke(ctx, MethodGreedyTrace, map[string]interface{}{
		"traject":   "16-1",
		"criterion": "target_reliability",
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = h.client.GreedyTrace(ctx, "16-1", "vr", "target_reliability", 0, 4.5)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	res, err := h.client.GreedyTrace(ctx, "16-1", "vr", "target_reliability", 2075, 0)
	require.NoError(t, err)
	assert.True(t, res.Stopped)
	assert.Zero(t, res.TerminalStep)
}

func TestToStatus(t *testing.T) {
	cases := map[error]codes.Code{
		traject.ErrUnknownSection:  codes.NotFound,
		traject.ErrDegenerateCost:  codes.FailedPrecondition,
		traject.ErrAxisMismatch:    codes.FailedPrecondition,
		traject.ErrInvalidStep:     codes.FailedPrecondition,
		context.DeadlineExceeded:   codes.DeadlineExceeded,
		errors.New("disk on fire"): codes.Internal,
	}
	for err, want := range cases {
		assert.Equal(t, want, status.Code(toStatus(err)), err.Error())
	}
}

// #endregion rpc-tests

// #region metrics-tests
func TestMetricsCountRequests(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()

	_, err := h.client.SystemCurve(ctx, "16-1", "vr", false)
	require.NoError(t, err)
	_, err = h.client.SystemCurve(ctx, "99-9", "vr", false)
	require.Error(t, err)

	method := fullMethod(MethodSystemCurve)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.requests.WithLabelValues(method, codes.OK.String())))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.requests.WithLabelValues(method, codes.NotFound.String())))
	assert.Equal(t, 1, testutil.CollectAndCount(h.metrics.latency))

	rec := httptest.NewRecorder()
	h.metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.True(t, strings.Contains(rec.Body.String(), "vrcore_requests_total"))
}

// #endregion metrics-tests
