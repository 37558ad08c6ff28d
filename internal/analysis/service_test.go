package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/config"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/replay"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/store"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
)

var programFixture = filepath.Join("..", "fixture", "testdata", "program.yaml")

func newService(t *testing.T) (*Service, *observer.ObservedLogs) {
	t.Helper()
	st, err := store.NewStore(filepath.Join(t.TempDir(), "analysis.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	core, logs := observer.New(zapcore.InfoLevel)
	svc := NewService(st, config.Default(), zap.New(core))

	_, err = svc.Import(context.Background(), programFixture)
	require.NoError(t, err)
	return svc, logs
}

func TestImport(t *testing.T) {
	st, err := store.NewStore(filepath.Join(t.TempDir(), "import.db"))
	require.NoError(t, err)
	defer st.Close()

	svc := NewService(st, config.Default(), nil)
	res, err := svc.Import(context.Background(), programFixture)
	require.NoError(t, err)
	assert.Equal(t, []string{"16-1", "16-2"}, res.Trajects)
	assert.Equal(t, 2, res.Projects)

	list, err := svc.Trajects(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 3, list[0].Sections)
}

func TestSystemCurve(t *testing.T) {
	svc, logs := newService(t)
	ctx := context.Background()

	base, err := svc.SystemCurve(ctx, "16-1", traject.VR, false)
	require.NoError(t, err)
	reinforced, err := svc.SystemCurve(ctx, "16-1", traject.VR, true)
	require.NoError(t, err)

	require.Equal(t, 7, base.Curve.Len())
	for i := range base.Curve.Pf {
		assert.Less(t, reinforced.Curve.Pf[i], base.Curve.Pf[i])
	}
	assert.NotEmpty(t, base.RunID)
	assert.NotZero(t, base.Report.LowerBoundYear, "unreinforced 16-1 exceeds its lower bound")

	assert.Equal(t, 2, logs.FilterMessage("system complete").Len())
}

func TestGreedyTrace(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.GreedyTrace(context.Background(), "16-1", traject.VR, replay.NoStop())
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2e6, 6.5e6}, res.Trace.Costs())
	assert.Equal(t, []string{"DV02", "DV01"}, res.Trace.Order)
	assert.Equal(t, 3, res.Summary.TotalSteps)
	assert.Empty(t, res.Comparison, "no recorded trace was imported")

	opt, err := svc.GreedyTrace(context.Background(), "16-1", traject.VR, replay.EconomicOptimum())
	require.NoError(t, err)
	assert.Equal(t, 2, opt.Trace.OptimalStep)
	assert.True(t, opt.Trace.Stopped)
}

func TestPrioritize(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.Prioritize(context.Background(), "16-1", traject.VR)
	require.NoError(t, err)
	require.Len(t, res.Ranking.Entries, 3)
	assert.Equal(t, "DV03", res.Ranking.Entries[2].Section)
	assert.Greater(t, res.Ranking.Entries[0].Index, 0.0)
}

func TestProgram(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.Program(context.Background(), traject.VR)
	require.NoError(t, err)
	require.Len(t, res.Curves, 2)
	require.Len(t, res.Costs, 2)
	assert.Equal(t, 2e6, res.Costs[0].Cost)
	assert.InDelta(t, 5.7e6, res.Costs[1].Cost, 1e-6)

	c := res.Curves["16-1"]
	assert.Equal(t, 2025, c.Years[0])
	assert.Equal(t, 2100, c.Years[len(c.Years)-1])
}

func TestFailuresAreRecorded(t *testing.T) {
	svc, logs := newService(t)

	_, err := svc.Prioritize(context.Background(), "99-9", traject.VR)
	assert.ErrorIs(t, err, traject.ErrUnknownTraject)

	runs, err := svc.Runs(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "error", runs[0].Outcome)
	assert.Equal(t, "prioritize", runs[0].Operation)
	assert.Equal(t, 1, logs.FilterMessage("prioritize failed").Len())
}

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestImport_NothingStoredOnBadProject(t *testing.T) {
	st, err := store.NewStore(filepath.Join(t.TempDir(), "atomic.db"))
	require.NoError(t, err)
	defer st.Close()
	svc := NewService(st, config.Default(), nil)

	path := writeFile(t, "bad.yaml", `
trajects:
  - name: a
    sections:
      - name: A
  - name: b
    sections:
      - name: B
projects:
  - {name: P, start_year: 2025, end_year: 2030, sections: [{traject: b, section: Z}]}
`)
	_, err = svc.Import(context.Background(), path)
	assert.ErrorIs(t, err, traject.ErrUnknownSection)

	list, err := svc.Trajects(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestImport_ProjectsReferenceStoredTrajects(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	path := writeFile(t, "extra.yaml", `
trajects:
  - name: "20-3"
    sections:
      - name: X1
projects:
  - {name: Phase 3, start_year: 2040, end_year: 2050, sections: [{traject: "16-2", section: DV10}, {traject: "20-3", section: X1}]}
`)
	res, err := svc.Import(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"20-3"}, res.Trajects)
	assert.Equal(t, 1, res.Projects)

	list, err := svc.Trajects(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	_, err = svc.Import(ctx, writeFile(t, "dangling.yaml", `
projects:
  - {name: Phase 4, start_year: 2040, end_year: 2050, sections: [{traject: "77-7", section: Q}]}
`))
	assert.ErrorIs(t, err, traject.ErrUnknownTraject)

	prog, err := svc.Program(ctx, traject.VR)
	require.NoError(t, err)
	require.Len(t, prog.Costs, 1, "the failed import left the previous program in place")
	assert.Equal(t, "Phase 3", prog.Costs[0].Name)
}

func TestSectionCurve(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	base, err := svc.SectionCurve(ctx, "16-1", "DV01", traject.VR, false)
	require.NoError(t, err)
	assert.False(t, base.Reinforced)
	reinforced, err := svc.SectionCurve(ctx, "16-1", "DV01", traject.VR, true)
	require.NoError(t, err)
	assert.True(t, reinforced.Reinforced)
	require.Equal(t, base.Curve.Len(), reinforced.Curve.Len())
	for i := range base.Curve.Pf {
		assert.Less(t, reinforced.Curve.Pf[i], base.Curve.Pf[i])
	}

	outside, err := svc.SectionCurve(ctx, "16-1", "DV03", traject.VR, true)
	require.NoError(t, err)
	assert.False(t, outside.Reinforced, "DV03 is not in the vr order")

	_, err = svc.SectionCurve(ctx, "16-1", "DV99", traject.VR, false)
	assert.ErrorIs(t, err, traject.ErrUnknownSection)
	_, err = svc.SectionCurve(ctx, "16-1", "DV01", "cheapest", false)
	assert.ErrorIs(t, err, traject.ErrUnknownStrategy)
}

func TestDelete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "16-2"))
	list, err := svc.Trajects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "16-1", list[0].Name)

	assert.ErrorIs(t, svc.Delete(ctx, "16-2"), store.ErrNotFound)
	_, err = svc.Program(ctx, traject.VR)
	assert.ErrorIs(t, err, traject.ErrUnknownTraject, "phase 2 still references 16-2")
}
