package fixture

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/reliability"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
)

func TestLoadProgramFixture(t *testing.T) {
	f, err := Load(filepath.Join("testdata", "program.yaml"))
	require.NoError(t, err)

	program, err := f.ToProgram(nil)
	require.NoError(t, err)
	require.Len(t, program.Trajects, 2)
	require.Len(t, program.Projects, 2)

	tr := program.Trajects["16-1"]
	require.Len(t, tr.Sections, 3)
	assert.Equal(t, []string{"DV02", "DV01"}, tr.Order(traject.VR))
	assert.Len(t, tr.Steps[traject.VR], 3)
	assert.Equal(t, 2.3e9, tr.Damage)

	dv01, _ := tr.Section("DV01")
	assert.True(t, dv01.InAnalysis)
	assert.Equal(t, []traject.MechanismKind{traject.Overflow, traject.Piping, traject.StabilityInner}, dv01.Mechanisms)
	assert.Equal(t, 0.5, dv01.Measure(traject.VR).Parameters["dcrest"])
	assert.Empty(t, dv01.Measure(traject.DSN).Series)

	// pf input is stored as betas
	assert.InDelta(t, reliability.ToBeta(1e-3), dv01.Initial[traject.Piping].Betas[0], 1e-12)

	dv03, _ := tr.Section("DV03")
	assert.False(t, dv03.InAnalysis)

	assert.Equal(t, []traject.SectionRef{{Traject: "16-1", Section: "DV01"}, {Traject: "16-2", Section: "DV10"}},
		program.Projects[1].Sections)
}

func TestLoadJSONFixture(t *testing.T) {
	f, err := Load(filepath.Join("testdata", "traject.json"))
	require.NoError(t, err)

	trajects, err := f.ToTrajects()
	require.NoError(t, err)
	require.Len(t, trajects, 1)
	assert.Equal(t, "38-1", trajects[0].Name)
	assert.Equal(t, []int{0, 100}, trajects[0].Sections[0].Initial[traject.Piping].Offsets)
}

func TestParseRejects(t *testing.T) {
	cases := []struct {
		name string
		data string
		want error
	}{
		{
			name: "unknown mechanism",
			data: `
trajects:
  - name: t
    sections:
      - name: A
        mechanisms: [Erosion]
`,
			want: traject.ErrUnknownMechanism,
		},
		{
			name: "unknown strategy",
			data: `
trajects:
  - name: t
    sections:
      - name: A
    orders:
      cheapest: [A]
`,
			want: traject.ErrUnknownStrategy,
		},
		{
			name: "mismatched axes",
			data: `
trajects:
  - name: t
    sections:
      - name: A
        mechanisms: [Overflow, Piping]
        initial:
          Overflow: {years: [0, 50], betas: [4, 3]}
          Piping: {years: [0, 100], betas: [4, 3]}
`,
			want: traject.ErrAxisMismatch,
		},
		{
			name: "pf length",
			data: `
trajects:
  - name: t
    sections:
      - name: A
        mechanisms: [Piping]
        initial:
          Piping: {years: [0, 50], pf: [0.1]}
`,
			want: reliability.ErrInvalidAxis,
		},
		{
			name: "unknown project section",
			data: `
trajects:
  - name: t
    sections:
      - name: A
projects:
  - {name: P, start_year: 2025, end_year: 2030, sections: [{traject: t, section: B}]}
`,
			want: traject.ErrUnknownSection,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Parse([]byte(tc.data))
			require.NoError(t, err)
			_, err = f.ToProgram(nil)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestToProgram_ResolvesMissingTrajects(t *testing.T) {
	f, err := Parse([]byte(`
trajects:
  - name: t
    sections:
      - name: A
projects:
  - {name: P, start_year: 2025, end_year: 2030, sections: [{traject: t, section: A}, {traject: stored, section: S}]}
`))
	require.NoError(t, err)

	_, err = f.ToProgram(nil)
	assert.ErrorIs(t, err, traject.ErrUnknownTraject)

	var asked []string
	program, err := f.ToProgram(func(name string) (*traject.Traject, error) {
		asked = append(asked, name)
		return &traject.Traject{Name: name, Sections: []*traject.Section{{Name: "S", InAnalysis: true}}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"stored"}, asked)
	assert.Len(t, program.Trajects, 2)

	_, err = f.ToProgram(func(name string) (*traject.Traject, error) {
		return nil, fmt.Errorf("load %s: %w", name, traject.ErrUnknownTraject)
	})
	assert.ErrorIs(t, err, traject.ErrUnknownTraject)
}

func TestParseUnknownField(t *testing.T) {
	_, err := Parse([]byte("trajects:\n  - name: t\n    colour: red\n"))
	assert.Error(t, err)
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(nil)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSeriesBothForms(t *testing.T) {
	_, err := FixtureSeries{Years: []int{0}, Betas: []float64{3}, Pf: []float64{0.1}}.ToSeries()
	assert.Error(t, err)
}
