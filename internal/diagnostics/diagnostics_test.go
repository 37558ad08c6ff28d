package diagnostics

import (
	"errors"
	"testing"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/engine"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/reliability"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
)

var standard = traject.Standard{LowerBound: 1.0 / 10000, Signalling: 1.0 / 30000}

func curve(pf0, pf100 float64) engine.Curve {
	return engine.Curve{Offsets: []int{0, 100}, Pf: []float64{pf0, pf100}}
}

func TestRunPassesOnSafeCurve(t *testing.T) {
	h := NewHarness(DefaultConfig(2025))

	r, err := h.Run(curve(1e-6, 1e-5), standard, 2025, 2100)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Passed {
		t.Fatalf("expected pass, got fail: %s", r.Reason)
	}
	if r.LowerBoundYear != 0 || r.SignallingYear != 0 {
		t.Fatalf("expected no exceedance, got %d / %d", r.LowerBoundYear, r.SignallingYear)
	}
	if len(r.Metrics) != 4 {
		t.Fatalf("expected 4 metrics, got %d", len(r.Metrics))
	}
}

func TestRunFindsExceedanceYears(t *testing.T) {
	h := NewHarness(DefaultConfig(2025))

	// pf rises linearly by 2.1e-6 per year
	r, err := h.Run(curve(0, 2.1e-4), standard, 2025, 2125)
	if err != nil {
		t.Fatal(err)
	}
	if r.Passed {
		t.Fatal("expected lower bound failure")
	}
	// 1/30000 is first exceeded at offset 16
	if r.SignallingYear != 2041 {
		t.Fatalf("signalling year = %d, want 2041", r.SignallingYear)
	}
	// 1e-4 is first exceeded at offset 48
	if r.LowerBoundYear != 2073 {
		t.Fatalf("lower bound year = %d, want 2073", r.LowerBoundYear)
	}
}

func TestRunSignallingIsInformational(t *testing.T) {
	h := NewHarness(DefaultConfig(2025))

	r, err := h.Run(curve(5e-5, 5e-5), standard, 2025, 2100)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Passed {
		t.Fatalf("signalling exceedance must not fail: %s", r.Reason)
	}
	m, ok := r.Metric("signalling_exceedance")
	if !ok || m.Pass || m.Value != 2025 {
		t.Fatalf("unexpected signalling metric %+v", m)
	}
}

func TestRunFlagsUnionBoundOverflow(t *testing.T) {
	h := NewHarness(DefaultConfig(2025))

	r, err := h.Run(curve(0.6, 1.2), traject.Standard{}, 2025, 2100)
	if err != nil {
		t.Fatal(err)
	}
	m, _ := r.Metric("max_pf")
	if r.Passed || m.Pass {
		t.Fatal("expected max_pf failure")
	}
}

func TestRunFlagsExtrapolation(t *testing.T) {
	cfg := DefaultConfig(2025)
	cfg.MaxExtrapolation = 10
	h := NewHarness(cfg)

	r, err := h.Run(curve(1e-6, 1e-6), standard, 2000, 2125)
	if err != nil {
		t.Fatal(err)
	}
	m, _ := r.Metric("extrapolation_years")
	if m.Value != 25 || m.Pass || r.Passed {
		t.Fatalf("unexpected extrapolation metric %+v", m)
	}
}

func TestRunRejectsInvertedWindow(t *testing.T) {
	h := NewHarness(DefaultConfig(2025))
	_, err := h.Run(curve(0, 0), standard, 2100, 2025)
	if !errors.Is(err, reliability.ErrInvalidAxis) {
		t.Fatalf("expected ErrInvalidAxis, got %v", err)
	}
}
