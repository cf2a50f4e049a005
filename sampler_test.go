package danton

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func validSampler() *Sampler {
	return &Sampler{
		CosThetaRange:  [2]float64{0.15, 0.25},
		ElevationRange: [2]float64{1, 5},
		AltitudeRange:  [2]float64{0, 0},
		EnergyRange:    [2]float64{1e7, 1e12},
		Weights:        TargetWeights{NuTau: 1, NuTauBar: 1, NuEBar: 1},
	}
}

func TestSamplerUpdateValid(t *testing.T) {
	s := validSampler()
	if err := s.Update(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Verify(); err != nil {
		t.Fatalf("freshly updated sampler should verify: %v", err)
	}
}

func TestSamplerUpdateRejectsBadCosTheta(t *testing.T) {
	s := validSampler()
	s.CosThetaRange = [2]float64{0.5, 0.2}
	if err := s.Update(); !errors.Is(err, ErrSamplerRange) {
		t.Fatalf("expected ErrSamplerRange, got %v", err)
	}
}

func TestSamplerUpdateRejectsLowEnergyCeiling(t *testing.T) {
	s := validSampler()
	s.EnergyRange = [2]float64{1e7, 1e9}
	if err := s.Update(); !errors.Is(err, ErrSamplerRange) {
		t.Fatalf("expected ErrSamplerRange for low energy ceiling, got %v", err)
	}
}

func TestSamplerStaleAfterMutation(t *testing.T) {
	s := validSampler()
	if err := s.Update(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.CosThetaRange[0] = 0.1
	if err := s.Verify(); !errors.Is(err, ErrStaleSampler) {
		t.Fatalf("expected ErrStaleSampler after mutation, got %v", err)
	}
}

func TestSamplerNeverUpdatedIsStale(t *testing.T) {
	s := validSampler()
	if err := s.Verify(); !errors.Is(err, ErrStaleSampler) {
		t.Fatalf("expected ErrStaleSampler before any Update, got %v", err)
	}
}

func TestLinearGrammageGrid(t *testing.T) {
	s := validSampler()
	if err := s.Update(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	x := [2]float64{0.15, 0.25}
	v0, _ := s.Linear(nil, x, 0, 11, true)
	v10, _ := s.Linear(nil, x, 10, 11, true)
	if !floats.EqualWithinAbs(v0, 0.15, 1e-12) {
		t.Fatalf("grid point 0 = %g, want 0.15", v0)
	}
	if !floats.EqualWithinAbs(v10, 0.25, 1e-12) {
		t.Fatalf("grid point 10 = %g, want 0.25", v10)
	}
}

func TestLinearDegenerateRangeSingleSample(t *testing.T) {
	s := validSampler()
	x := [2]float64{0.0, 0.0}
	v, w := s.Linear(nil, x, 0, 1, true)
	if v != 0 || w != 1 {
		t.Fatalf("degenerate range should yield v=0, w=1, got v=%g w=%g", v, w)
	}
}

func TestLogOrLinearSameSign(t *testing.T) {
	s := validSampler()
	rng, err := NewRng()
	if err != nil {
		t.Fatalf("NewRng: %v", err)
	}
	x := [2]float64{1e7, 1e9}
	v, w := s.LogOrLinear(rng, x)
	if v < x[0] || v > x[1] {
		t.Fatalf("log-uniform draw %g outside [%g, %g]", v, x[0], x[1])
	}
	if w <= 0 {
		t.Fatalf("expected positive weight, got %g", w)
	}
}

func TestLogOrLinearMixedSignFallsBackToLinear(t *testing.T) {
	s := validSampler()
	rng, err := NewRng()
	if err != nil {
		t.Fatalf("NewRng: %v", err)
	}
	x := [2]float64{-0.2, 0.2}
	v, w := s.LogOrLinear(rng, x)
	if v < x[0] || v > x[1] {
		t.Fatalf("mixed-sign draw %g outside [%g, %g]", v, x[0], x[1])
	}
	if !floats.EqualWithinAbs(w, 0.4, 1e-12) {
		t.Fatalf("expected linear weight 0.4, got %g", w)
	}
}
