package danton

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/Raimer/danton/internal/engines"
)

var errRetryProbe = errors.New("forward_test: induced decay failure")

func testSampler(t *testing.T) *Sampler {
	t.Helper()
	s := &Sampler{
		CosThetaRange:  [2]float64{0.15, 0.25},
		ElevationRange: [2]float64{1, 5},
		AltitudeRange:  [2]float64{0, 0},
		EnergyRange:    [2]float64{1e7, 1e12},
		Weights:        TargetWeights{NuTau: 1, NuTauBar: 1, NuEBar: 1},
	}
	if err := s.Update(); err != nil {
		t.Fatalf("sampler.Update: %v", err)
	}
	return s
}

func testContext(t *testing.T) *Context {
	t.Helper()
	out, err := NewWriter(filepath.Join(t.TempDir(), "out.txt"), false)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	t.Cleanup(func() { out.Close() })
	ctx, err := NewContext(out)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	ctx.Mode = Mode{Forward: true}
	ctx.EnergyCutLow = 1e3
	if err := ctx.AttachSampler(testSampler(t)); err != nil {
		t.Fatalf("AttachSampler: %v", err)
	}
	if err := ctx.Initialise("dummy.lhagrid1"); err != nil {
		t.Fatalf("Initialise: %v", err)
	}
	t.Cleanup(func() { ctx.Finalise() })
	return ctx
}

func TestForwardRejectsNonTransportablePrimary(t *testing.T) {
	ctx := testContext(t)
	main := NewNeutrino(PDGNuTauBar+1, 1e9, [3]float64{0, 0, atmosphereFloor}, [3]float64{0, 0, -1})
	if err := ctx.RunForward(main, 1, main, &PrimaryDumpedLatch{}); err != nil {
		t.Fatalf("expected nil for a non-transportable primary, got %v", err)
	}
}

func TestForwardStopsAtMaxGeneration(t *testing.T) {
	ctx := testContext(t)
	main := NewNeutrino(PDGNuTau, 1e9, [3]float64{0, 0, atmosphereFloor}, [3]float64{0, 0, -1})
	if err := ctx.RunForward(main, maxGeneration+1, main, &PrimaryDumpedLatch{}); err != nil {
		t.Fatalf("expected nil at generation past the backstop, got %v", err)
	}
}

func TestForwardRunsToCompletionAndRespectsInvariants(t *testing.T) {
	ctx := testContext(t)
	main := NewNeutrino(PDGNuTau, 1e10, [3]float64{0, 0, atmosphereFloor}, [3]float64{0, 0, -1})
	ancestor := main.Clone()
	if err := ctx.RunForward(main, 1, ancestor, &PrimaryDumpedLatch{}); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if err := main.CheckInvariants(16); err != nil {
		t.Fatalf("post-transport invariants violated: %v", err)
	}
}

func TestClassifyDaughterKind(t *testing.T) {
	if classifyDaughterKind(PDGNuTau) != KindNeutrino {
		t.Fatalf("nu_tau should classify as a neutrino")
	}
	if classifyDaughterKind(-12) != KindNeutrino {
		t.Fatalf("nu_e_bar should classify as a neutrino")
	}
	if classifyDaughterKind(11) != KindChargedLepton {
		t.Fatalf("electron should classify as a charged lepton")
	}
	if classifyDaughterKind(211) != KindChargedLepton {
		t.Fatalf("charged pion should classify as a charged lepton (hadron bucket)")
	}
}

func TestIsTauPIDAndTransportableNeutrino(t *testing.T) {
	if !isTauPID(PDGTauMinus) || !isTauPID(PDGTauPlus) {
		t.Fatalf("tau PDG codes should report isTauPID")
	}
	if isTauPID(PDGNuTau) {
		t.Fatalf("a neutrino PDG code should not report isTauPID")
	}
	for _, pid := range []int{PDGNuTau, PDGNuTauBar, PDGNuEBar} {
		if !isTransportableNeutrino(pid) {
			t.Fatalf("%d should be a transportable primary", pid)
		}
	}
	if isTransportableNeutrino(12) {
		t.Fatalf("nu_e is not one of the three transportable primaries")
	}
}

// failingDecay always fails Decay, to exercise decayWithRetries'
// fizzle-absorption path (spec.md §4.E.7.c / §7 kind 4).
type failingDecay struct{ attempts int }

func (f *failingDecay) Decay(tau *engines.Slot, pol engines.PolarisationFunc, rng engines.RandomFunc) ([]engines.Daughter, error) {
	f.attempts++
	return nil, errRetryProbe
}

func (f *failingDecay) Undecay(daughter *engines.Slot, pol engines.PolarisationFunc, rng engines.RandomFunc) (*engines.Slot, float64, error) {
	return nil, 0, errRetryProbe
}

func TestDecayWithRetriesExhaustsSilently(t *testing.T) {
	engine := &failingDecay{}
	tau := &ParticleState{Kind: KindChargedLepton, PID: PDGTauMinus, Energy: 1e9, Direction: [3]float64{0, 0, 1}, Weight: 1}
	pol := func(m [3]float64) [3]float64 { return m }
	rng := func() float64 { return 0.5 }

	daughters := decayWithRetries(engine, tau, pol, rng)
	if daughters != nil {
		t.Fatalf("expected nil daughters after exhausting retries, got %v", daughters)
	}
	if engine.attempts != maxDecayRetries {
		t.Fatalf("expected exactly %d attempts, got %d", maxDecayRetries, engine.attempts)
	}
}
