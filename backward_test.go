package danton

import (
	"errors"
	"path/filepath"
	"testing"
)

func testBackwardContext(t *testing.T) *Context {
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
	ctx.Mode = Mode{Forward: false, FluxOnly: true, TauFlux: true}
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

func TestTauAncestorPIDMapping(t *testing.T) {
	cases := []struct {
		tauPID, wantAncestor int
	}{
		{PDGTauPlus, PDGNuTau},
		{PDGTauMinus, PDGNuTauBar},
	}
	for _, c := range cases {
		if got := tauAncestorPID(c.tauPID); got != c.wantAncestor {
			t.Fatalf("tauAncestorPID(%d) = %d, want %d", c.tauPID, got, c.wantAncestor)
		}
	}
}

func TestTauAncestorForNeutrino(t *testing.T) {
	if pid, ok := tauAncestorForNeutrino(PDGNuTau); !ok || pid != PDGTauMinus {
		t.Fatalf("nu_tau should trace back to tau-, got (%d, %v)", pid, ok)
	}
	if pid, ok := tauAncestorForNeutrino(PDGNuEBar); !ok || pid != PDGTauMinus {
		t.Fatalf("nu_e_bar should trace back to tau-, got (%d, %v)", pid, ok)
	}
	if pid, ok := tauAncestorForNeutrino(PDGNuTauBar); !ok || pid != PDGTauPlus {
		t.Fatalf("nu_tau_bar should trace back to tau+, got (%d, %v)", pid, ok)
	}
	if _, ok := tauAncestorForNeutrino(12); ok {
		t.Fatalf("nu_e has no tau-decay ancestor in this engine's tables")
	}
}

func TestBackwardStopsAtMaxGeneration(t *testing.T) {
	ctx := testBackwardContext(t)
	nu := NewNeutrino(PDGNuTau, 1e9, GeodeticToECEF(0, 0, 0, earthRadius), [3]float64{0, 0, 1})
	var final, production, primary *ParticleState
	err := ctx.Backward(nu, maxGeneration+1, PDGNuTau, &final, &production, &primary)
	if !errors.Is(err, ErrRejectedPrimary) {
		t.Fatalf("expected ErrRejectedPrimary past the recursion backstop, got %v", err)
	}
}

func TestBackwardTauWithZeroMomentumIsRejected(t *testing.T) {
	ctx := testBackwardContext(t)
	tau := &ParticleState{
		Kind: KindChargedLepton, PID: PDGTauMinus, Energy: -tauRestMass,
		Position: GeodeticToECEF(0, 0, 0, earthRadius), Direction: [3]float64{0, 0, 1}, Weight: 1,
	}
	var final, production, primary *ParticleState
	err := ctx.Backward(tau, 1, PDGNuTauBar, &final, &production, &primary)
	if !errors.Is(err, ErrRejectedPrimary) {
		t.Fatalf("expected ErrRejectedPrimary for a zero-momentum tau, got %v", err)
	}
}

func TestRunBackwardAbsorbsRejectedPrimaryAsNilError(t *testing.T) {
	ctx := testBackwardContext(t)
	// A neutrino entry whose kind can never equal pid0 after one
	// direct-hypothesis vertex sample forces the sampling-fizzle path;
	// RunBackward must absorb it rather than surface an error (§7 kind 4).
	entry := NewNeutrino(PDGNuTau, 1e9, GeodeticToECEF(0, 0, 0, earthRadius), [3]float64{0, 0, 1})
	if err := ctx.RunBackward(entry, PDGNuEBar); err != nil {
		t.Fatalf("RunBackward should absorb a mismatched primary silently, got %v", err)
	}
}

func TestBackwardEntryTauPIDMapping(t *testing.T) {
	if got := backwardEntryTauPID(PDGNuTau); got != PDGTauPlus {
		t.Fatalf("nu_tau target should observe tau+, got %d", got)
	}
	if got := backwardEntryTauPID(PDGNuTauBar); got != PDGTauMinus {
		t.Fatalf("nu_tau_bar target should observe tau-, got %d", got)
	}
}
