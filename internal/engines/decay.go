package engines

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Daughter is one decay product: identity, energy, and a unit
// direction in the lab frame.
type Daughter struct {
	PID       int
	Energy    float64
	Direction [3]float64
}

// DecayEngine is the out-of-scope TAUOLA-like collaborator: forward
// decay of a tau into its daughters, and the un-decay operation
// component F's backward pass uses to sample a tau parent given a
// neutrino daughter.
type DecayEngine interface {
	Decay(tau *Slot, polarisation PolarisationFunc, rng RandomFunc) ([]Daughter, error)
	Undecay(daughter *Slot, polarisation PolarisationFunc, rng RandomFunc) (parent *Slot, weight float64, err error)
}

// Branching fractions for the three tau decay channels this reference
// engine distinguishes: electronic, muonic, hadronic (lumped).
const (
	brElectron = 0.1785
	brMuon     = 0.1739
	// remaining probability goes to the hadronic channel.
)

const (
	pidNuTau  = 16
	pidNuE    = 12
	pidNuMu   = 14
	pidE      = 11
	pidMu     = 13
	pidHadron = 211 // charged pion, standing in for the hadronic channel
)

type tauola struct{}

// NewTauola returns the reference decay/un-decay engine.
func NewTauola() DecayEngine {
	return &tauola{}
}

// smear nudges a direction by a small gonum-sampled angle, tilting it
// towards a uniformly drawn azimuth around its own axis, a single
// angular kick in place of the distmv.Normal multivariate noise
// draw a station-tracking-error model would use.
func smear(dir [3]float64, sigma float64, rng RandomFunc) [3]float64 {
	if sigma <= 0 {
		return dir
	}
	n := distuv.Normal{Mu: 0, Sigma: sigma, Src: rngSource{rng}}
	dTheta := n.Rand()
	dPhi := 2 * math.Pi * rng()
	// Build an arbitrary vector not parallel to dir, cross it to get a
	// perpendicular basis, then tilt dir by dTheta around a direction
	// picked by dPhi within that perpendicular plane.
	ref := [3]float64{0, 0, 1}
	if math.Abs(dir[2]) > 0.9 {
		ref = [3]float64{1, 0, 0}
	}
	perp1 := normalize(cross(dir, ref))
	perp2 := normalize(cross(dir, perp1))
	sinT, cosT := math.Sincos(dTheta)
	sinP, cosP := math.Sincos(dPhi)
	out := [3]float64{
		dir[0]*cosT + (perp1[0]*cosP+perp2[0]*sinP)*sinT,
		dir[1]*cosT + (perp1[1]*cosP+perp2[1]*sinP)*sinT,
		dir[2]*cosT + (perp1[2]*cosP+perp2[2]*sinP)*sinT,
	}
	return normalize(out)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{a[1]*b[2] - a[2]*b[1], a[2]*b[0] - a[0]*b[2], a[0]*b[1] - a[1]*b[0]}
}

func normalize(v [3]float64) [3]float64 {
	n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if n == 0 {
		return v
	}
	return [3]float64{v[0] / n, v[1] / n, v[2] / n}
}

// rngSource adapts a RandomFunc to the golang.org/x/exp/rand.Source
// interface gonum.org/v1/gonum/stat/distuv's Src field expects
// (Uint64() uint64, Seed(seed uint64)), so decay-channel smearing draws
// from the same context-owned stream as everything else instead of a
// process-global generator — required for the fixed-seed determinism
// contract of spec.md §8.
type rngSource struct {
	f RandomFunc
}

func (s rngSource) Uint64() uint64 {
	hi := uint64(s.f() * (1 << 32))
	lo := uint64(s.f() * (1 << 32))
	return hi<<32 | lo
}

func (s rngSource) Seed(seed uint64) {} // seeding is owned by the Rng upstream

// Decay samples a tau decay in the lab frame: a channel (electronic,
// muonic, hadronic), an energy split between the tau neutrino and the
// rest, and a small angular smear around the polarisation-aligned
// direction.
func (e *tauola) Decay(tau *Slot, polarisation PolarisationFunc, rng RandomFunc) ([]Daughter, error) {
	pol := polarisation(tau.Direction)
	axis := pol
	if normalize(axis) == ([3]float64{}) {
		axis = tau.Direction
	}
	tauSign := 1
	if tau.PID < 0 {
		tauSign = -1
	}
	nuTauPID := tauSign * pidNuTau

	u := rng()
	z := 0.1 + 0.8*rng() // nu_tau energy fraction, crude two-body-style split
	nuTauEnergy := tau.Energy * z
	restEnergy := tau.Energy - nuTauEnergy
	nuTauDir := smear(axis, 0.01, rng)

	daughters := []Daughter{{PID: nuTauPID, Energy: nuTauEnergy, Direction: nuTauDir}}

	// In the leptonic channels the charged daughter carries the tau's
	// own PDG sign (tauSign); its neutrino partner is the antiparticle companion
	// (-tauSign), conserving lepton number within each channel.
	switch {
	case u < brElectron:
		split := 0.3 + 0.4*rng()
		daughters = append(daughters,
			Daughter{PID: -tauSign * pidNuE, Energy: restEnergy * split, Direction: smear(axis, 0.02, rng)},
			Daughter{PID: tauSign * pidE, Energy: restEnergy * (1 - split), Direction: smear(axis, 0.02, rng)},
		)
	case u < brElectron+brMuon:
		split := 0.3 + 0.4*rng()
		daughters = append(daughters,
			Daughter{PID: -tauSign * pidNuMu, Energy: restEnergy * split, Direction: smear(axis, 0.02, rng)},
			Daughter{PID: tauSign * pidMu, Energy: restEnergy * (1 - split), Direction: smear(axis, 0.02, rng)},
		)
	default:
		// The hadronic channel's net charge follows the tau's electric
		// charge, which is opposite in sign to tauSign (tau- has
		// PID +15 but charge -1), so the pion code flips sign too.
		daughters = append(daughters,
			Daughter{PID: -tauSign * pidHadron, Energy: restEnergy, Direction: smear(axis, 0.03, rng)},
		)
	}
	return daughters, nil
}

// Undecay backward-samples a tau parent for a ν_τ (or ν̄_e) daughter:
// it inverts the forward energy split with a freshly drawn
// inelasticity and returns the Jacobian weight spec.md §4.F calls
// W_undecay.
func (e *tauola) Undecay(daughter *Slot, polarisation PolarisationFunc, rng RandomFunc) (*Slot, float64, error) {
	z := 0.1 + 0.8*rng()
	tauEnergy := daughter.Energy / z
	daughterSign := 1
	if daughter.PID < 0 {
		daughterSign = -1
	}
	// nu_tau/nu_tau_bar are the tau's same-sign companion; nu_e/nu_e_bar
	// are its antiparticle companion (see Decay's channel comment).
	var tauSign int
	switch abs(daughter.PID) {
	case pidNuTau:
		tauSign = daughterSign
	case pidNuE:
		tauSign = -daughterSign
	default:
		tauSign = daughterSign
	}
	tauPID := tauSign * 15
	dir := smear(daughter.Direction, 0.01, rng)
	parent := &Slot{PID: tauPID, Energy: tauEnergy, Position: daughter.Position, Direction: dir}
	// Jacobian of the z -> E_tau change of variables, 1/z, matching the
	// (E_nu/p_tau)^2 rescaling the caller applies on top of this.
	weight := 1.0 / z
	return parent, weight, nil
}
