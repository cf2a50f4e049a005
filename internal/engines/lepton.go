package engines

import (
	"math"

	"github.com/ChristopherRabotin/ode"
)

// LeptonOutcome enumerates what a LeptonEngine.Transport call produced.
type LeptonOutcome int

const (
	LeptonDecayed LeptonOutcome = iota
	LeptonBelowCut
	LeptonExited
)

// LeptonEngine is the out-of-scope PUMAS-like collaborator: continuous
// ionisation loss plus a stochastic radiative term, integrated along
// the ray until the tau decays, drops below the energy cut, or exits
// the medium.
type LeptonEngine interface {
	Transport(tau *Slot, energyCut float64, medium MediumFunc, locals LocalsFunc, rng RandomFunc) (LeptonOutcome, float64, error)
}

const (
	tauMass  = 1.77686     // GeV
	tauCTau0 = 8.703e-5     // metres, proper decay length c*tau0
	ionLoss  = 2.0e-3       // GeV per kg/m^2, ionisation term
	radLoss  = 3.0e-6       // per kg/m^2, radiative term (fractional)
)

// pumasLike is the reference lepton engine.
type pumasLike struct{}

// NewPumasLike returns the reference charged-lepton transport engine.
func NewPumasLike() LeptonEngine {
	return &pumasLike{}
}

// tauPropagator adapts one ray segment to github.com/ChristopherRabotin/ode's
// Integrable interface, the same {GetState,SetState,Func,Stop}
// propagation-loop shape used for orbital-element integration, here
// carrying a single scalar: kinetic energy lost to continuous
// ionisation and radiative loss over a grammage increment.
type tauPropagator struct {
	energy  float64
	density float64
}

func (p *tauPropagator) GetState() []float64 { return []float64{p.energy} }

func (p *tauPropagator) SetState(t float64, s []float64) {
	p.energy = s[0]
}

func (p *tauPropagator) Func(t float64, s []float64) []float64 {
	e := s[0]
	dEdX := -(ionLoss + radLoss*e) // GeV per kg/m^2
	return []float64{dEdX * p.density}
}

func (p *tauPropagator) Stop(t float64) bool { return t > 0 }

// Transport implements the engine-side loop spec.md §4.E step 7.b
// drives: sample a lab-frame decay length once, then integrate energy
// loss step by step (via RK4 over each geometric substep) until decay,
// the energy cut, or exit.
func (e *pumasLike) Transport(tau *Slot, energyCut float64, medium MediumFunc, locals LocalsFunc, rng RandomFunc) (LeptonOutcome, float64, error) {
	hazard := tauMass / (tau.Energy * tauCTau0) // 1/m, lab-frame decay rate
	decayAt := -math.Log(rng()) / hazard
	travelled := 0.0
	grammage := 0.0
	const maxSubsteps = 200000
	for n := 0; n < maxSubsteps; n++ {
		step, idx := medium(tau.Position, tau.Direction)
		if idx < 0 {
			return LeptonExited, grammage, nil
		}
		l := locals(idx, tau.Position)
		ds := step
		if travelled+ds > decayAt {
			ds = decayAt - travelled
		}
		if ds > 0 {
			prop := &tauPropagator{energy: tau.Energy, density: l.Density}
			ode.NewRK4(0, ds, prop).Solve()
			tau.Energy = math.Max(prop.energy, 0)
			grammage += l.Density * ds
			for i := range tau.Position {
				tau.Position[i] += tau.Direction[i] * ds
			}
			travelled += ds
		}
		if tau.Energy <= energyCut {
			return LeptonBelowCut, grammage, nil
		}
		if travelled >= decayAt {
			return LeptonDecayed, grammage, nil
		}
	}
	return LeptonBelowCut, grammage, nil
}
