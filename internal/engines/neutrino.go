package engines

import "math"

// NeutrinoOutcome enumerates what a NeutrinoEngine.Step call produced,
// the "returned event" of spec.md §4.E step 1/4.
type NeutrinoOutcome int

const (
	// NeutrinoContinue means the main slot is still the same transport
	// flavour (e.g. a neutral-current scatter) and the caller should
	// keep looping.
	NeutrinoContinue NeutrinoOutcome = iota
	// NeutrinoProducedLepton means a charged lepton was placed in the
	// product slot.
	NeutrinoProducedLepton
	// NeutrinoExit means the track left the medium or fell through the
	// engine's own internal threshold.
	NeutrinoExit
)

// NeutrinoEngine is the out-of-scope DIS/cross-section collaborator.
// Step advances main by one vertex; on a charged-current tau-producing
// interaction it writes the tau into product and returns
// NeutrinoProducedLepton. SampleVertex is the backward-mode production
// vertex sampler invoked with the ancestor callback (spec.md §4.D,
// §4.F).
type NeutrinoEngine interface {
	Step(main, product *Slot, medium MediumFunc, locals LocalsFunc, rng RandomFunc) (NeutrinoOutcome, error)
	SampleVertex(daughter *Slot, ancestorPID int, medium MediumFunc, locals LocalsFunc, ancestor AncestorFunc, rng RandomFunc) (*Slot, error)
	CrossSection(pid int, energy float64, l Locals) float64
	MeanFreePath(pid int, energy float64, l Locals) float64
}

// quasiDIS is a simplified reference neutrino engine: a single
// effective cross-section growing slowly with energy, exponential
// interaction-length sampling along the geometry's steps, and a fixed
// charged-current branching fraction for the tau-producing flavours.
// It stands in for the real DIS/PDF-driven engine spec.md §1 places
// out of scope.
type quasiDIS struct {
	ccBranching float64 // P(charged-current | interaction) for nu_tau/nu_tau_bar
	sigma0      float64 // cm^2, reference cross-section at 1 GeV
	index       float64 // energy scaling exponent
}

// NewQuasiDIS returns the reference neutrino engine with DANTON-scale
// defaults: a charged-current branching fraction of 0.7 and a
// cross-section rising as E^0.363, the exponent the ancestor-weight
// parameterisation of spec.md §4.D also uses.
func NewQuasiDIS() NeutrinoEngine {
	return &quasiDIS{ccBranching: 0.7, sigma0: 6e-36, index: 0.363}
}

func (q *quasiDIS) CrossSection(pid int, energy float64, l Locals) float64 {
	return q.sigma0 * math.Pow(energy, q.index)
}

const avogadro = 6.02214076e23

// MeanFreePath is lambda_P = A/(sigma*Na*rho)*1e-3 of spec.md §4.F,
// in metres, taking A=14 (an air/rock-scale effective mass number).
func (q *quasiDIS) MeanFreePath(pid int, energy float64, l Locals) float64 {
	if l.Density <= 0 {
		return math.Inf(1)
	}
	const effectiveA = 14.0
	sigma := q.CrossSection(pid, energy, l)
	return effectiveA / (sigma * avogadro * l.Density) * 1e-3
}

func isTauFlavour(pid int) bool {
	return pid == 16 || pid == -16
}

// Step implements the engine-side loop that spec.md §4.E's transport
// loop drives: step the geometry, accumulate an exponential
// interaction probability, and either produce a vertex or exit.
func (q *quasiDIS) Step(main, product *Slot, medium MediumFunc, locals LocalsFunc, rng RandomFunc) (NeutrinoOutcome, error) {
	const maxSubsteps = 100000
	for n := 0; n < maxSubsteps; n++ {
		step, idx := medium(main.Position, main.Direction)
		if idx < 0 {
			return NeutrinoExit, nil
		}
		l := locals(idx, main.Position)
		lambda := q.MeanFreePath(main.PID, main.Energy, l)
		drawn := -lambda * math.Log(rng())
		if drawn < step {
			// Interaction occurs within this geometric step.
			for i := range main.Position {
				main.Position[i] += main.Direction[i] * drawn
			}
			if isTauFlavour(main.PID) && rng() < q.ccBranching {
				tauPID := -15
				if main.PID == -16 {
					tauPID = 15
				}
				inelasticity := 0.2 + 0.6*rng()
				tauEnergy := main.Energy * (1 - inelasticity)
				*product = Slot{PID: tauPID, Energy: tauEnergy, Position: main.Position, Direction: main.Direction}
				main.Energy *= inelasticity
				return NeutrinoProducedLepton, nil
			}
			// Neutral-current-like scatter: same flavour, degraded energy.
			main.Energy *= 0.3 + 0.5*rng()
			continue
		}
		for i := range main.Position {
			main.Position[i] += main.Direction[i] * step
		}
	}
	return NeutrinoExit, nil
}

// SampleVertex is the backward-mode vertex sampler of spec.md §4.F: it
// walks the daughter along its Direction (backward callers pass an
// already reversed direction) until a candidate
// ancestor is accepted by the ancestor callback's weight, then returns
// that ancestor slot.
func (q *quasiDIS) SampleVertex(daughter *Slot, ancestorPID int, medium MediumFunc, locals LocalsFunc, ancestor AncestorFunc, rng RandomFunc) (*Slot, error) {
	backward := Slot{PID: daughter.PID, Energy: daughter.Energy, Position: daughter.Position, Direction: daughter.Direction}
	const maxSubsteps = 100000
	for n := 0; n < maxSubsteps; n++ {
		step, idx := medium(backward.Position, backward.Direction)
		if idx < 0 {
			return nil, errExitBeforeVertex
		}
		l := locals(idx, backward.Position)
		lambda := q.MeanFreePath(daughter.PID, backward.Energy, l)
		drawn := -lambda * math.Log(rng())
		if drawn < step {
			for i := range backward.Position {
				backward.Position[i] += backward.Direction[i] * drawn
			}
			w := ancestor(daughter.PID, ancestorPID, backward.Energy, l.Density)
			if rng() < w {
				out := Slot{PID: ancestorPID, Energy: backward.Energy / (0.2 + 0.6*rng()), Position: backward.Position, Direction: backward.Direction}
				return &out, nil
			}
			continue
		}
		for i := range backward.Position {
			backward.Position[i] += backward.Direction[i] * step
		}
	}
	return nil, errExitBeforeVertex
}
