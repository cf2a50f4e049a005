package danton

import (
	"errors"
	"math"

	"github.com/Raimer/danton/internal/engines"
)

// lambda0 is the λ₀ of spec.md §4.F: the grammage scale of both the
// forward-grammage decay horizon and the backward survival correction
// p₀ = exp(−(X−X₀)/λ₀).
const lambda0 = 3e7 // kg/m^2

// forcedDecayProbability is p1, the bias applied to the τ's backward
// decay probability when its stopping vertex lies in an atmosphere
// shell (index >= 10) of positive density. No ray-to-surface test is
// made before applying it.
const forcedDecayProbability = 0.1

// tauCTau0 duplicates internal/engines' unexported proper decay length
// (c·τ₀, metres) for component F's own weight bookkeeping.
const tauCTau0 = 8.703e-5

// Direction convention for this file: every ParticleState this package
// hands to a caller (entry parameters, emitted records, recursion
// results) always carries the physical momentum direction. Internally,
// working copies fed to the engine Step/Transport/SampleVertex calls
// (which all advance position along +Direction with no notion of
// "backward" of their own) get their Direction field negated before
// the call, so the actual spatial walk runs backward in space while
// the component-A geometry math — driven through the same negated
// Direction — still picks the correct near/far root.

// tauAncestorForNeutrino reports the τ PDG code that could have
// produced a backward-walked neutrino of the given PID via its decay,
// per the sign convention internal/engines' quasiDIS and tauola use
// (tau- -> nu_tau + ...; tau- -> ... + nu_e_bar + ...; tau+ -> nu_tau_bar + ...).
func tauAncestorForNeutrino(pid int) (tauPID int, ok bool) {
	switch pid {
	case PDGNuTau, PDGNuEBar:
		return PDGTauMinus, true
	case PDGNuTauBar:
		return PDGTauPlus, true
	default:
		return 0, false
	}
}

// tauAncestorPID reports, for a τ already in hand, which ν flavour
// produced it by a charged-current interaction in the neutrino engine's
// own convention. It is not the inverse of tauAncestorForNeutrino,
// which follows decay companions rather than production.
func tauAncestorPID(tauPID int) int {
	if tauPID == PDGTauPlus {
		return PDGNuTau
	}
	return PDGNuTauBar
}

// Backward implements component F: the two-regime reverse Monte Carlo
// of spec.md §4.F. current is either a τ at its decay vertex or a
// neutrino; generation starts at 1. final is snapshotted once, at
// generation 1; tauAtProduction is overwritten every time a τ
// production vertex is reached, so after the recursion unwinds it
// holds the earliest (furthest back in time) τ; primary is set once,
// when the recursion terminates at an actual primary production
// vertex, for the "primary ν" ancestor line every emitted record uses.
func (c *Context) Backward(current *ParticleState, generation, pid0 int, final, tauAtProduction, primary **ParticleState) error {
	if generation == 1 {
		*final = current.Clone()
	}
	if generation > maxGeneration {
		return ErrRejectedPrimary
	}
	if current.Kind == KindChargedLepton {
		return c.backwardTau(current, generation, pid0, final, tauAtProduction, primary)
	}
	return c.backwardNeutrino(current, generation, pid0, final, tauAtProduction, primary)
}

// backwardTau runs the τ-at-decay regime of spec.md §4.F: bias the
// decay probability by the lab-frame hazard, sample a forward-grammage
// horizon, walk the τ backward (possibly several horizons, each
// subject to the forced-decay bias) until a production vertex is
// declared, then sample the parent neutrino's vertex and recurse.
func (c *Context) backwardTau(tau *ParticleState, generation, pid0 int, final, tauAtProduction, primary **ParticleState) error {
	rng := c.rng.Shim()
	locals := c.localsFunc()

	totalEnergy := tau.Energy + tauRestMass
	momentum := math.Sqrt(math.Max(totalEnergy*totalEnergy-tauRestMass*tauRestMass, 0))
	if momentum <= 0 {
		return ErrRejectedPrimary
	}
	tau.Weight *= tauRestMass / (tauCTau0 * momentum)

	working := tau.Clone()
	working.Direction = Scale(tau.Direction, -1)
	medium := c.mediumFunc(working, false)

	var lambdaD, lambdaB float64
	for {
		horizon := -lambda0 * math.Log(rng())
		grammage := 0.0
		exited := false
		for {
			step, idx := medium(working.Position, working.Direction)
			if idx < 0 {
				exited = true
				break
			}
			l := locals(idx, working.Position)
			ds := step
			if l.Density > 0 && grammage+l.Density*ds > horizon {
				ds = (horizon - grammage) / l.Density
			}
			if ds > 0 {
				e := working.Energy + tauRestMass
				working.Energy += (ionLossBackward + radLossBackward*e) * l.Density * ds
				grammage += l.Density * ds
				working.Position = Add(working.Position, Scale(working.Direction, ds))
				working.Grammage += l.Density * ds
			}
			totalE := working.Energy + tauRestMass
			if totalE >= c.BackwardEnergyCut {
				working.Kill()
				return ErrRejectedPrimary
			}
			if l.Density > 0 && grammage >= horizon {
				break
			}
		}

		totalE := working.Energy + tauRestMass
		p := math.Sqrt(math.Max(totalE*totalE-tauRestMass*tauRestMass, 0))
		lambdaD = 0
		if totalE > 0 {
			lambdaD = p * tauCTau0 / tauRestMass * workingDensity(locals, medium, working)
		}
		lambdaB = lambda0

		step, idx := medium(working.Position, working.Direction)
		_ = step
		inAir := idx >= 10
		l := locals(idx, working.Position)
		emergingFromEarth := idx < 0 || !inAir || l.Density <= 0

		if exited {
			return ErrRejectedPrimary
		}

		if !emergingFromEarth {
			pD := lambdaB / (lambdaB + lambdaD)
			pB := lambdaD / (lambdaB + lambdaD)
			if rng() < forcedDecayProbability {
				working.Weight *= pD / forcedDecayProbability
				break
			}
			working.Weight *= pB / (1 - forcedDecayProbability)
			continue
		}
		break
	}

	production := working.Clone()
	production.Direction = Scale(working.Direction, -1)
	*tauAtProduction = production

	ancestorPID := tauAncestorPID(working.PID)
	tauSlot := toSlot(working)
	ancestorCB := c.ancestorFunc()
	parentSlot, err := c.neutrino.SampleVertex(tauSlot, ancestorPID, medium, locals, ancestorCB, rng)
	if err != nil {
		return ErrRejectedPrimary
	}

	idx := c.earth.shellFor(Norm(parentSlot.Position))
	l := locals(idx, parentSlot.Position)
	lambdaP := c.neutrino.MeanFreePath(ancestorPID, parentSlot.Energy, l)
	p0 := math.Exp(-workingGrammageSoFar(working) / lambda0)
	multiplier := 1.0
	if lambdaP > 0 && p0 > 0 {
		multiplier = (lambdaB * lambdaD) / ((lambdaB + lambdaD) * lambdaP * p0)
	}

	parentNu := NewNeutrino(ancestorPID, parentSlot.Energy, parentSlot.Position, Scale(parentSlot.Direction, -1))
	parentNu.Weight = working.Weight * multiplier

	return c.Backward(parentNu, generation+1, pid0, final, tauAtProduction, primary)
}

// ionLossBackward/radLossBackward duplicate internal/engines' energy
// loss coefficients for the backward accumulation: going backward in
// time the τ's energy increases by the same differential loss it would
// have shed going forward.
const (
	ionLossBackward = 2.0e-3
	radLossBackward = 3.0e-6
)

// workingDensity and workingGrammageSoFar are small helpers kept local
// to backwardTau's single call site, factored out only to keep that
// function's body readable.
func workingDensity(locals engines.LocalsFunc, medium engines.MediumFunc, s *ParticleState) float64 {
	_, idx := medium(s.Position, s.Direction)
	return locals(idx, s.Position).Density
}

func workingGrammageSoFar(s *ParticleState) float64 {
	return s.Grammage
}

// backwardNeutrino runs the neutrino regime of spec.md §4.F: walk
// backward to the production vertex, trying the τ-decay-origin
// hypothesis before the direct-primary hypothesis; on the τ hypothesis
// un-decay and recurse, on the direct hypothesis check pid0 and
// terminate.
func (c *Context) backwardNeutrino(nu *ParticleState, generation, pid0 int, final, tauAtProduction, primary **ParticleState) error {
	rng := c.rng.Shim()
	locals := c.localsFunc()

	working := nu.Clone()
	working.Direction = Scale(nu.Direction, -1)
	medium := c.mediumFunc(working, false)
	ancestorCB := c.ancestorFunc()

	if tauParentPID, ok := tauAncestorForNeutrino(working.PID); ok {
		daughterSlot := toSlot(working)
		if _, err := c.neutrino.SampleVertex(daughterSlot, tauParentPID, medium, locals, ancestorCB, rng); err == nil {
			daughterForUndecay := &engines.Slot{PID: working.PID, Energy: working.Energy, Position: working.Position, Direction: nu.Direction}
			undone, wUndecay, uerr := c.decay.Undecay(daughterForUndecay, c.polarisationFunc(), rng)
			if uerr == nil && isTauPID(undone.PID) {
				tauMomentum := math.Sqrt(math.Max(undone.Energy*undone.Energy-tauRestMass*tauRestMass, 0))
				rescale := 1.0
				if tauMomentum > 0 {
					ratio := working.Energy / tauMomentum
					rescale = ratio * ratio
				}
				parentTau := &ParticleState{
					Kind:        KindChargedLepton,
					PID:         undone.PID,
					Energy:      undone.Energy - tauRestMass,
					Position:    undone.Position,
					Direction:   undone.Direction,
					Weight:      working.Weight * rescale * wUndecay,
					Radius:      Norm(undone.Position),
					MediumIndex: -1,
					IsInside:    -1,
					HasCrossed:  crossDisabled,
				}
				return c.Backward(parentTau, generation+1, pid0, final, tauAtProduction, primary)
			}
		}
	}

	selfSlot := toSlot(working)
	if _, err := c.neutrino.SampleVertex(selfSlot, working.PID, medium, locals, ancestorCB, rng); err != nil {
		return ErrRejectedPrimary
	}
	if working.PID != pid0 {
		return ErrRejectedPrimary
	}
	result := working.Clone()
	result.Direction = nu.Direction
	*primary = result
	return nil
}

// RunBackward drives one complete backward event from an entry state
// (a τ at decay, or a neutrino at the detector) to its primary and
// emits the record spec.md §4.F's "Emit:" list describes for the
// context's active mode. A rejected primary (kind mismatch, recursion
// backstop, or a sampling fizzle anywhere along the chain) is absorbed
// silently, matching the sampler-fizzle policy of spec.md §7.
func (c *Context) RunBackward(entry *ParticleState, pid0 int) error {
	var final, tauAtProduction, primary *ParticleState
	err := c.Backward(entry, 1, pid0, &final, &tauAtProduction, &primary)
	if err != nil {
		if errors.Is(err, ErrRejectedPrimary) {
			return nil
		}
		return err
	}
	if primary == nil || final == nil {
		return nil
	}

	latch := &PrimaryDumpedLatch{}
	switch {
	case c.Grammage:
		// Grammage accumulation is handled by the driver's own scan loop.
		return nil

	case c.FluxOnly && !c.TauFlux:
		c.out.EmitFlux(latch, primary, final)

	case c.FluxOnly && c.TauFlux:
		c.out.EmitAncestor(latch, primary)
		if tauAtProduction != nil {
			c.out.emit(FormatTauProductionLine(tauAtProduction))
		}
		c.out.emit(FormatFluxLine(final))

	default:
		rng := c.rng.Shim()
		daughters := decayWithRetries(c.decay, final, c.polarisationFunc(), rng)
		final.Decayed = true
		var logged []*ParticleState
		for _, d := range daughters {
			ds := daughterState(d, final)
			if ds.Kind == KindNeutrino {
				continue
			}
			logged = append(logged, ds)
		}
		c.out.EmitDecay(latch, primary, tauAtProduction, final, logged)
	}
	return nil
}
