package danton

import (
	"fmt"

	"github.com/Raimer/danton/internal/engines"
)

// forwardEnergyEpsilon is the ε of spec.md §4.E step 2's "energy ≤ cut
// + ε" termination test, guarding against a track stalling exactly on
// the cut due to floating-point noise.
const forwardEnergyEpsilon = 1e-9

// tauRestMass is the τ rest mass in GeV, duplicated from
// internal/engines (an unexported constant there) since component E
// needs it to turn a produced τ slot's total energy into the
// charged-lepton state's kinetic energy.
const tauRestMass = 1.77686

// maxDecayRetries is the spec.md §4.E.7.c retry budget: a run of this
// many consecutive decay-engine failures silently yields no products
// for that τ, and the event continues rather than aborting.
const maxDecayRetries = 20

func isTauPID(pid int) bool { return pid == PDGTauMinus || pid == PDGTauPlus }

func isTransportableNeutrino(pid int) bool {
	return pid == PDGNuTau || pid == PDGNuTauBar || pid == PDGNuEBar
}

// classifyDaughterKind reports whether a decay daughter's PDG code is
// one of the three neutrino flavours this engine's tables know about;
// everything else is treated as a charged lepton or hadron.
func classifyDaughterKind(pid int) Kind {
	switch abs(pid) {
	case 12, 14, 16:
		return KindNeutrino
	default:
		return KindChargedLepton
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// newTauState builds the component-E charged-lepton carrier for a τ the
// neutrino engine just produced: kinetic energy is the slot's total
// energy less the τ rest mass, and the flux-crossing triad starts
// unclassified exactly like a fresh primary.
func newTauState(slot *engines.Slot, weight float64) *ParticleState {
	return &ParticleState{
		Kind:        KindChargedLepton,
		PID:         slot.PID,
		Energy:      slot.Energy - tauRestMass,
		Position:    slot.Position,
		Direction:   slot.Direction,
		Weight:      weight,
		Radius:      Norm(slot.Position),
		MediumIndex: -1,
		IsInside:    -1,
		HasCrossed:  crossDisabled,
	}
}

// daughterState converts one engines.Daughter, produced at the τ's
// decay vertex, into a ParticleState ready for either recursion
// (neutrinos) or logging (everything else).
func daughterState(d engines.Daughter, tau *ParticleState) *ParticleState {
	return &ParticleState{
		Kind:        classifyDaughterKind(d.PID),
		PID:         d.PID,
		Energy:      d.Energy,
		Position:    tau.Position,
		Direction:   d.Direction,
		Weight:      tau.Weight,
		Radius:      tau.Radius,
		MediumIndex: tau.MediumIndex,
		Density:     tau.Density,
		IsInside:    -1,
		HasCrossed:  crossDisabled,
	}
}

// decayWithRetries calls the decay engine up to maxDecayRetries times,
// returning the first successful set of daughters, or a nil slice (not
// an error the caller need abort on) if every attempt failed — spec.md
// §4.E.7.c's "retries never fatally abort the event".
func decayWithRetries(engine engines.DecayEngine, tau *ParticleState, polarisation engines.PolarisationFunc, rng engines.RandomFunc) []engines.Daughter {
	tauSlot := toSlot(tau)
	for attempt := 0; attempt < maxDecayRetries; attempt++ {
		daughters, err := engine.Decay(tauSlot, polarisation, rng)
		if err == nil {
			return daughters
		}
	}
	return nil
}

// RunForward implements component E: recursive forward transport of one
// neutrino primary (or a recursively-produced daughter neutrino)
// through the Earth model, per spec.md §4.E. main is mutated in place
// as it is stepped; ancestor is the immutable primary snapshot carried
// down the recursion for delayed ancestor-line logging, and latch
// enforces the "primary_dumped" exactly-once rule across every
// daughter of one primary event.
func (c *Context) RunForward(main *ParticleState, generation int, ancestor *ParticleState, latch *PrimaryDumpedLatch) error {
	if !isTransportableNeutrino(main.PID) {
		return nil
	}
	if generation > maxGeneration {
		return nil
	}

	entryDirection := main.Direction

	// Flux-crossing arming applies only to neutrino-flux mode; tau-flux
	// mode arms the triad on the τ itself once one is produced (step 7.e).
	fluxArmed := c.FluxOnly && !c.TauFlux
	if fluxArmed {
		if main.HasCrossed == crossInside {
			// Inherited "already inside" state from the parent τ's decay
			// vertex (tie-break note in spec.md §4.E): count it as the
			// first crossing already having fired.
			main.CrossCount = 1
		} else {
			main.IsInside = -1
			main.HasCrossed = crossNotInside
			main.CrossCount = 0
		}
	}

	rng := c.rng.Shim()
	locals := c.localsFunc()

	for {
		medium := c.mediumFunc(main, false)
		mainSlot := toSlot(main)
		productSlot := &engines.Slot{}

		outcome, err := c.neutrino.Step(mainSlot, productSlot, medium, locals, rng)
		if err != nil {
			return fmt.Errorf("%w: neutrino step: %v", ErrEngine, err)
		}
		fromSlot(main, mainSlot)

		// 2. energy cut.
		if main.Energy <= c.EnergyCutLow+forwardEnergyEpsilon {
			return nil
		}

		// 3. flux-mode crossing bookkeeping.
		if fluxArmed && main.HasCrossed == crossInside {
			if main.CrossCount >= 2 {
				c.out.EmitFlux(latch, ancestor, main)
				return nil
			}
			main.IsInside = -1
			main.HasCrossed = crossNotInside
			continue
		}

		// 4. exit.
		if outcome == engines.NeutrinoExit {
			return nil
		}

		// 5. longitudinal-only direction freeze.
		if c.LongitudinalOnly {
			main.Direction = entryDirection
			productSlot.Direction = entryDirection
		}

		// 6. defensive slot swap: the engine is only contracted to place a
		// produced τ in product, but a differently-behaved engine might
		// leave it in main instead.
		if isTauPID(mainSlot.PID) && !isTauPID(productSlot.PID) {
			mainSlot, productSlot = productSlot, mainSlot
			fromSlot(main, mainSlot)
		}

		// 7. τ production, transport, decay, recursion.
		if outcome == engines.NeutrinoProducedLepton || isTauPID(productSlot.PID) {
			tau := newTauState(productSlot, main.Weight)
			if c.FluxOnly && c.TauFlux {
				tau.IsInside = -1
				tau.HasCrossed = crossNotInside
				tau.CrossCount = 0
			}
			production := tau.Clone()

			tauMedium := c.mediumFunc(tau, false)
			tauSlot := toSlot(tau)
			leptonOutcome, grammage, err := c.lepton.Transport(tauSlot, c.EnergyCutLow, tauMedium, locals, rng)
			if err != nil {
				return fmt.Errorf("%w: lepton transport: %v", ErrEngine, err)
			}
			fromSlot(tau, tauSlot)
			tau.Grammage += grammage

			switch leptonOutcome {
			case engines.LeptonDecayed:
				tau.Decayed = true
				daughters := decayWithRetries(c.decay, tau, c.polarisationFunc(), rng)
				if daughters != nil {
					var threshold float64
					haveThreshold := c.sampler != nil
					if haveThreshold {
						threshold = earthRadius + c.sampler.AltitudeRange[0]
					}
					daughterAlreadyInside := haveThreshold && tau.Radius < threshold

					var survivors []*ParticleState
					var logged []*ParticleState
					for _, d := range daughters {
						ds := daughterState(d, tau)
						switch {
						case ds.PID == PDGNuTau || ds.PID == PDGNuTauBar || ds.PID == PDGNuEBar:
							if daughterAlreadyInside {
								ds.HasCrossed = crossInside
							}
							survivors = append(survivors, ds)
						case abs(ds.PID) == 13 || abs(ds.PID) == 14:
							// muon and nu_mu daughters are dropped per
							// spec.md §4.E.7.c's explicit exclusion.
						default:
							if c.EmitDaughtersAnyMedium || tau.MediumIndex >= 10 {
								logged = append(logged, ds)
							}
						}
					}

					c.out.EmitDecay(latch, ancestor, production, tau, logged)

					for _, s := range survivors {
						if err := c.RunForward(s, generation+1, ancestor, latch); err != nil {
							return err
						}
					}
				}
				// A run of maxDecayRetries failures silently yields no
				// products; the primary's own transport below continues
				// regardless (spec.md §4.E.7.c).

			case engines.LeptonExited:
				if c.FluxOnly && c.TauFlux && tau.HasCrossed == crossInside {
					c.out.EmitFlux(latch, ancestor, tau)
				}

			case engines.LeptonBelowCut:
				// Below the energy cut with no decay: this branch simply
				// terminates, producing no record.
			}
		}

		// 8. loop or return.
		if !isTransportableNeutrino(main.PID) {
			return nil
		}
	}
}
