package danton

import (
	"math"

	"github.com/Raimer/danton/internal/engines"
)

// toSlot converts a ParticleState into the engine-facing Slot the
// internal/engines interfaces operate on (component D).
func toSlot(s *ParticleState) *engines.Slot {
	return &engines.Slot{PID: s.PID, Energy: s.Energy, Position: s.Position, Direction: s.Direction}
}

// fromSlot writes an engine's result back into a ParticleState,
// refreshing the radius cache the geometry callback otherwise owns.
func fromSlot(s *ParticleState, slot *engines.Slot) {
	s.PID = slot.PID
	s.Energy = slot.Energy
	s.Position = slot.Position
	s.Direction = slot.Direction
	s.Radius = Norm(s.Position)
}

// mediumFunc builds the component-D medium callback for one particle:
// it wraps the component-A stepper, negating direction when the engine
// is run backward, and layers in the optional flux-crossing detector
// of spec.md §4.A's closing paragraph.
func (c *Context) mediumFunc(s *ParticleState, backward bool) engines.MediumFunc {
	return func(position, direction [3]float64) (float64, int) {
		dir := direction
		if backward {
			dir = Scale(dir, -1)
		}
		chargedLepton := s.Kind == KindChargedLepton
		step, idx := c.earth.Step(position, dir, chargedLepton)
		s.Radius = Norm(position)
		s.MediumIndex = idx

		if s.HasCrossed == crossNotInside && c.sampler != nil {
			threshold := earthRadius + c.sampler.AltitudeRange[0]
			inside := 0
			if s.Radius < threshold {
				inside = 1
			}
			if s.IsInside == -1 {
				s.IsInside = inside
			} else if s.IsInside != inside {
				s.IsInside = inside
				s.HasCrossed = crossInside
				s.CrossCount++
				return 0, idx
			}
		}
		return step, idx
	}
}

// localsFunc builds the component-D locals callback: density at the
// current position, a zero magnetic field (no-goal per spec.md §1),
// and the geometry's step-size hint.
func (c *Context) localsFunc() engines.LocalsFunc {
	return func(idx int, position [3]float64) engines.Locals {
		if idx < 0 {
			return engines.Locals{}
		}
		r := Norm(position)
		density := c.earth.DensityAt(idx, r)
		return engines.Locals{Density: density, StepHint: 0.01 * r}
	}
}

// ancestorPDGWeight is the empirical parameterisation of spec.md §4.D
// for a ν_τ daughter produced by a τ ancestor.
const ancestorPDGWeight = 1.63e-17

// ancestorFunc builds the component-D ancestor callback used by
// backward neutrino vertex sampling.
func (c *Context) ancestorFunc() engines.AncestorFunc {
	return func(daughterPID, ancestorPID int, energy, density float64) float64 {
		switch ancestorPID {
		case PDGNuEBar:
			if daughterPID == PDGNuEBar {
				return 1
			}
		case PDGNuTau, PDGNuTauBar:
			if daughterPID == ancestorPID {
				return 1
			}
		case PDGTauMinus, PDGTauPlus:
			return ancestorPDGWeight * math.Pow(energy, 1.363) * density
		}
		return 0
	}
}

// polarisationFunc builds the component-D polarisation callback: the
// tau's decay products are longitudinally polarised collinear with its
// own momentum direction.
func (c *Context) polarisationFunc() engines.PolarisationFunc {
	return func(momentum [3]float64) [3]float64 {
		return Unit(momentum)
	}
}
