// Package engines declares the three physics collaborators spec.md §1
// treats as external and out of scope: neutrino cross-sections and DIS
// vertex sampling, charged-lepton multiple scattering and energy loss,
// and tau decay/un-decay. The interfaces here are the contracts
// component D (the adapters in the root danton package) drives; each
// has a concrete reference implementation in this package so the
// transport state machine in the root package is testable end to end,
// in the style of a propagator package that pairs a ThrustControl
// interface with concrete control laws.
package engines

// Slot is the engine-facing view of a particle: identity, energy, and
// kinematics, with none of the root package's geometry caches or
// flux-crossing bookkeeping. Component D converts to and from the root
// package's ParticleState at the call boundary.
type Slot struct {
	PID       int
	Energy    float64 // GeV
	Position  [3]float64
	Direction [3]float64
}

// Locals is the per-step material record the locals callback
// populates: density at the current position, the (always zero)
// magnetic field, and the geometry step-size hint.
type Locals struct {
	Density  float64
	Magnet   [3]float64
	StepHint float64
}

// MediumFunc wraps component A for an engine: given position and
// direction, it returns the step length to the next shell boundary and
// the shell index, negating direction first when the engine runs
// backward (spec.md §4.D).
type MediumFunc func(position, direction [3]float64) (step float64, mediumIndex int)

// LocalsFunc wraps the density/material lookup for a shell index,
// including the Earth-model step-size hint (spec.md §4.D).
type LocalsFunc func(mediumIndex int, position [3]float64) Locals

// AncestorFunc is the backward-mode parent-kind weight of spec.md
// §4.D: given a daughter PID and a candidate ancestor PID at the given
// energy and density, it returns the relative weight of that ancestor
// hypothesis.
type AncestorFunc func(daughterPID, ancestorPID int, energy, density float64) float64

// PolarisationFunc returns the longitudinal polarisation vector
// collinear with the given momentum (spec.md §4.D).
type PolarisationFunc func(momentum [3]float64) [3]float64

// RandomFunc is a uniform-[0,1) draw, component B's shim signature.
type RandomFunc func() float64
