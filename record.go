package danton

import "fmt"

// PrimaryDumpedLatch is the per-event guard of spec.md §4.E/§4.G/§8:
// at most one ancestor line may precede all records belonging to one
// primary event, even when several of its daughters each produce an
// emission.
type PrimaryDumpedLatch struct {
	dumped bool
}

// TryDump returns true exactly once per latch lifetime: the first
// caller "wins" the ancestor emission, every later caller is told not
// to repeat it.
func (l *PrimaryDumpedLatch) TryDump() bool {
	if l.dumped {
		return false
	}
	l.dumped = true
	return true
}

// formatParticleLine renders one whitespace-aligned particle record:
// a tag, the PDG code, energy, position, direction and weight. Every
// emitted line in §4.G's two record shapes (decay, flux) is built from
// this one formatter with a different tag.
func formatParticleLine(tag string, s *ParticleState) string {
	return fmt.Sprintf(
		"%-10s %6d %14.6E %14.6E %14.6E %14.6E %10.6f %10.6f %10.6f %14.6E",
		tag, s.PID, s.Energy,
		s.Position[0], s.Position[1], s.Position[2],
		s.Direction[0], s.Direction[1], s.Direction[2],
		s.Weight,
	)
}

// FormatAncestorLine renders the one ancestor line that opens both a
// decay record and a flux record.
func FormatAncestorLine(s *ParticleState) string {
	return formatParticleLine("ancestor", s)
}

// FormatTauProductionLine renders "tau at production", the first of
// the decay record's τ pair.
func FormatTauProductionLine(s *ParticleState) string {
	return formatParticleLine("tau-prod", s)
}

// FormatTauDecayLine renders "tau at decay", the second of the decay
// record's τ pair.
func FormatTauDecayLine(s *ParticleState) string {
	return formatParticleLine("tau-decay", s)
}

// FormatDaughterLine renders one non-neutrino decay daughter line.
func FormatDaughterLine(s *ParticleState) string {
	return formatParticleLine("daughter", s)
}

// FormatFluxLine renders the single particle line of a flux record
// (either a neutrino or a τ, depending on Context.TauFlux).
func FormatFluxLine(s *ParticleState) string {
	return formatParticleLine("flux", s)
}

// FormatGrammageLine renders one (angle, accumulated grammage) line.
// angle is cos θ in forward mode, elevation in degrees in backward
// mode (spec.md §6).
func FormatGrammageLine(angle, grammage float64) string {
	return fmt.Sprintf("%-10s %14.6E %14.6E", "grammage", angle, grammage)
}
