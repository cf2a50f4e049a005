package danton

import (
	"encoding/binary"
	"fmt"
	"math"
)

// TargetWeights is the per-particle-kind target weight vector of
// spec.md §3: how much of the sampled flux each primary kind should
// carry. Update sums it into NeutrinoSumWeight/TotalWeight and folds it
// into the integrity hash; the transport code does not read it.
type TargetWeights struct {
	NuTau    float64
	NuTauBar float64
	NuEBar   float64
	Tau      float64
	TauBar   float64
}

// NeutrinoSum is the sum of the three neutrino-kind weights.
func (w TargetWeights) NeutrinoSum() float64 {
	return w.NuTau + w.NuTauBar + w.NuEBar
}

// Total is the sum of every kind's weight, neutrino and charged-lepton.
func (w TargetWeights) Total() float64 {
	return w.NeutrinoSum() + w.Tau + w.TauBar
}

// Sampler is component C: validated primary-kinematics ranges plus the
// draw operations forward and backward transport pull primaries from.
// Every range field is mutable until Update stamps the integrity hash;
// any field touched after that without a following Update makes the
// sampler stale, and transport refuses to run (spec.md §3, §8).
type Sampler struct {
	CosThetaRange  [2]float64
	ElevationRange [2]float64 // degrees
	AltitudeRange  [2]float64 // metres
	EnergyRange    [2]float64 // GeV
	Weights        TargetWeights

	neutrinoSum float64
	total       float64
	hash        uint32
	updated     bool
}

// minSamplerEnergy and minSamplerEnergyHigh are the §4.C Update bounds:
// 100 GeV <= E_lo <= E_hi, and E_hi must reach at least 10^12 GeV.
const (
	minSamplerEnergy     = 100.0
	minSamplerEnergyHigh = 1e12
)

// Update validates the sampler's ranges per spec.md §4.C, computes the
// derived weight totals, and stamps the integrity hash. It must be
// called after any field mutation and before the sampler is attached
// to a Context.
func (s *Sampler) Update() error {
	if err := s.validate(); err != nil {
		return err
	}
	s.neutrinoSum = s.Weights.NeutrinoSum()
	s.total = s.Weights.Total()
	s.hash = s.checksum()
	s.updated = true
	return nil
}

func (s *Sampler) validate() error {
	lo, hi := s.CosThetaRange[0], s.CosThetaRange[1]
	if !(0 <= lo && lo <= hi && hi <= 1) {
		return fmt.Errorf("%w: cos_theta range [%g, %g]", ErrSamplerRange, lo, hi)
	}
	elo, ehi := s.ElevationRange[0], s.ElevationRange[1]
	if !(-90 <= elo && elo <= ehi && ehi <= 90) {
		return fmt.Errorf("%w: elevation range [%g, %g]", ErrSamplerRange, elo, ehi)
	}
	alo, ahi := s.AltitudeRange[0], s.AltitudeRange[1]
	if !(0 <= alo && alo <= ahi) {
		return fmt.Errorf("%w: altitude range [%g, %g]", ErrSamplerRange, alo, ahi)
	}
	Elo, Ehi := s.EnergyRange[0], s.EnergyRange[1]
	if !(minSamplerEnergy <= Elo && Elo <= Ehi) {
		return fmt.Errorf("%w: energy range [%g, %g]", ErrSamplerRange, Elo, Ehi)
	}
	if Ehi < minSamplerEnergyHigh {
		return fmt.Errorf("%w: energy_hi %g below %g", ErrSamplerRange, Ehi, minSamplerEnergyHigh)
	}
	return nil
}

// checksum computes a djb2 hash over the sampler's numeric fields, the
// "integrity hash" spec.md §3/§8 requires be stamped at Update and
// re-checked at run time.
func (s *Sampler) checksum() uint32 {
	var buf []byte
	appendF := func(v float64) {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
		buf = append(buf, b[:]...)
	}
	appendF(s.CosThetaRange[0])
	appendF(s.CosThetaRange[1])
	appendF(s.ElevationRange[0])
	appendF(s.ElevationRange[1])
	appendF(s.AltitudeRange[0])
	appendF(s.AltitudeRange[1])
	appendF(s.EnergyRange[0])
	appendF(s.EnergyRange[1])
	appendF(s.Weights.NuTau)
	appendF(s.Weights.NuTauBar)
	appendF(s.Weights.NuEBar)
	appendF(s.Weights.Tau)
	appendF(s.Weights.TauBar)

	var hash uint32 = 5381
	for _, b := range buf {
		hash = hash*33 + uint32(b)
	}
	return hash
}

// Verify returns ErrStaleSampler if the sampler's fields have changed
// since the last Update (or it was never updated at all).
func (s *Sampler) Verify() error {
	if !s.updated {
		return ErrStaleSampler
	}
	if s.checksum() != s.hash {
		return ErrStaleSampler
	}
	return nil
}

// NeutrinoSumWeight returns the derived neutrino-sum weight stamped by
// the last Update.
func (s *Sampler) NeutrinoSumWeight() float64 { return s.neutrinoSum }

// TotalWeight returns the derived total weight stamped by the last
// Update.
func (s *Sampler) TotalWeight() float64 { return s.total }

// Linear draws from x[2] per spec.md §4.C's "linear" operation: in
// grammage mode (grid=true) it returns the uniform grid point
// u = i/(n-1); otherwise it draws u ~ U(0,1) from rng. The returned
// weight carries the (x1-x0) Jacobian either way.
func (s *Sampler) Linear(rng *Rng, x [2]float64, i, n int, grid bool) (value, weight float64) {
	if x[0] == x[1] {
		// Degenerate (monokinetic) range: spec.md §8's boundary property
		// requires weight 1, not the vanishing (x1-x0) Jacobian.
		return x[0], 1
	}
	var u float64
	if grid {
		if n <= 1 {
			u = 0
		} else {
			u = float64(i) / float64(n-1)
		}
	} else {
		u = rng.Float64()
	}
	value = x[0] + u*(x[1]-x[0])
	weight = x[1] - x[0]
	return value, weight
}

// LogOrLinear draws from x[2] per spec.md §4.C's "log-or-linear"
// operation: log-uniform (with weight |ln(x1/x0)|*x) when both
// endpoints share sign, otherwise falls back to a plain linear draw.
func (s *Sampler) LogOrLinear(rng *Rng, x [2]float64) (value, weight float64) {
	if x[0] == x[1] {
		// Degenerate (monokinetic) range: spec.md §8's boundary property
		// requires weight 1, not the vanishing |ln(hi/lo)| Jacobian.
		return x[0], 1
	}
	sameSign := (x[0] > 0 && x[1] > 0) || (x[0] < 0 && x[1] < 0)
	if !sameSign {
		return s.Linear(rng, x, 0, 1, false)
	}
	lo, hi := math.Abs(x[0]), math.Abs(x[1])
	u := rng.Float64()
	logLo, logHi := math.Log(lo), math.Log(hi)
	v := math.Exp(logLo + u*(logHi-logLo))
	if x[0] < 0 {
		v = -v
	}
	return v, math.Abs(math.Log(hi/lo)) * math.Abs(v)
}
