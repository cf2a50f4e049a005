package danton

import "math"

// Material indices, shared by the neutrino and lepton engine adapters.
const (
	MaterialRock Material = iota
	MaterialWater
	MaterialAir
	MaterialVacuum
)

// Material identifies the medium a shell is made of.
type Material int

func (m Material) String() string {
	switch m {
	case MaterialRock:
		return "rock"
	case MaterialWater:
		return "water"
	case MaterialAir:
		return "air"
	case MaterialVacuum:
		return "vacuum"
	default:
		return "unknown"
	}
}

// earthRadius is the PREM mean radius, in meters.
const earthRadius = 6371000.0

// geostationaryRadius is the outer radius of the last tabulated shell.
const geostationaryRadius = 42164000.0

// rMax is the hard exit boundary of §4.A: beyond it, transport terminates
// unconditionally for every particle kind.
const rMax = 2 * geostationaryRadius

// atmosphereFloor is the §4.A "neutrinos that leave the atmosphere" bound.
const atmosphereFloor = earthRadius + 100000.0

// densityFunc returns the local density in kg/m^3 at radius r (meters).
type densityFunc func(r float64) float64

// shell describes one of the 15 concentric layers of §3, plus the
// implicit 16th vacuum buffer out to rMax (see earth.go doc below).
type shell struct {
	outerRadius float64
	material    Material
	density     densityFunc
}

// EarthModel is the component-A radially stratified density model: a
// fixed table of shells plus the ray-to-shell-boundary stepper.
type EarthModel struct {
	shells   []shell
	seaIndex int // index of the overridable sea shell (9, per spec.md §4.H)
	rockIdx  int // index whose material the sea shell aliases when overridden
	seaOverridden bool
}

// NewEarthModel builds the standard PREM+USS Earth model of spec.md §3.
//
// The 15 tabulated outer radii split into 7 PREM polynomial segments
// (core and mantle), two uniform crustal shells, one uniform sea shell,
// four USS exponential atmosphere segments and one near-vacuum
// outer-space shell; an implicit 16th entry extends that last shell out
// to rMax so the stepping algorithm never runs out of table.
func NewEarthModel() *EarthModel {
	prem := []struct {
		outer float64
		rho   func(x float64) float64 // x = r / earthRadius, returns g/cm^3
	}{
		{1221500, func(x float64) float64 { return 13.0885 - 8.8381*x*x }},
		{3480000, func(x float64) float64 { return 12.5815 - 1.2638*x - 3.6426*x*x - 5.5281*x*x*x }},
		{5701000, func(x float64) float64 { return 7.9565 - 6.4761*x + 5.5283*x*x - 3.0807*x*x*x }},
		{5771000, func(x float64) float64 { return 5.3197 - 1.4836*x }},
		{5971000, func(x float64) float64 { return 11.2494 - 8.0298*x }},
		{6151000, func(x float64) float64 { return 7.1089 - 3.8045*x }},
		{6346600, func(x float64) float64 { return 2.6910 + 0.6924*x }},
	}
	shells := make([]shell, 0, 16)
	for _, seg := range prem {
		rho := seg.rho
		shells = append(shells, shell{
			outerRadius: seg.outer,
			material:    MaterialRock,
			density: func(r float64) float64 {
				return rho(r/earthRadius) * 1000
			},
		})
	}
	uniform := func(outer, rhoKgM3 float64, mat Material) shell {
		return shell{outerRadius: outer, material: mat, density: func(float64) float64 { return rhoKgM3 }}
	}
	shells = append(shells, uniform(6356000, 2900, MaterialRock))  // lower crust
	shells = append(shells, uniform(6368000, 2600, MaterialRock))  // upper crust
	shells = append(shells, uniform(6371000, 1020, MaterialWater)) // the one sea shell
	// Four USS exponential segments: rho(r) = (B/C) exp(-(r-R_E)/C).
	uss := func(outer, b, c float64) shell {
		return shell{outerRadius: outer, material: MaterialAir, density: func(r float64) float64 {
			return (b / c) * math.Exp(-(r-earthRadius)/c)
		}}
	}
	shells = append(shells, uss(6375000, 11700, 9800))
	shells = append(shells, uss(6381000, 8100, 6600))
	shells = append(shells, uss(6411000, 3900, 7200))
	shells = append(shells, uss(6471000, 900, 8300))
	shells = append(shells, uniform(geostationaryRadius, 1e-12, MaterialVacuum))
	shells = append(shells, uniform(rMax, 1e-14, MaterialVacuum))
	return &EarthModel{shells: shells, seaIndex: 9, rockIdx: 8}
}

// OverrideSea aliases the sea shell's material to the adjoining rock
// shell's, a reversible view (spec.md §4.H, §9) that never mutates the
// underlying table in place.
func (e *EarthModel) OverrideSea(on bool) {
	e.seaOverridden = on
}

// materialAt returns the material in effect for shell index i, honoring
// the sea override.
func (e *EarthModel) materialAt(i int) Material {
	if i < 0 || i >= len(e.shells) {
		return MaterialVacuum
	}
	if e.seaOverridden && i == e.seaIndex {
		return e.shells[e.rockIdx].material
	}
	return e.shells[i].material
}

// DensityAt returns the local density at the given shell index and radius.
func (e *EarthModel) DensityAt(i int, r float64) float64 {
	if i < 0 || i >= len(e.shells) {
		return 0
	}
	return e.shells[i].density(r)
}

// Material returns the material of the given shell index.
func (e *EarthModel) Material(i int) Material {
	return e.materialAt(i)
}

// shellFor returns the smallest shell index i with r <= outerRadius(i).
func (e *EarthModel) shellFor(r float64) int {
	for i, s := range e.shells {
		if r <= s.outerRadius {
			return i
		}
	}
	return len(e.shells) - 1
}

const minStep = 1e-3 // meters; §4.A step floor

// Step implements the component-A ray-to-shell-boundary stepper. It
// returns the suggested step length to the next shell boundary and the
// shell index the particle currently occupies (-1 on exit).
//
// chargedLeptons are allowed to continue out to the geostationary shell
// and beyond (up to rMax); neutrinos that leave the atmosphere terminate
// immediately, per spec.md §4.A's policy paragraph.
func (e *EarthModel) Step(position, direction [3]float64, chargedLepton bool) (step float64, shellIndex int) {
	r := Norm(position)
	if r > rMax {
		return 0, -1
	}
	if !chargedLepton && r > atmosphereFloor {
		return 0, -1
	}
	i := e.shellFor(r)
	b := Dot(position, direction)
	outerR := e.shells[i].outerRadius
	radOut := b*b + outerR*outerR - r*r
	if radOut < 0 {
		radOut = 0
	}
	stepOut := math.Sqrt(radOut) - b
	step = stepOut
	if i > 0 && b < 0 {
		innerR := e.shells[i-1].outerRadius
		radIn := b*b + innerR*innerR - r*r
		if radIn >= 0 {
			sIn := -b - math.Sqrt(radIn)
			if sIn < step {
				step = sIn
			}
		}
	}
	if step < minStep {
		step = minStep
	}
	return step, i
}
