package danton

// Element is one entry of the external material description XML of
// spec.md §6 ("Material description"): name, atomic number, atomic
// mass, and mean ionisation energy (eV), the quantities the lepton
// engine's energy-loss tables are built from.
type Element struct {
	Name string
	Z    int
	A    float64 // g/mol
	I    float64 // eV
}

// Compound is a mass-fraction mixture of elements, the unit the
// material description groups elements into.
type Compound struct {
	Name     string
	Elements map[string]float64 // element name -> mass fraction
}

// elementTable is the built-in element set standing in for the
// external XML description of spec.md §6; a production deployment
// loads this from file and populates the same Compound map.
var elementTable = map[string]Element{
	"H":  {Name: "H", Z: 1, A: 1.008, I: 19.2},
	"O":  {Name: "O", Z: 8, A: 15.999, I: 95.0},
	"N":  {Name: "N", Z: 7, A: 14.007, I: 82.0},
	"Si": {Name: "Si", Z: 14, A: 28.085, I: 173.0},
	"Fe": {Name: "Fe", Z: 26, A: 55.845, I: 286.0},
	"Mg": {Name: "Mg", Z: 12, A: 24.305, I: 156.0},
	"Ar": {Name: "Ar", Z: 18, A: 39.948, I: 188.0},
}

// compoundTable maps each Material to the compound the neutrino and
// lepton engines see, standing in for the compound-by-mass-fraction
// section of the external material description.
var compoundTable = map[Material]Compound{
	MaterialRock: {
		Name: "standard-rock",
		Elements: map[string]float64{
			"O": 0.467, "Si": 0.277, "Fe": 0.141, "Mg": 0.115,
		},
	},
	MaterialWater: {
		Name: "water",
		Elements: map[string]float64{
			"O": 0.888, "H": 0.112,
		},
	},
	MaterialAir: {
		Name: "air",
		Elements: map[string]float64{
			"N": 0.755, "O": 0.232, "Ar": 0.013,
		},
	},
	MaterialVacuum: {
		Name:     "vacuum",
		Elements: map[string]float64{},
	},
}

// CompositionOf returns the compound description for a material, used
// by the engine adapters' locals callback to populate an engine's
// scratch record (component D).
func CompositionOf(m Material) Compound {
	return compoundTable[m]
}

// MeanZA returns density-weighted mean (Z, A) for a compound, a crude
// stand-in for the per-element cross-section weighting a real neutrino
// engine performs internally.
func MeanZA(c Compound) (z float64, a float64) {
	for name, frac := range c.Elements {
		e := elementTable[name]
		z += frac * float64(e.Z)
		a += frac * e.A
	}
	return z, a
}
