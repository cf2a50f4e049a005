package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/Raimer/danton"
)

// runFlags follows a flat-variable-plus-init flag style (flag.StringVar
// et al.), upgraded to pflag's long-flag support for the multi-word
// names §6 specifies.
type runFlags struct {
	cosTheta, cosThetaMin, cosThetaMax      float64
	energy, energyMin, energyMax, energyCut float64
	energyAnalog                            bool
	pemNoSea                                bool
	taus                                    int
	appendOutput                            bool
	grammage                                bool
	outputFile                              string
	pdfFile                                 string

	// Additions beyond spec.md §6's normative flag set, needed to
	// reach backward-mode and flux-mode coverage the distilled CLI
	// surface left implicit (see DESIGN.md).
	backward                    bool
	flux, tauFlux               bool
	longitudinal                bool
	elevationMin, elevationMax  float64
	altitudeMin, altitudeMax    float64
	emitDaughtersAnyMedium      bool
	backwardEnergyCut           float64
}

func registerFlags(cmd *cobra.Command, f *runFlags) {
	fs := cmd.Flags()
	fs.Float64Var(&f.cosTheta, "cos-theta", math.NaN(), "monokinetic cos(theta), shorthand for --cos-theta-min/max")
	fs.Float64Var(&f.cosThetaMin, "cos-theta-min", 0, "lower cos(theta) bound")
	fs.Float64Var(&f.cosThetaMax, "cos-theta-max", 1, "upper cos(theta) bound")
	fs.Float64Var(&f.energy, "energy", math.NaN(), "monokinetic primary energy (GeV), shorthand for --energy-min/max")
	fs.Float64Var(&f.energyMin, "energy-min", 100, "lower primary energy bound (GeV)")
	fs.Float64Var(&f.energyMax, "energy-max", 1e12, "upper primary energy bound (GeV)")
	fs.Float64Var(&f.energyCut, "energy-cut", 1e3, "low-energy transport cut (GeV)")
	fs.BoolVar(&f.energyAnalog, "energy-analog", false, "disable importance-sampling weights (plain analog MC)")
	fs.BoolVar(&f.pemNoSea, "pem-no-sea", false, "alias the sea shell to rock")
	fs.IntVar(&f.taus, "taus", 1, "number of primaries to sample (or grid points, in grammage mode)")
	fs.BoolVar(&f.appendOutput, "append", false, "append to an existing output file instead of truncating it")
	fs.BoolVar(&f.grammage, "grammage", false, "run a grammage scan instead of a decay/flux simulation")
	fs.StringVar(&f.outputFile, "output-file", "danton.out", "output record path")
	fs.StringVar(&f.pdfFile, "pdf-file", "dummy.lhagrid1", "parton distribution file passed to the neutrino engine")

	fs.BoolVar(&f.backward, "backward", false, "run backward (reverse) Monte Carlo instead of forward")
	fs.BoolVar(&f.flux, "flux", false, "emit flux crossings instead of decay records")
	fs.BoolVar(&f.tauFlux, "tau-flux", false, "flux mode: report tau flux instead of neutrino flux")
	fs.BoolVar(&f.longitudinal, "longitudinal", false, "suppress transverse kicks; freeze direction to the primary's")
	fs.Float64Var(&f.elevationMin, "elevation-min", 1, "backward mode: lower detector elevation bound (degrees)")
	fs.Float64Var(&f.elevationMax, "elevation-max", 5, "backward mode: upper detector elevation bound (degrees)")
	fs.Float64Var(&f.altitudeMin, "altitude-min", 0, "lower detector altitude bound (metres); also the flux-detection sphere's altitude")
	fs.Float64Var(&f.altitudeMax, "altitude-max", 0, "backward mode: upper detector altitude bound (metres)")
	fs.BoolVar(&f.emitDaughtersAnyMedium, "emit-daughters-any-medium", false, "forward mode: log decay daughters regardless of medium (default: atmosphere only)")
	fs.Float64Var(&f.backwardEnergyCut, "backward-energy-cut", 1e12, "backward mode: high-energy termination cut (GeV)")
}

// resolveRange applies the spec.md §6 "a single flag is shorthand for a
// monokinetic min=max range" convention shared by --cos-theta and
// --energy.
func resolveRange(single, lo, hi float64) (float64, float64) {
	if !math.IsNaN(single) {
		return single, single
	}
	return lo, hi
}

// pdgArg parses the single positional PDG code argument, restricted to
// the three primaries spec.md §6 accepts.
func pdgArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: expected exactly one positional PDG code argument", danton.ErrFlagCombination)
	}
	var pid int
	if _, err := fmt.Sscanf(args[0], "%d", &pid); err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer PDG code", danton.ErrFlagCombination, args[0])
	}
	switch pid {
	case danton.PDGNuEBar, danton.PDGNuTau, danton.PDGNuTauBar:
		return pid, nil
	default:
		return 0, fmt.Errorf("%w: PDG code %d is not one of {-12, 16, -16}", danton.ErrFlagCombination, pid)
	}
}

// buildSampler turns the parsed flags into an updated, verified
// Sampler, the CLI-to-component-C boundary.
func (f *runFlags) buildSampler() (*danton.Sampler, error) {
	cosLo, cosHi := resolveRange(f.cosTheta, f.cosThetaMin, f.cosThetaMax)
	eLo, eHi := resolveRange(f.energy, f.energyMin, f.energyMax)
	s := &danton.Sampler{
		CosThetaRange:  [2]float64{cosLo, cosHi},
		ElevationRange: [2]float64{f.elevationMin, f.elevationMax},
		AltitudeRange:  [2]float64{f.altitudeMin, f.altitudeMax},
		EnergyRange:    [2]float64{eLo, eHi},
	}
	if err := s.Update(); err != nil {
		return nil, err
	}
	return s, nil
}

// buildContext wires the parsed flags into a fresh, initialised
// Context ready for Run, per component H's lifecycle (§4.H).
func (f *runFlags) buildContext(out *danton.Writer) (*danton.Context, error) {
	ctx, err := danton.NewContext(out)
	if err != nil {
		return nil, err
	}
	ctx.Mode = danton.Mode{
		Forward:          !f.backward,
		LongitudinalOnly: f.longitudinal,
		Grammage:         f.grammage,
		FluxOnly:         f.flux,
		TauFlux:          f.tauFlux,
	}
	if f.grammage && f.flux {
		return nil, fmt.Errorf("%w: --grammage and --flux are mutually exclusive", danton.ErrFlagCombination)
	}
	ctx.EnergyCutLow = f.energyCut
	ctx.EmitDaughtersAnyMedium = f.emitDaughtersAnyMedium
	ctx.BackwardEnergyCut = f.backwardEnergyCut
	ctx.Analog = f.energyAnalog

	sampler, err := f.buildSampler()
	if err != nil {
		ctx.Finalise()
		return nil, err
	}
	if err := ctx.AttachSampler(sampler); err != nil {
		ctx.Finalise()
		return nil, err
	}
	ctx.OverrideSea(f.pemNoSea)

	if err := ctx.Initialise(f.pdfFile); err != nil {
		return nil, err
	}
	return ctx, nil
}
