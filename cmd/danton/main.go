// Command danton drives the particle-transport engine from the command
// line: it builds a Context and a Sampler from flags, runs the
// requested number of events, and reports a summary line on success.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Raimer/danton"
)

func main() {
	f := &runFlags{}
	root := &cobra.Command{
		Use:   "danton <pdg-code>",
		Short: "Monte-Carlo transport of ultra-high-energy neutrinos and tau leptons",
		Long: `danton samples the production and decay of tau leptons generated by
ultra-high-energy neutrinos in a layered spherical Earth, producing
decay records, flux crossings, or a grammage scan depending on the
flags below. The positional argument is the primary neutrino's PDG
code: -12 (nu_e_bar), 16 (nu_tau), or -16 (nu_tau_bar).`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(f, args)
		},
	}
	registerFlags(root, f)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "danton: %v\n", err)
		os.Exit(1)
	}
}

func run(f *runFlags, args []string) error {
	pid0, err := pdgArg(args)
	if err != nil {
		return err
	}

	out, err := danton.NewWriter(f.outputFile, f.appendOutput)
	if err != nil {
		return err
	}
	defer out.Close()

	ctx, err := f.buildContext(out)
	if err != nil {
		return err
	}
	defer ctx.Finalise()

	summary, err := ctx.Run(pid0, f.taus)
	if err != nil {
		ctx.Logger().Log("level", "error", "msg", "run failed", "err", err)
		return err
	}

	ctx.Logger().Log("level", "info", "msg", "run complete",
		"requested", summary.Requested, "produced", summary.Produced)
	return nil
}
