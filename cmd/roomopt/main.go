// The roomopt command assigns course sections to rooms. Each subcommand is
// one planning variant of the same assignment model; they differ only in
// objectives and bounds.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/internal/assemble"
)

var (
	prefTolerance    = 0.05
	contactTolerance = 0.05
	minResidential   = 0.0
	minPreference    = 0.0
	minContact       = 0.0
	minSameRoom      = 0.0
	weightPref       = 1.0
	weightContact    = 0.001
	weightStability  = 0.0001
)

func main() {
	cmdRoot := &cobra.Command{
		Use:   "roomopt",
		Short: "Course section to room assignment under capacity and delivery-mode constraints",
		Long: "roomopt builds a 0/1 assignment model over eligible (section, room)\n" +
			"pairs and hands it to CP-SAT. Delivery modes and in-person contact\n" +
			"hours follow from room capacity and cohort splitting; each subcommand\n" +
			"optimizes a different planning objective over the same model.",
	}

	cmdDensity := &cobra.Command{
		Use:   "density",
		Short: "place every section while minimizing enrollment-to-capacity load",
		Run: func(cmd *cobra.Command, args []string) {
			runVariant(assemble.Density())
		},
	}
	cmdRoot.AddCommand(cmdDensity)

	cmdContact := &cobra.Command{
		Use:   "contact",
		Short: "maximize weekly in-person contact hours",
		Run: func(cmd *cobra.Command, args []string) {
			runVariant(assemble.Contact())
		},
	}
	cmdRoot.AddCommand(cmdContact)

	cmdPreferences := &cobra.Command{
		Use:   "preferences",
		Short: "maximize delivery-mode preference satisfaction, then contact hours",
		Run: func(cmd *cobra.Command, args []string) {
			runVariant(assemble.PreferenceContact(prefTolerance))
		},
	}
	cmdPreferences.Flags().Float64VarP(&prefTolerance, "tolerance", "t", prefTolerance,
		"relative degradation of the preference optimum accepted for better contact hours")
	cmdRoot.AddCommand(cmdPreferences)

	cmdResidential := &cobra.Command{
		Use:   "residential",
		Short: "maximize preference satisfaction with a residential-delivery floor",
		Run: func(cmd *cobra.Command, args []string) {
			runVariant(assemble.ResidentialEnforced(minResidential))
		},
	}
	cmdResidential.Flags().Float64Var(&minResidential, "min-residential", minResidential,
		"minimum number of sections that must get the residential delivery they asked for")
	cmdRoot.AddCommand(cmdResidential)

	cmdStability := &cobra.Command{
		Use:   "stability",
		Short: "preferences, then contact hours, then minimal disruption",
		Run: func(cmd *cobra.Command, args []string) {
			runVariant(assemble.StabilityPreferenceContact(prefTolerance, contactTolerance))
		},
	}
	cmdStability.Flags().Float64Var(&prefTolerance, "pref-tolerance", prefTolerance,
		"relative degradation accepted at the preference level")
	cmdStability.Flags().Float64Var(&contactTolerance, "contact-tolerance", contactTolerance,
		"relative degradation accepted at the contact-hours level")
	cmdRoot.AddCommand(cmdStability)

	cmdStabilityEnforced := &cobra.Command{
		Use:   "stability-enforced",
		Short: "minimize disruption alone, with preference and residential floors",
		Run: func(cmd *cobra.Command, args []string) {
			runVariant(assemble.StabilityEnforced(minResidential, minPreference))
		},
	}
	cmdStabilityEnforced.Flags().Float64Var(&minResidential, "min-residential", minResidential,
		"minimum residential-preference count")
	cmdStabilityEnforced.Flags().Float64Var(&minPreference, "min-preference", minPreference,
		"minimum preference-satisfaction count")
	cmdRoot.AddCommand(cmdStabilityEnforced)

	cmdNondominated := &cobra.Command{
		Use:   "nondominated",
		Short: "weighted scalarization with lower bounds, for frontier sweeps",
		Run: func(cmd *cobra.Command, args []string) {
			runVariant(assemble.Nondominated(
				weightPref, weightContact, weightStability,
				minPreference, minContact, minSameRoom))
		},
	}
	cmdNondominated.Flags().Float64Var(&weightPref, "w-pref", weightPref, "preference weight")
	cmdNondominated.Flags().Float64Var(&weightContact, "w-contact", weightContact, "contact-hours weight")
	cmdNondominated.Flags().Float64Var(&weightStability, "w-stability", weightStability, "stability weight")
	cmdNondominated.Flags().Float64Var(&minPreference, "min-preference", minPreference, "preference-count lower bound")
	cmdNondominated.Flags().Float64Var(&minContact, "min-contact", minContact, "contact-hours lower bound")
	cmdNondominated.Flags().Float64Var(&minSameRoom, "min-same-room", minSameRoom, "kept-in-room lower bound")
	cmdRoot.AddCommand(cmdNondominated)

	cmdValidate := &cobra.Command{
		Use:   "validate",
		Short: "re-check a written assignment table against the input data",
		Run: func(cmd *cobra.Command, args []string) {
			runValidate()
		},
	}
	cmdRoot.AddCommand(cmdValidate)

	if err := cmdRoot.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
