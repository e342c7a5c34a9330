// Command picrun is the driver binary spec.md §1 places mostly out of
// scope ("the high-level driver loop") but whose entry point — parsing
// positional namelist paths and the test-mode flag, constructing the
// core, and calling into it per §6 — is in scope.
//
// Grounded on arx-os-arxos/cmd/arx/main.go's cobra root-command
// layout (a package-level rootCmd, SilenceUsage/SilenceErrors, a
// single Execute() call from main). The live status display is a
// bubbletea/lipgloss model in the same pairing
// arx-os-arxos/cmd/arx/tui uses, and the optional metrics endpoint
// mirrors arx-os-arxos/arx-backend/gateway/metrics.go's pattern of
// exposing a prometheus registry over plain net/http.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "picrun",
	Short: "picengine — a relativistic electromagnetic particle-in-cell core",
	Long: `picrun drives the picengine PIC core: it accepts one or more
namelist files (only the first is loaded), constructs the
patch/species/field state it describes, and advances the simulation
to completion.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "picrun:", err)
		os.Exit(1)
	}
}
