// Rainctl is a command line utility for RainMachine irrigation
// controllers on the local network.
//
// It provides controller discovery, an interactive dashboard, and direct
// commands for zones, programs, watering state, and restrictions. All
// communication goes over the controller's local REST API; no cloud
// account is involved.
//
// Usage:
//
//	rainctl [command] [flags]
//
// Running without arguments launches the interactive dashboard.
// See 'rainctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openirrigation/go-rainmachine/internal/logging"
	"github.com/openirrigation/go-rainmachine/internal/version"
)

func main() {
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rainctl",
	Short: "RainMachine Controller Utility",
	Long: `A standalone utility for RainMachine irrigation controllers.

Provides controller discovery, an interactive dashboard, and direct
commands for zones, programs, watering state, and restrictions over the
controller's local API.

If no command is specified, the interactive dashboard will launch
automatically.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the dashboard when no subcommand given
		return runWizard(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rainctl %s (commit: %s)\n", version.Version, version.Commit)
	},
}
