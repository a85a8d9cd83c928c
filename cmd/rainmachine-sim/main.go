// Rainmachine-sim is a local RainMachine controller simulator.
//
// It serves the controller's REST API over plain HTTP and answers the UDP
// discovery probe, so clients and tooling can be exercised without a real
// device. State (zones, programs, rain delay) is held in memory and
// mutated by the same actions real firmware accepts.
//
// Usage:
//
//	rainmachine-sim serve [flags]
//
// See 'rainmachine-sim serve --help' for available options.
package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openirrigation/go-rainmachine/internal/discovery"
	"github.com/openirrigation/go-rainmachine/internal/logging"
	"github.com/openirrigation/go-rainmachine/internal/simulator"
	"github.com/openirrigation/go-rainmachine/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rainmachine-sim",
	Short: "RainMachine Controller Simulator",
	Long: `A standalone simulator for the RainMachine local API.

Serves the controller REST API with in-memory zone and program state and
answers UDP discovery probes, so rainctl and library clients can be tested
without hardware.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command flags
var (
	listenPort   int
	simPassword  string
	simName      string
	answerProbes bool
	logLevel     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the simulated controller",
	Example: `  # Start on the real controller port
  rainmachine-sim serve

  # Custom port and password
  rainmachine-sim serve --port 18080 --password hunter2

  # Without discovery probe answers
  rainmachine-sim serve --no-probe`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&listenPort, "port", 8080, "Port to serve the API on")
	serveCmd.Flags().StringVar(&simPassword, "password", simulator.DefaultPassword, "Controller password")
	serveCmd.Flags().StringVar(&simName, "name", simulator.DefaultName, "Controller name")
	serveCmd.Flags().BoolVar(&answerProbes, "probe", true, "Answer UDP discovery probes")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	defer logging.Sync()

	controller := simulator.New()
	controller.Password = simPassword
	controller.Name = simName

	addr := net.JoinHostPort("", strconv.Itoa(listenPort))
	apiURL := fmt.Sprintf("http://127.0.0.1:%d", listenPort)

	if answerProbes {
		responder := simulator.NewProbeResponder(simName, controller.MAC, apiURL)
		probeAddr, err := responder.StartOn(&net.UDPAddr{Port: discovery.ProbePort})
		if err != nil {
			return fmt.Errorf("failed to start probe responder: %w", err)
		}
		defer responder.Close()
		logging.Info("answering discovery probes", zap.String("addr", probeAddr))
	}

	logging.Info("simulated controller listening",
		zap.Int("port", listenPort),
		zap.String("name", simName))
	fmt.Printf("Simulated controller %q serving on %s (password: %s)\n", simName, apiURL, simPassword)

	server := &http.Server{
		Addr:    addr,
		Handler: controller.Handler(),
	}
	return server.ListenAndServe()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rainmachine-sim %s (commit: %s)\n", version.Version, version.Commit)
	},
}
