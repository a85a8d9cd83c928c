package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	rainmachine "github.com/openirrigation/go-rainmachine"
	"github.com/openirrigation/go-rainmachine/internal/cliconfig"
	"github.com/openirrigation/go-rainmachine/internal/logging"
	"github.com/openirrigation/go-rainmachine/internal/tui"
)

// passwordEnvVar lets scripts supply the controller password without a
// prompt or a flag visible in the process list
const passwordEnvVar = "RAINMACHINE_PASSWORD"

// Command flags
var (
	controllerHost string
	controllerPort int
	password       string
	requestTimeout int
	verifyTLS      bool
	plainHTTP      bool
	outputFormat   string
	scanTimeout    int
	withDetails    bool
)

func init() {
	// Common flags for controller commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&controllerHost, "host", "", "Controller address (skips discovery)")
	rootCmd.PersistentFlags().IntVar(&controllerPort, "port", rainmachine.DefaultPort, "Controller API port")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "Controller password (prompted if not given)")
	rootCmd.PersistentFlags().IntVar(&requestTimeout, "timeout", 10, "Request timeout in seconds")
	rootCmd.PersistentFlags().BoolVar(&verifyTLS, "verify-tls", false, "Verify the controller TLS certificate (off by default, controllers are self-signed)")
	rootCmd.PersistentFlags().BoolVar(&plainHTTP, "http", false, "Use plain HTTP (early firmware only)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "table", "Output format (table, json)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(zonesCmd)
	rootCmd.AddCommand(programsCmd)
	rootCmd.AddCommand(startZoneCmd)
	rootCmd.AddCommand(stopZoneCmd)
	rootCmd.AddCommand(enableZoneCmd)
	rootCmd.AddCommand(disableZoneCmd)
	rootCmd.AddCommand(startProgramCmd)
	rootCmd.AddCommand(stopProgramCmd)
	rootCmd.AddCommand(stopAllCmd)
	rootCmd.AddCommand(rainDelayCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(parsersCmd)
	rootCmd.AddCommand(wizardCmd)
}

// clientOptions translates the persistent flags into client options
func clientOptions() []rainmachine.Option {
	opts := []rainmachine.Option{
		rainmachine.WithPort(controllerPort),
		rainmachine.WithTimeout(time.Duration(requestTimeout) * time.Second),
		rainmachine.WithLogger(logging.GetLogger()),
	}
	if !verifyTLS {
		opts = append(opts, rainmachine.WithInsecureSkipVerify())
	}
	if plainHTTP {
		opts = append(opts, rainmachine.WithoutTLS())
	}
	return opts
}

// resolveClient returns an unauthenticated client, either for the --host
// flag or for the first controller that answers a discovery sweep
func resolveClient(ctx context.Context) (*rainmachine.Client, error) {
	if controllerHost != "" {
		return rainmachine.New(controllerHost, clientOptions()...), nil
	}

	fmt.Println("No controller address specified, scanning the network...")
	client, err := rainmachine.ScanFirst(ctx,
		rainmachine.WithScanTimeout(5*time.Second),
		rainmachine.WithScanClientOptions(clientOptions()...),
	)
	if err != nil {
		return nil, fmt.Errorf("discovery failed (use --host to specify the controller manually): %w", err)
	}

	fmt.Printf("Found controller at %s:%d\n\n", client.Host(), client.Port())
	return client, nil
}

// resolvePassword returns the controller password from the flag, the
// environment, or an interactive prompt
func resolvePassword() (string, error) {
	if password != "" {
		return password, nil
	}
	if env := os.Getenv(passwordEnvVar); env != "" {
		return env, nil
	}

	fmt.Fprint(os.Stderr, "Controller password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}

// connect resolves a controller, authenticates, and records it in the
// user registry for the next run
func connect(ctx context.Context) (*rainmachine.Client, error) {
	client, err := resolveClient(ctx)
	if err != nil {
		return nil, err
	}

	pwd, err := resolvePassword()
	if err != nil {
		return nil, err
	}

	if _, err := client.Authenticate(ctx, pwd); err != nil {
		return nil, err
	}

	if registry, err := cliconfig.LoadRegistry(); err == nil && client.MAC() != "" {
		registry.UpdateLastSeen(client.MAC(), client.Host(), client.Port())
		if controller := registry.GetController(client.MAC()); controller.Nickname == "" {
			registry.SetNickname(client.MAC(), client.Name())
		}
		_ = registry.Save()
	}

	return client, nil
}

func printJSON(value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// scanCmd discovers controllers on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for RainMachine controllers on the network",
	Long: `Scan for RainMachine controllers using mDNS/DNS-SD and the firmware's
UDP discovery probe.

All controllers that answer within the scan window are listed with their
address and port. No password is needed to scan.`,
	Example: `  # Scan for 10 seconds (default)
  rainctl scan

  # Quick 3-second scan
  rainctl scan --scan-timeout 3`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "scan-timeout", 10, "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for RainMachine controllers (timeout: %ds)...\n\n", scanTimeout)

	clients, err := rainmachine.Scan(cmd.Context(),
		rainmachine.WithScanTimeout(time.Duration(scanTimeout)*time.Second),
		rainmachine.WithScanClientOptions(clientOptions()...),
	)
	if err != nil {
		if rainmachine.IsDiscoveryError(err) {
			fmt.Println("No controllers found.")
			fmt.Println("\nTroubleshooting:")
			fmt.Println("  - Ensure the controller is powered on and on the same network")
			fmt.Println("  - Some networks block UDP broadcast; try --host with the address")
			fmt.Println("  - Try increasing --scan-timeout for slower networks")
			return nil
		}
		return fmt.Errorf("scan failed: %w", err)
	}

	fmt.Printf("Found %d controller(s):\n\n", len(clients))
	for i, client := range clients {
		fmt.Printf("%d. %s:%d\n", i+1, client.Host(), client.Port())
	}

	fmt.Println("\nUse 'rainctl status --host <address>' to connect")
	return nil
}

// statusCmd shows controller identity and current state
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show controller identity, restrictions, and diagnostics",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := connect(ctx)
	if err != nil {
		return err
	}

	restrictions, err := client.Restrictions.Current(ctx)
	if err != nil {
		return err
	}
	diag, err := client.Diagnostics.Current(ctx)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return printJSON(map[string]any{
			"identity":     client.Identity(),
			"restrictions": restrictions,
			"diagnostics":  diag,
		})
	}

	identity := client.Identity()
	fmt.Printf("Controller: %s (%s)\n", identity.Name, identity.MAC)
	fmt.Printf("  Address:   %s:%d\n", identity.Host, identity.Port)
	fmt.Printf("  API:       %s\n", identity.APIVersion)
	fmt.Printf("  Hardware:  %s\n", identity.HardwareVersion)
	fmt.Printf("  Firmware:  %s\n", identity.SoftwareVersion)
	fmt.Printf("  Uptime:    %s\n", diag.Uptime)
	fmt.Println()

	if restrictions.RainDelay {
		fmt.Printf("Rain delay active: %s remaining\n",
			(time.Duration(restrictions.RainDelayCounter) * time.Second).Round(time.Minute))
	} else {
		fmt.Println("No rain delay active")
	}
	if restrictions.Freeze {
		fmt.Println("Freeze restriction active")
	}

	return nil
}

// zonesCmd lists zones
var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "List zones and their watering state",
	RunE:  runZones,
}

func init() {
	zonesCmd.Flags().BoolVar(&withDetails, "details", false, "Include advanced zone properties")
}

func runZones(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := connect(ctx)
	if err != nil {
		return err
	}

	zones, err := client.Zones.All(ctx, withDetails)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return printJSON(zones)
	}

	for _, zone := range zones {
		state := "idle"
		switch zone.State {
		case rainmachine.ZoneStateWatering:
			state = fmt.Sprintf("watering (%ds remaining)", zone.Remaining)
		case rainmachine.ZoneStateQueued:
			state = "queued"
		}
		enabled := ""
		if !zone.Active {
			enabled = " [disabled]"
		}
		fmt.Printf("%2d. %-20s %s%s\n", zone.UID, zone.Name, state, enabled)
	}
	return nil
}

// programsCmd lists programs
var programsCmd = &cobra.Command{
	Use:   "programs",
	Short: "List programs and their next run dates",
	RunE:  runPrograms,
}

func runPrograms(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := connect(ctx)
	if err != nil {
		return err
	}

	programs, err := client.Programs.All(ctx)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return printJSON(programs)
	}

	for _, program := range programs {
		state := "idle"
		if program.Status == rainmachine.ProgramStatusRunning {
			state = "running"
		}
		enabled := ""
		if !program.Active {
			enabled = " [disabled]"
		}
		fmt.Printf("%2d. %-20s %s, starts %s, next run %s%s\n",
			program.UID, program.Name, state, program.StartTime, program.NextRun, enabled)
	}
	return nil
}

func parseID(arg, what string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}

// startZoneCmd starts watering one zone
var startZoneCmd = &cobra.Command{
	Use:   "start-zone <id> <minutes>",
	Short: "Start watering a zone for the given number of minutes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "zone")
		if err != nil {
			return err
		}
		minutes, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid duration %q", args[1])
		}

		client, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		if err := client.Zones.Start(cmd.Context(), id, time.Duration(minutes)*time.Minute); err != nil {
			return err
		}
		fmt.Printf("Zone %d started for %d minute(s)\n", id, minutes)
		return nil
	},
}

// stopZoneCmd stops one zone
var stopZoneCmd = &cobra.Command{
	Use:   "stop-zone <id>",
	Short: "Stop watering a zone",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "zone")
		if err != nil {
			return err
		}

		client, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		if err := client.Zones.Stop(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Zone %d stopped\n", id)
		return nil
	},
}

// enableZoneCmd enables a zone
var enableZoneCmd = &cobra.Command{
	Use:   "enable-zone <id>",
	Short: "Enable a zone so programs can water it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "zone")
		if err != nil {
			return err
		}

		client, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		if err := client.Zones.Enable(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Zone %d enabled\n", id)
		return nil
	},
}

// disableZoneCmd disables a zone
var disableZoneCmd = &cobra.Command{
	Use:   "disable-zone <id>",
	Short: "Disable a zone",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "zone")
		if err != nil {
			return err
		}

		client, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		if err := client.Zones.Disable(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Zone %d disabled\n", id)
		return nil
	},
}

// startProgramCmd starts a program
var startProgramCmd = &cobra.Command{
	Use:   "start-program <id>",
	Short: "Start a program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "program")
		if err != nil {
			return err
		}

		client, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		if err := client.Programs.Start(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Program %d started\n", id)
		return nil
	},
}

// stopProgramCmd stops a program
var stopProgramCmd = &cobra.Command{
	Use:   "stop-program <id>",
	Short: "Stop a program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "program")
		if err != nil {
			return err
		}

		client, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		if err := client.Programs.Stop(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Program %d stopped\n", id)
		return nil
	},
}

// stopAllCmd stops all watering
var stopAllCmd = &cobra.Command{
	Use:   "stop-all",
	Short: "Stop all watering immediately",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		if err := client.Watering.StopAll(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("All watering stopped")
		return nil
	},
}

// rainDelayCmd shows or sets the rain delay
var rainDelayCmd = &cobra.Command{
	Use:   "rain-delay [days]",
	Short: "Show the current rain delay, or set it in days (0 clears it)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := connect(ctx)
		if err != nil {
			return err
		}

		if len(args) == 0 {
			delay, err := client.Restrictions.RainDelay(ctx)
			if err != nil {
				return err
			}
			if delay.DelayCounter <= 0 {
				fmt.Println("No rain delay active")
			} else {
				fmt.Printf("Rain delay: %s remaining\n",
					(time.Duration(delay.DelayCounter) * time.Second).Round(time.Minute))
			}
			return nil
		}

		days, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid day count %q", args[0])
		}
		if err := client.Restrictions.SetRainDelay(ctx, days); err != nil {
			return err
		}
		if days == 0 {
			fmt.Println("Rain delay cleared")
		} else {
			fmt.Printf("Rain delay set to %d day(s)\n", days)
		}
		return nil
	},
}

// queueCmd shows the active watering queue
var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show the active watering queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := connect(ctx)
		if err != nil {
			return err
		}

		queue, err := client.Watering.Queue(ctx)
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return printJSON(queue)
		}

		if len(queue) == 0 {
			fmt.Println("Nothing is watering")
			return nil
		}
		for _, entry := range queue {
			source := fmt.Sprintf("program %d", entry.ProgramID)
			if entry.Manual {
				source = "manual"
			}
			fmt.Printf("zone %d (%s): %s remaining\n",
				entry.ZoneID, source, time.Duration(entry.Remaining)*time.Second)
		}
		return nil
	},
}

// logCmd shows the recent watering log
var logCmd = &cobra.Command{
	Use:   "log [days]",
	Short: "Show the watering log for the last days (default 7)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		days := 7
		if len(args) == 1 {
			parsed, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid day count %q", args[0])
			}
			days = parsed
		}

		ctx := cmd.Context()
		client, err := connect(ctx)
		if err != nil {
			return err
		}

		since := time.Now().AddDate(0, 0, -(days - 1))
		entries, err := client.Watering.Log(ctx, since, days, false)
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return printJSON(entries)
		}

		for _, day := range entries {
			fmt.Printf("%s\n", day.Date)
			for _, program := range day.Programs {
				for _, run := range program.Zones {
					fmt.Printf("  program %d, zone %d: %ds watered (scheduled %ds)\n",
						program.ProgramID, run.ZoneID, run.RealDuration, run.UserDuration)
				}
			}
		}
		return nil
	},
}

// parsersCmd lists weather parsers
var parsersCmd = &cobra.Command{
	Use:   "parsers",
	Short: "List the controller's weather data parsers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := connect(ctx)
		if err != nil {
			return err
		}

		parsers, err := client.Parsers.Current(ctx)
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return printJSON(parsers)
		}

		for _, parser := range parsers {
			state := "disabled"
			if parser.Enabled {
				state = "enabled"
			}
			fmt.Printf("%2d. %-30s %s, last run %s\n", parser.UID, parser.Name, state, parser.LastRun)
		}
		return nil
	},
}

// wizardCmd launches the interactive TUI dashboard
var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Launch the interactive dashboard",
	Long: `Launch an interactive TUI for controller discovery and control.

The dashboard provides:
- Network discovery with controller selection
- Password entry
- Live zone and program state with start/stop controls

This is the recommended way to explore a controller interactively.`,
	Example: `  # Launch with auto-discovery
  rainctl wizard
  # Or simply (wizard is default):
  rainctl

  # Launch for a specific controller
  rainctl wizard --host 192.168.1.100`,
	RunE: runWizard,
}

func runWizard(cmd *cobra.Command, args []string) error {
	var model tea.Model

	if controllerHost != "" {
		client := rainmachine.New(controllerHost, clientOptions()...)
		model = tui.NewAppModel(tui.ScreenPassword, client)
	} else {
		model = tui.NewAppModel(tui.ScreenDiscovery, nil)
	}

	p := tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}
