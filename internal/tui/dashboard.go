package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	rainmachine "github.com/openirrigation/go-rainmachine"
)

const (
	dashboardRequestTimeout = 15 * time.Second
	refreshInterval         = 5 * time.Second

	// manualRunDuration is how long zone starts from the dashboard water
	manualRunDuration = 5 * time.Minute
)

// dashboardDataMsg delivers a state refresh
type dashboardDataMsg struct {
	zones    []rainmachine.Zone
	programs []rainmachine.Program
	err      error
}

// actionDoneMsg reports the outcome of a start/stop action
type actionDoneMsg struct {
	err error
}

// refreshTickMsg triggers a periodic refresh
type refreshTickMsg struct{}

// DashboardModel is the live zone/program dashboard for one authenticated
// controller
type DashboardModel struct {
	Client *rainmachine.Client

	Zones    []rainmachine.Zone
	Programs []rainmachine.Program
	Cursor   int
	Loading  bool
	Err      error

	Width int
}

// NewDashboardModel creates the dashboard for an authenticated client
func NewDashboardModel(client *rainmachine.Client) DashboardModel {
	return DashboardModel{
		Client:  client,
		Loading: true,
	}
}

// Init fetches the first snapshot and starts the refresh ticker
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(fetchDashboard(m.Client), scheduleRefresh())
}

func fetchDashboard(client *rainmachine.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dashboardRequestTimeout)
		defer cancel()

		zones, err := client.Zones.All(ctx, false)
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		programs, err := client.Programs.All(ctx)
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		return dashboardDataMsg{zones: zones, programs: programs}
	}
}

func scheduleRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func runZoneAction(client *rainmachine.Client, action func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dashboardRequestTimeout)
		defer cancel()
		return actionDoneMsg{err: action(ctx)}
	}
}

// Update handles refreshes, navigation, and zone actions
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.Loading = false
		if msg.err != nil {
			m.Err = msg.err
			return m, nil
		}
		m.Err = nil
		m.Zones = msg.zones
		m.Programs = msg.programs
		if m.Cursor >= len(m.Zones) {
			m.Cursor = 0
		}
		return m, nil

	case refreshTickMsg:
		return m, tea.Batch(fetchDashboard(m.Client), scheduleRefresh())

	case actionDoneMsg:
		if msg.err != nil {
			m.Err = msg.err
			return m, nil
		}
		return m, fetchDashboard(m.Client)

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Zones)-1 {
				m.Cursor++
			}
		case "s":
			if m.Cursor < len(m.Zones) {
				client, id := m.Client, m.Zones[m.Cursor].UID
				return m, runZoneAction(client, func(ctx context.Context) error {
					return client.Zones.Start(ctx, id, manualRunDuration)
				})
			}
		case "x":
			if m.Cursor < len(m.Zones) {
				client, id := m.Client, m.Zones[m.Cursor].UID
				return m, runZoneAction(client, func(ctx context.Context) error {
					return client.Zones.Stop(ctx, id)
				})
			}
		case "S":
			client := m.Client
			return m, runZoneAction(client, func(ctx context.Context) error {
				return client.Watering.StopAll(ctx)
			})
		case "r":
			return m, fetchDashboard(m.Client)
		case "q", "esc":
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	var b strings.Builder

	title := m.Client.Name()
	if title == "" {
		title = m.Client.Host()
	}
	b.WriteString(RenderTitle(title))
	b.WriteString("\n")

	if m.Loading {
		b.WriteString("Loading controller state...\n")
		return ContainerStyle.Render(b.String())
	}

	if m.Err != nil {
		b.WriteString(ErrorStyle.Render(rainmachine.ShortErrorMessage(m.Err)))
		b.WriteString("\n\n")
	}

	b.WriteString("Zones\n")
	for i, zone := range m.Zones {
		b.WriteString(m.renderZone(i, zone))
		b.WriteString("\n")
	}

	b.WriteString("\nPrograms\n")
	for _, program := range m.Programs {
		b.WriteString(m.renderProgram(program))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("↑/↓ select • s start 5m • x stop • S stop all • r refresh • q quit"))
	return ContainerStyle.Render(b.String())
}

func (m DashboardModel) renderZone(index int, zone rainmachine.Zone) string {
	marker := "  "
	if index == m.Cursor {
		marker = SelectedStyle.Render("> ")
	}

	label := fmt.Sprintf("%2d. %s", zone.UID, zone.Name)
	switch {
	case !zone.Active:
		label = StatusDisabledStyle.Render(label + " (disabled)")
	case zone.State == rainmachine.ZoneStateWatering:
		remaining := time.Duration(zone.Remaining) * time.Second
		label += StatusWateringStyle.Render(fmt.Sprintf("  ● watering, %s left", remaining.Round(time.Second)))
	case zone.State == rainmachine.ZoneStateQueued:
		label += DimStyle.Render("  queued")
	}

	return marker + label
}

func (m DashboardModel) renderProgram(program rainmachine.Program) string {
	label := fmt.Sprintf("  %2d. %s", program.UID, program.Name)
	switch {
	case !program.Active:
		return StatusDisabledStyle.Render(label + " (disabled)")
	case program.Status == rainmachine.ProgramStatusRunning:
		return label + StatusWateringStyle.Render("  ● running")
	default:
		return label + DimStyle.Render(fmt.Sprintf("  next run %s at %s", program.NextRun, program.StartTime))
	}
}
