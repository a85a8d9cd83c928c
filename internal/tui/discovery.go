package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	rainmachine "github.com/openirrigation/go-rainmachine"
)

const discoveryScanWindow = 10 * time.Second

// scanResultMsg delivers the outcome of a network sweep
type scanResultMsg struct {
	clients []*rainmachine.Client
	err     error
}

// DiscoveryModel is the controller discovery screen
type DiscoveryModel struct {
	Scanning bool
	Clients  []*rainmachine.Client
	Cursor   int
	Err      error

	Width int

	spinner spinner.Model
}

// NewDiscoveryModel creates the discovery screen
func NewDiscoveryModel() DiscoveryModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SelectedStyle
	return DiscoveryModel{
		Scanning: true,
		spinner:  s,
	}
}

// Init starts the spinner and kicks off the first scan
func (m DiscoveryModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, runScan())
}

// runScan sweeps the network in a tea command
func runScan() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), discoveryScanWindow)
		defer cancel()

		clients, err := rainmachine.Scan(ctx,
			rainmachine.WithScanTimeout(discoveryScanWindow),
			rainmachine.WithScanClientOptions(rainmachine.WithInsecureSkipVerify()),
		)
		return scanResultMsg{clients: clients, err: err}
	}
}

// Update handles scan results and list navigation
func (m DiscoveryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.Scanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case scanResultMsg:
		m.Scanning = false
		m.Cursor = 0
		if msg.err != nil {
			m.Err = msg.err
			m.Clients = nil
			return m, nil
		}
		m.Err = nil
		m.Clients = msg.clients
		return m, nil

	case tea.KeyMsg:
		if m.Scanning {
			return m, nil
		}

		switch msg.String() {
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Clients)-1 {
				m.Cursor++
			}
		case "enter":
			if m.Cursor < len(m.Clients) {
				client := m.Clients[m.Cursor]
				return m, func() tea.Msg { return controllerSelectedMsg{client: client} }
			}
		case "r":
			m.Scanning = true
			m.Err = nil
			m.Clients = nil
			return m, tea.Batch(m.spinner.Tick, runScan())
		case "q", "esc":
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the discovery screen
func (m DiscoveryModel) View() string {
	var b strings.Builder

	b.WriteString(RenderTitle("RainMachine Controllers"))
	b.WriteString("\n")

	switch {
	case m.Scanning:
		b.WriteString(fmt.Sprintf("%s Scanning the network...\n", m.spinner.View()))

	case m.Err != nil:
		b.WriteString(ErrorStyle.Render("No controllers found"))
		b.WriteString("\n\n")
		b.WriteString(DimStyle.Render("Check that the controller is powered on and on this network."))
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("r rescan • q quit"))

	default:
		for i, client := range m.Clients {
			line := fmt.Sprintf("%s:%d", client.Host(), client.Port())
			if i == m.Cursor {
				b.WriteString(SelectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString(HelpStyle.Render("↑/↓ select • enter connect • r rescan • q quit"))
	}

	return ContainerStyle.Render(b.String())
}
