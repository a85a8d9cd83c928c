package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	rainmachine "github.com/openirrigation/go-rainmachine"
)

// Screen identifies the active screen
type Screen string

const (
	ScreenDiscovery Screen = "discovery"
	ScreenPassword  Screen = "password"
	ScreenDashboard Screen = "dashboard"
)

// Messages for screen transitions
type controllerSelectedMsg struct {
	client *rainmachine.Client
}

type authenticatedMsg struct {
	client *rainmachine.Client
}

// AppModel is the top-level coordinator model that manages screen
// transitions and holds the shared client
type AppModel struct {
	CurrentScreen Screen

	DiscoveryModel DiscoveryModel
	PasswordModel  PasswordModel
	DashboardModel DashboardModel

	// Client for the selected controller; authenticated once the
	// dashboard screen is reached
	Client *rainmachine.Client

	Width  int
	Height int
}

// NewAppModel creates an application model starting at the given screen.
// A client must be supplied when starting at the password screen.
func NewAppModel(startScreen Screen, client *rainmachine.Client) AppModel {
	model := AppModel{
		CurrentScreen: startScreen,
		Client:        client,
	}

	switch startScreen {
	case ScreenDiscovery:
		model.DiscoveryModel = NewDiscoveryModel()
	case ScreenPassword:
		model.PasswordModel = NewPasswordModel(client)
	case ScreenDashboard:
		model.DashboardModel = NewDashboardModel(client)
	}

	return model
}

// Init initializes the starting screen
func (m AppModel) Init() tea.Cmd {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.Init()
	case ScreenPassword:
		return m.PasswordModel.Init()
	case ScreenDashboard:
		return m.DashboardModel.Init()
	default:
		return nil
	}
}

// Update routes messages to the active screen and handles transitions
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.DiscoveryModel.Width = msg.Width
		m.DashboardModel.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case controllerSelectedMsg:
		m.Client = msg.client
		m.CurrentScreen = ScreenPassword
		m.PasswordModel = NewPasswordModel(msg.client)
		return m, m.PasswordModel.Init()

	case authenticatedMsg:
		m.Client = msg.client
		m.CurrentScreen = ScreenDashboard
		m.DashboardModel = NewDashboardModel(msg.client)
		m.DashboardModel.Width = m.Width
		return m, m.DashboardModel.Init()
	}

	var cmd tea.Cmd
	switch m.CurrentScreen {
	case ScreenDiscovery:
		updated, c := m.DiscoveryModel.Update(msg)
		m.DiscoveryModel = updated.(DiscoveryModel)
		cmd = c

	case ScreenPassword:
		updated, c := m.PasswordModel.Update(msg)
		m.PasswordModel = updated.(PasswordModel)
		cmd = c

		// Esc returns to discovery
		if m.PasswordModel.BackRequested {
			m.CurrentScreen = ScreenDiscovery
			m.DiscoveryModel = NewDiscoveryModel()
			return m, m.DiscoveryModel.Init()
		}

	case ScreenDashboard:
		updated, c := m.DashboardModel.Update(msg)
		m.DashboardModel = updated.(DashboardModel)
		cmd = c
	}

	return m, cmd
}

// View renders the active screen
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.View()
	case ScreenPassword:
		return m.PasswordModel.View()
	case ScreenDashboard:
		return m.DashboardModel.View()
	default:
		return "Unknown screen"
	}
}
