package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	rainmachine "github.com/openirrigation/go-rainmachine"
)

const authTimeout = 15 * time.Second

// authResultMsg delivers the outcome of an authentication attempt
type authResultMsg struct {
	err error
}

// PasswordModel is the password entry screen for one controller
type PasswordModel struct {
	Client         *rainmachine.Client
	Authenticating bool
	Err            error
	BackRequested  bool

	input textinput.Model
}

// NewPasswordModel creates the password screen for the given controller
func NewPasswordModel(client *rainmachine.Client) PasswordModel {
	input := textinput.New()
	input.Placeholder = "password"
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'
	input.Focus()

	return PasswordModel{
		Client: client,
		input:  input,
	}
}

// Init starts the cursor blink
func (m PasswordModel) Init() tea.Cmd {
	return textinput.Blink
}

// authenticate runs Authenticate in a tea command
func authenticate(client *rainmachine.Client, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
		defer cancel()

		_, err := client.Authenticate(ctx, password)
		return authResultMsg{err: err}
	}
}

// Update handles input and the authentication result
func (m PasswordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case authResultMsg:
		m.Authenticating = false
		if msg.err != nil {
			m.Err = msg.err
			m.input.SetValue("")
			return m, nil
		}
		client := m.Client
		return m, func() tea.Msg { return authenticatedMsg{client: client} }

	case tea.KeyMsg:
		if m.Authenticating {
			return m, nil
		}

		switch msg.String() {
		case "enter":
			if m.input.Value() == "" {
				return m, nil
			}
			m.Authenticating = true
			m.Err = nil
			return m, authenticate(m.Client, m.input.Value())
		case "esc":
			m.BackRequested = true
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the password screen
func (m PasswordModel) View() string {
	var b strings.Builder

	b.WriteString(RenderTitle(fmt.Sprintf("Connect to %s:%d", m.Client.Host(), m.Client.Port())))
	b.WriteString("\n")

	if m.Authenticating {
		b.WriteString("Authenticating...\n")
	} else {
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if m.Err != nil {
			b.WriteString("\n")
			if rainmachine.IsAuthenticationError(m.Err) {
				b.WriteString(ErrorStyle.Render("Wrong password"))
			} else {
				b.WriteString(ErrorStyle.Render(rainmachine.ShortErrorMessage(m.Err)))
			}
			b.WriteString("\n")
		}
		b.WriteString(HelpStyle.Render("enter connect • esc back"))
	}

	return ContainerStyle.Render(b.String())
}
