package tui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle renders screen titles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	// SelectedStyle highlights the focused list row
	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	// DimStyle renders secondary information
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	// ErrorStyle renders error messages
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	// StatusWateringStyle marks zones that are actively watering
	StatusWateringStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("45"))

	// StatusDisabledStyle marks disabled zones and programs
	StatusDisabledStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Strikethrough(true)

	// HelpStyle renders the key hint bar
	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	// ContainerStyle wraps each screen
	ContainerStyle = lipgloss.NewStyle().
			Padding(1, 2)
)

// RenderTitle renders a screen title
func RenderTitle(title string) string {
	return TitleStyle.Render(title)
}
