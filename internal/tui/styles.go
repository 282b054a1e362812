package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Macchiato
var (
	colorText    = lipgloss.Color("#cad3f5")
	colorSubtext = lipgloss.Color("#a5adcb")
	colorGreen   = lipgloss.Color("#a6da95")
	colorYellow  = lipgloss.Color("#eed49f")
	colorRed     = lipgloss.Color("#ed8796")
	colorBlue    = lipgloss.Color("#8aadf4")
	colorSurface = lipgloss.Color("#5b6078")
)

// Styles holds the focus view styles
type Styles struct {
	Frame    lipgloss.Style
	Title    lipgloss.Style
	Clock    lipgloss.Style
	Overtime lipgloss.Style
	Paused   lipgloss.Style
	Running  lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
	Footer   lipgloss.Style
}

func NewStyles() *Styles {
	return &Styles{
		Frame: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface).
			Padding(1, 3),

		Title: lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true).
			MarginBottom(1),

		Clock: lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true),

		Overtime: lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true),

		Paused: lipgloss.NewStyle().
			Foreground(colorYellow),

		Running: lipgloss.NewStyle().
			Foreground(colorGreen),

		Status: lipgloss.NewStyle().
			Foreground(colorSubtext).
			Italic(true),

		Error: lipgloss.NewStyle().
			Foreground(colorRed),

		Footer: lipgloss.NewStyle().
			Foreground(colorSubtext).
			MarginTop(1),
	}
}
