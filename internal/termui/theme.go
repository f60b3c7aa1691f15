// Package termui renders the ProofPoint client in a terminal.
package termui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	// Light Mode Colors (Default)
	LightForeground = lipgloss.Color("#1f2937")
	LightPrimary    = lipgloss.Color("#2563eb")
	LightMuted      = lipgloss.Color("#6b7280")
	LightBorder     = lipgloss.Color("#d1d5db")

	// Dark Mode Colors
	DarkForeground = lipgloss.Color("#f3f4f6")
	DarkPrimary    = lipgloss.Color("#60a5fa")
	DarkMuted      = lipgloss.Color("#9ca3af")
	DarkBorder     = lipgloss.Color("#374151")

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#dc2626")
	Success     = lipgloss.Color("#16a34a")
	Warning     = lipgloss.Color("#ca8a04")
	Info        = lipgloss.Color("#2563eb")
)

// Theme holds the current color scheme.
type Theme struct {
	Name       string
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Name:       "light",
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Muted:      LightMuted,
		Border:     LightBorder,
	}
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{
		Name:       "dark",
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// ThemeByName returns the dark theme for "dark" and the light theme otherwise.
func ThemeByName(name string) Theme {
	if name == "dark" {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles holds the styled components for one theme.
type Styles struct {
	Theme Theme

	Header  lipgloss.Style
	Muted   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Card    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
}

// NewStyles builds styles for theme on renderer r.
func NewStyles(r *lipgloss.Renderer, theme Theme) Styles {
	return Styles{
		Theme: theme,
		Header: r.NewStyle().
			Bold(true).
			Foreground(theme.Primary).
			MarginTop(1),
		Muted: r.NewStyle().Foreground(theme.Muted),
		Label: r.NewStyle().Foreground(theme.Muted).Width(22),
		Value: r.NewStyle().Foreground(theme.Foreground).Bold(true),
		Card: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		Success: r.NewStyle().Foreground(Success).Bold(true),
		Warning: r.NewStyle().Foreground(Warning).Bold(true),
		Error:   r.NewStyle().Foreground(Destructive).Bold(true),
		Info:    r.NewStyle().Foreground(Info),
	}
}
