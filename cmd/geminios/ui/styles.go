// Package ui provides the visual styling for the Gemini OS shell.
package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Dark Mode Colors (default; the OS shell is dark-first)
	DarkBackground = lipgloss.Color("#0b1021")
	DarkForeground = lipgloss.Color("#e2e8f0")
	DarkPrimary    = lipgloss.Color("#a78bfa") // Violet
	DarkAccent     = lipgloss.Color("#22d3ee") // Cyan
	DarkMuted      = lipgloss.Color("#475569")
	DarkBorder     = lipgloss.Color("#1e293b")

	// Light Mode Colors
	LightBackground = lipgloss.Color("#f8fafc")
	LightForeground = lipgloss.Color("#0f172a")
	LightPrimary    = lipgloss.Color("#7c3aed")
	LightAccent     = lipgloss.Color("#0891b2")
	LightMuted      = lipgloss.Color("#94a3b8")
	LightBorder     = lipgloss.Color("#cbd5e1")

	// Semantic colors (same in both modes)
	Destructive = lipgloss.Color("#ef4444")
	Success     = lipgloss.Color("#4ade80")
	Warning     = lipgloss.Color("#facc15")
	TermGreen   = lipgloss.Color("#4ade80")
)

// Theme holds the current color scheme.
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		IsDark:     false,
	}
}

// ThemeFor resolves a configured theme name, falling back to the
// terminal's COLORFGBG hint and finally to dark.
func ThemeFor(name string) Theme {
	switch strings.ToLower(name) {
	case "light":
		return LightTheme()
	case "dark":
		return DarkTheme()
	}
	if fgbg := os.Getenv("COLORFGBG"); fgbg != "" {
		parts := strings.Split(fgbg, ";")
		if len(parts) >= 2 && parts[len(parts)-1] == "15" {
			return LightTheme()
		}
	}
	return DarkTheme()
}

// Styles bundles the lipgloss styles used by the shell views.
type Styles struct {
	Header       lipgloss.Style
	StatusBar    lipgloss.Style
	Tab          lipgloss.Style
	ActiveTab    lipgloss.Style
	UserMsg      lipgloss.Style
	AssistantMsg lipgloss.Style
	SystemAction lipgloss.Style
	TermPrompt   lipgloss.Style
	TermOutput   lipgloss.Style
	FileName     lipgloss.Style
	Error        lipgloss.Style
	Help         lipgloss.Style
}

// NewStyles builds the style set for a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Border),
		StatusBar: lipgloss.NewStyle().
			Foreground(t.Muted),
		Tab: lipgloss.NewStyle().
			Foreground(t.Muted).
			Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Accent).
			Underline(true).
			Padding(0, 1),
		UserMsg: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Accent),
		AssistantMsg: lipgloss.NewStyle().
			Foreground(t.Foreground),
		SystemAction: lipgloss.NewStyle().
			Italic(true).
			Foreground(Warning),
		TermPrompt: lipgloss.NewStyle().
			Bold(true).
			Foreground(TermGreen),
		TermOutput: lipgloss.NewStyle().
			Foreground(TermGreen),
		FileName: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(Destructive),
		Help: lipgloss.NewStyle().
			Faint(true).
			Foreground(t.Muted),
	}
}
