package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
// - Default (white/black): Primary text
// - Accent (soft purple #A78BFA): Highlights, titles, interactive elements
// - Muted (gray): Secondary info
// - No colored success/error/warning - use unicode symbols only

var (
	// Accent style for titles, object references, highlights
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA"))

	// Muted style for secondary info and hints
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().Bold(true)

	// AccentBold combines accent color with bold
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA")).Bold(true)
)

// ConfigureTheme overrides the accent color from config. Accepts ANSI color
// codes ("0" to "255") or hex colors ("#RRGGBB"); anything else is ignored.
func ConfigureTheme(accent string) {
	accent = strings.TrimSpace(accent)
	if accent == "" || !validColor(accent) {
		return
	}
	color := lipgloss.Color(accent)
	Accent = Accent.Foreground(color)
	AccentBold = AccentBold.Foreground(color)
}

func validColor(s string) bool {
	if strings.HasPrefix(s, "#") {
		return len(s) == 7
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0 && len(s) <= 3
}
