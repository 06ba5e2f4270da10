package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// ThemeKey is the store key of the persisted theme name.
const ThemeKey = "theme"

const (
	themeDark  = "dark"
	themeLight = "light"
)

type styles struct {
	name     string
	title    lipgloss.Style
	hidden   lipgloss.Style
	revealed lipgloss.Style
	matched  lipgloss.Style
	status   lipgloss.Style
	win      lipgloss.Style
	loss     lipgloss.Style
	errText  lipgloss.Style
	faint    lipgloss.Style
	board    lipgloss.Style
}

var faceColors = []string{"9", "10", "11", "12", "13", "14", "202", "201"}

func newStyles(name string) styles {
	fg, bg, border := lipgloss.Color("252"), lipgloss.Color("236"), lipgloss.Color("240")
	if name == themeLight {
		fg, bg, border = lipgloss.Color("235"), lipgloss.Color("254"), lipgloss.Color("246")
	} else {
		name = themeDark
	}

	card := lipgloss.NewStyle().Padding(0, 1).Margin(0, 1, 0, 0)
	return styles{
		name:     name,
		title:    lipgloss.NewStyle().Bold(true).Foreground(fg),
		hidden:   card.Foreground(fg).Background(bg),
		revealed: card.Bold(true).Background(bg),
		matched:  card.Faint(true).Background(bg),
		status:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		win:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		loss:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		errText:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		faint:    lipgloss.NewStyle().Faint(true),
		board: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.ThickBorder()).
			BorderForeground(border),
	}
}

func (s styles) toggled() styles {
	if s.name == themeDark {
		return newStyles(themeLight)
	}
	return newStyles(themeDark)
}

// face styles a revealed symbol with its pair color.
func (s styles) face(base lipgloss.Style, symbol int) lipgloss.Style {
	return base.Foreground(lipgloss.Color(faceColors[symbol%len(faceColors)]))
}
