package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorAccent = lipgloss.Color("6")
	colorActive = lipgloss.Color("14")
	colorDim    = lipgloss.Color("241")
	colorOK     = lipgloss.Color("42")
	colorFail   = lipgloss.Color("203")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorDim).
			Padding(0, 1).
			MarginBottom(1)
	levelStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	activeStyle = lipgloss.NewStyle().Foreground(colorActive)
	okStyle     = lipgloss.NewStyle().Foreground(colorOK)
	failStyle   = lipgloss.NewStyle().Foreground(colorFail).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

type stateMark struct {
	glyph string
	style lipgloss.Style
}

// Running agents draw a spinner frame in place of the glyph.
var stateMarks = map[agentState]stateMark{
	statePending: {"○", dimStyle},
	stateRunning: {"", activeStyle},
	stateDone:    {"✓", okStyle},
	stateFailed:  {"✗", failStyle},
}

const logo = ` ██████╗ ██╗   ██╗███╗   ██╗ ██████╗ ████████╗███████╗ █████╗ ███╗   ███╗
 ██╔══██╗╚██╗ ██╔╝████╗  ██║██╔═══██╗╚══██╔══╝██╔════╝██╔══██╗████╗ ████║
 ██║  ██║ ╚████╔╝ ██╔██╗ ██║██║   ██║   ██║   █████╗  ███████║██╔████╔██║
 ██║  ██║  ╚██╔╝  ██║╚██╗██║██║   ██║   ██║   ██╔══╝  ██╔══██║██║╚██╔╝██║
 ██████╔╝   ██║   ██║ ╚████║╚██████╔╝   ██║   ███████╗██║  ██║██║ ╚═╝ ██║
 ╚═════╝    ╚═╝   ╚═╝  ╚═══╝ ╚═════╝    ╚═╝   ╚══════╝╚═╝  ╚═╝╚═╝     ╚═╝`

// Banner returns the dashboard banner with its tagline.
func Banner() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		levelStyle.Render(logo),
		dimStyle.Italic(true).Render(" Agent teams, run in dependency order."),
	) + "\n"
}

// formTheme tints the charm form theme with the dashboard palette.
func formTheme() *huh.Theme {
	t := huh.ThemeCharm()
	t.Focused.Title = t.Focused.Title.Foreground(colorAccent).Bold(true)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(colorOK)
	t.Focused.Description = t.Focused.Description.Foreground(colorDim)
	t.Blurred.Title = t.Blurred.Title.Foreground(colorDim)
	return t
}

// Mark renders the pass or fail glyph used in command output.
func Mark(ok bool) string {
	if ok {
		return okStyle.Render("✓")
	}
	return failStyle.Render("✗")
}

// Dim renders secondary text.
func Dim(s string) string {
	return dimStyle.Render(s)
}
