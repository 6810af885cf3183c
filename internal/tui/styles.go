package tui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

var (
	activeMark   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
	inactiveMark = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("·")

	listTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("250")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("203")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)
)

// renderStatusBar renders the top line: either the last error or a window
// count.
func renderStatusBar(count int, err error, width int) string {
	if err != nil {
		return errorStyle.Width(width).Render("error: " + err.Error())
	}
	noun := "windows"
	if count == 1 {
		noun = "window"
	}
	return statusStyle.Width(width).Render(activeMark + " " + strconv.Itoa(count) + " " + noun)
}

func renderHelpBar(width int) string {
	return helpStyle.Width(width).Render("enter: focus  /: filter  r: refresh  q/esc: quit")
}
