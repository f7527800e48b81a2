package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// renderModalBox wraps modal content in the shared frame. Width is left
// to the content; lipgloss sizes the border to the widest line.
func renderModalBox(content string) string {
	return lipgloss.NewStyle().
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Background(colorModalBg).
		Foreground(colorSurfaceFg).
		Render(content)
}

// renderConfirmModal is the shared yes/no prompt body. The caller wires
// the actual y/n handling; this only draws.
func renderConfirmModal(question, subject string) string {
	var b string
	b = lipgloss.NewStyle().Bold(true).Render(question)
	if subject != "" {
		b += "\n\n" + subject
	}
	b += "\n\n" + styleMuted().Render("y подтвердить  n отмена")
	return b
}
