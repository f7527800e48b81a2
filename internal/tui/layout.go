package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane pads or cuts a styled line to exactly width cells,
// measuring display width rather than bytes so ANSI sequences and
// wide runes do not skew the layout.
func normalizePane(line string, width int) string {
	if width <= 0 {
		return line
	}
	w := xansi.StringWidth(line)
	if w < width {
		return line + strings.Repeat(" ", width-w)
	}
	if w > width {
		return xansi.Cut(line, 0, width)
	}
	return line
}
