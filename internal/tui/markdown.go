package tui

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"doctrack-cli/internal/docs"
)

var (
	mdRendererMu sync.Mutex
	// Cache renderers by wrap width + style. WithAutoStyle can trigger
	// terminal capability queries that block on some terminals, so the
	// style is picked once from the environment instead.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

func markdownStyle() string {
	if os.Getenv("DOCTRACK_TUI_THEME") == "light" {
		return "light"
	}
	return "dark"
}

func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	style := markdownStyle()
	key := style + ":" + strconv.Itoa(width)

	mdRendererMu.Lock()
	r := mdRenderers[key]
	mdRendererMu.Unlock()

	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRendererMu.Lock()
		if existing := mdRenderers[key]; existing != nil {
			r = existing
		} else {
			mdRenderers[key] = rr
			r = rr
		}
		mdRendererMu.Unlock()
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// renderHelpMarkdown renders the keybinding help topic for the help modal.
func renderHelpMarkdown(width int) string {
	md, ok := docs.Get("keys")
	if !ok {
		return "справка недоступна"
	}
	wrap := width - 8
	if wrap > 72 {
		wrap = 72
	}
	return renderMarkdown(md, wrap)
}
