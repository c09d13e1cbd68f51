package content

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Glamour style names accepted by NewRenderer.
const (
	StyleDark  = "dark"
	StyleLight = "light"
	StyleASCII = "ascii"
)

type renderKey struct {
	id      string
	version int
	width   int
}

// Renderer turns markdown bodies into styled terminal text, caching the
// result per document, library version and width.
type Renderer struct {
	style string

	mu    sync.Mutex
	cache map[renderKey]string
}

// NewRenderer returns a renderer using a glamour standard style.
func NewRenderer(style string) *Renderer {
	if style == "" {
		style = StyleDark
	}
	return &Renderer{style: style, cache: make(map[renderKey]string)}
}

// Render renders markdown wrapped to width. If glamour fails the markdown is
// returned as plain text.
func (r *Renderer) Render(id string, version int, markdown string, width int) string {
	width = max(width, 10)
	key := renderKey{id: id, version: version, width: width}

	r.mu.Lock()
	defer r.mu.Unlock()
	if out, ok := r.cache[key]; ok {
		return out
	}

	out, err := r.render(markdown, width)
	if err != nil {
		out = markdown
	}
	out = strings.Trim(out, "\n")

	// Old versions and widths are not coming back once the window moved on.
	for k := range r.cache {
		if k.id == id {
			delete(r.cache, k)
		}
	}
	r.cache[key] = out
	return out
}

func (r *Renderer) render(markdown string, width int) (string, error) {
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := tr.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
