// Package pages renders ScholarFlow's server-side HTML as templ components.
package pages

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// htmlWriter accumulates the first write error so components can emit
// markup without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) int(n int) {
	h.raw(strconv.Itoa(n))
}

// attr writes ` name="value"` with value escaped.
func (h *htmlWriter) attr(name, value string) {
	h.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// href writes an href attribute, sanitizing unsafe schemes.
func (h *htmlWriter) href(url string) {
	h.attr("href", string(templ.URL(url)))
}

// link writes an anchor opening in a new tab.
func (h *htmlWriter) link(url, class, label string) {
	h.raw("<a")
	h.href(url)
	if class != "" {
		h.attr("class", class)
	}
	h.raw(` target="_blank" rel="noopener noreferrer">`)
	h.text(label)
	h.raw("</a>")
}

func (h *htmlWriter) render(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

func component(fn func(ctx context.Context, h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		fn(ctx, h)
		return h.err
	})
}

// truncate shortens s to limit runes, appending "..." when cut.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
