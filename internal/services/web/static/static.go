// Package static embeds the stylesheet and template preview images.
package static

import (
	"embed"
	"net/http"
	"strings"
)

// FS exposes the embedded assets.
//
//go:embed *.css previews/*.svg
var FS embed.FS

// Handler serves FS under prefix with explicit content types and a
// day-long cache lifetime.
func Handler(prefix string) http.Handler {
	files := http.StripPrefix(prefix, http.FileServerFS(FS))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch path := strings.ToLower(r.URL.Path); {
		case strings.HasSuffix(path, ".css"):
			w.Header().Set("Content-Type", "text/css; charset=utf-8")
		case strings.HasSuffix(path, ".svg"):
			w.Header().Set("Content-Type", "image/svg+xml")
		}
		w.Header().Set("Cache-Control", "public, max-age=86400")
		files.ServeHTTP(w, r)
	})
}
