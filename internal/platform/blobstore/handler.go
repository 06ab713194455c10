package blobstore

import (
	"errors"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/louisbranch/scholarflow/internal/platform/logging"
	"go.uber.org/zap"
)

// inlineTypes are rendered by the browser; every other blob is a download.
var inlineTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Handler serves blobs by key taken from the request path after prefix.
// Only allowlisted images render inline and the browser may not sniff.
func Handler(store Store, prefix string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		key := strings.TrimPrefix(r.URL.Path, prefix)
		if _, err := CleanKey(key); err != nil {
			http.NotFound(w, r)
			return
		}
		obj, err := store.Get(r.Context(), key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			logging.FromContext(r.Context()).Error("read upload", zap.String("key", key), zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		header := w.Header()
		contentType, _, _ := mime.ParseMediaType(obj.ContentType)
		if !inlineTypes[contentType] {
			if contentType != "application/pdf" {
				contentType = "application/octet-stream"
			}
			header.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(key)}))
		}
		header.Set("Content-Type", contentType)
		header.Set("X-Content-Type-Options", "nosniff")
		header.Set("Content-Security-Policy", "default-src 'none'; sandbox")
		header.Set("Cache-Control", "public, max-age=31536000, immutable")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write(obj.Data)
		}
	})
}
