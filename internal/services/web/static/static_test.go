package static

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerServesStylesheet(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	Handler("/static/").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Fatalf("content type = %q", ct)
	}
}

func TestHandlerServesPreviews(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"minimal", "research-focused", "teaching-oriented", "industry-hybrid"} {
		rr := httptest.NewRecorder()
		Handler("/static/").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/previews/"+name+".svg", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want 200", name, rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "image/svg+xml" {
			t.Fatalf("%s: content type = %q", name, ct)
		}
	}
}

func TestHandlerMissingFile(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	Handler("/static/").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/nope.js", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}
