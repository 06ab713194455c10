// Package requestmeta resolves request scheme and origin for cookie and
// cross-site request checks.
package requestmeta

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/louisbranch/scholarflow/internal/platform/logging"
	"go.uber.org/zap"
)

// SchemePolicy controls whether X-Forwarded-Proto is trusted. Only enable it
// behind a proxy that overwrites the header.
type SchemePolicy struct {
	TrustForwardedProto bool
}

// Scheme returns "https" or "http" for r.
func (p SchemePolicy) Scheme(r *http.Request) string {
	if r == nil {
		return "http"
	}
	if p.TrustForwardedProto {
		if forwarded := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))); forwarded == "http" || forwarded == "https" {
			return forwarded
		}
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

// SameOrigin reports whether the Origin header, else the Referer, names the
// request's own scheme, host and port. Requests carrying neither header
// fail.
func (p SchemePolicy) SameOrigin(r *http.Request) bool {
	if r == nil {
		return false
	}
	source := strings.TrimSpace(r.Header.Get("Origin"))
	if source == "" {
		source = strings.TrimSpace(r.Header.Get("Referer"))
	}
	if source == "" || source == "null" {
		return false
	}
	parsed, err := url.Parse(source)
	if err != nil || parsed.Host == "" {
		return false
	}

	scheme := p.Scheme(r)
	if !strings.EqualFold(parsed.Scheme, scheme) {
		return false
	}
	host, port := splitHost(r.Host, scheme)
	originHost, originPort := splitHost(parsed.Host, scheme)
	return host != "" && host == originHost && port == originPort
}

// RequireSameOrigin rejects unsafe methods without a same-origin proof.
func (p SchemePolicy) RequireSameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			if !p.SameOrigin(r) {
				logging.FromContext(r.Context()).Warn("cross-origin request rejected",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("origin", r.Header.Get("Origin")),
				)
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// splitHost lowercases the host and fills the scheme's default port.
func splitHost(raw, scheme string) (string, string) {
	parsed, err := url.Parse("//" + strings.TrimSpace(raw))
	if err != nil {
		return "", ""
	}
	port := parsed.Port()
	if port == "" {
		switch scheme {
		case "https":
			port = "443"
		default:
			port = "80"
		}
	}
	return strings.ToLower(parsed.Hostname()), port
}
