// Package session issues and verifies the signed ScholarFlow session cookie.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/scholarflow/internal/platform/errors"
	"github.com/louisbranch/scholarflow/internal/platform/requestctx"
)

// CookieName is the session cookie name.
const CookieName = "scholarflow_session"

const (
	issuer        = "scholarflow"
	minSecretSize = 16
)

// ErrInvalidSession is returned for missing, malformed, or expired tokens.
var ErrInvalidSession = apperrors.New(apperrors.CodeUnauthenticated, "Unauthorized")

// Config controls session signing and cookie attributes.
type Config struct {
	Secret              string        `env:"SCHOLARFLOW_SESSION_SECRET"`
	TTL                 time.Duration `env:"SCHOLARFLOW_SESSION_TTL" envDefault:"720h"`
	TrustForwardedProto bool          `env:"SCHOLARFLOW_TRUST_FORWARDED_PROTO"`
}

// Claims are the verified contents of a session token.
type Claims struct {
	UserID    string
	ORCIDID   string
	ExpiresAt time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
	ORCIDID string `json:"orcid"`
}

// Manager signs session tokens with HS256.
type Manager struct {
	secret              []byte
	ttl                 time.Duration
	trustForwardedProto bool
	now                 func() time.Time
}

// NewManager validates cfg and builds a Manager.
func NewManager(cfg Config) (*Manager, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if len(secret) < minSecretSize {
		return nil, fmt.Errorf("SCHOLARFLOW_SESSION_SECRET must be at least %d bytes", minSecretSize)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Manager{
		secret:              []byte(secret),
		ttl:                 ttl,
		trustForwardedProto: cfg.TrustForwardedProto,
		now:                 time.Now,
	}, nil
}

// Issue signs a session for a user.
func (m *Manager) Issue(userID, orcidID string) (string, time.Time, error) {
	if strings.TrimSpace(userID) == "" {
		return "", time.Time{}, errors.New("user id is required")
	}
	now := m.now().UTC()
	expiresAt := now.Add(m.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		ORCIDID: orcidID,
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies a session token. Any failure yields ErrInvalidSession.
func (m *Manager) Parse(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, ErrInvalidSession
	}
	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeUnauthenticated, ErrInvalidSession.Message, err)
	}
	if strings.TrimSpace(parsed.Subject) == "" {
		return Claims{}, ErrInvalidSession
	}
	return Claims{
		UserID:    parsed.Subject,
		ORCIDID:   parsed.ORCIDID,
		ExpiresAt: parsed.ExpiresAt.Time.UTC(),
	}, nil
}

// FromRequest resolves the session cookie. Invalid sessions read as signed
// out.
func (m *Manager) FromRequest(r *http.Request) (Claims, bool) {
	if r == nil {
		return Claims{}, false
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie == nil {
		return Claims{}, false
	}
	claims, err := m.Parse(cookie.Value)
	if err != nil {
		return Claims{}, false
	}
	return claims, true
}

// Write sets the session cookie.
func (m *Manager) Write(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    strings.TrimSpace(token),
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   m.isHTTPS(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.isHTTPS(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// Middleware stores the signed-in user id on the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := m.FromRequest(r); ok {
			r = r.WithContext(requestctx.WithUserID(r.Context(), claims.UserID))
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Manager) isHTTPS(r *http.Request) bool {
	if r == nil {
		return false
	}
	if m.trustForwardedProto && strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https") {
		return true
	}
	return r.TLS != nil
}
