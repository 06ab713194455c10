package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/louisbranch/scholarflow/internal/platform/requestctx"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T, now time.Time) *Manager {
	t.Helper()
	m, err := NewManager(Config{Secret: testSecret, TTL: time.Hour})
	require.NoError(t, err)
	m.now = func() time.Time { return now }
	return m
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager(Config{Secret: "short"})
	require.Error(t, err)
}

func TestIssueAndParse(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newTestManager(t, now)

	token, expiresAt, err := m.Issue("user-1", "0000-0002-1825-0097")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "0000-0002-1825-0097", claims.ORCIDID)
	assert.True(t, claims.ExpiresAt.Equal(expiresAt))
}

func TestParseRejectsExpiredToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newTestManager(t, now)
	token, _, err := m.Issue("user-1", "")
	require.NoError(t, err)

	m.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = m.Parse(token)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestParseRejectsForeignSignature(t *testing.T) {
	now := time.Now()
	other, err := NewManager(Config{Secret: "ffffffffffffffffffffffffffffffff"})
	require.NoError(t, err)
	token, _, err := other.Issue("user-1", "")
	require.NoError(t, err)

	_, err = newTestManager(t, now).Parse(token)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestManager(t, time.Now()).Parse(raw)
	require.True(t, errors.Is(err, ErrInvalidSession))
}

func TestFromRequestAndMiddleware(t *testing.T) {
	now := time.Now()
	m := newTestManager(t, now)
	token, expiresAt, err := m.Issue("user-1", "")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.Write(rec, httptest.NewRequest(http.MethodGet, "/", nil), token, expiresAt)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.False(t, cookies[0].Secure)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	var seen string
	handler := m.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = requestctx.UserIDFromContext(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "user-1", seen)

	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
	_, ok := m.FromRequest(bad)
	assert.False(t, ok)
}

func TestClearExpiresCookie(t *testing.T) {
	m := newTestManager(t, time.Now())
	m.trustForwardedProto = true
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")

	rec := httptest.NewRecorder()
	m.Clear(rec, req)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.True(t, cookies[0].Secure)
}
