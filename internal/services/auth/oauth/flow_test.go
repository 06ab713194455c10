package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/louisbranch/scholarflow/internal/services/auth/session"
	"github.com/louisbranch/scholarflow/internal/services/auth/storage/sqlite"
)

const testORCID = "0000-0002-1825-0097"

type flowFixture struct {
	flow  *Flow
	store *sqlite.Store
	now   time.Time
}

func newFlowFixture(t *testing.T) *flowFixture {
	t.Helper()
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "good-code" || r.PostForm.Get("code_verifier") == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		assert.Equal(t, "client", r.PostForm.Get("client_id"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access",
			"token_type":    "bearer",
			"refresh_token": "refresh",
			"expires_in":    3600,
			"scope":         "/authenticate",
			"name":          "Ada Lovelace",
			"orcid":         testORCID,
		})
	}))
	t.Cleanup(tokenServer.Close)

	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	fx := &flowFixture{store: store, now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	flow, err := NewFlow(Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/auth/callback/orcid",
		AuthURL:      "https://orcid.example/oauth/authorize",
		TokenURL:     tokenServer.URL,
		StateTTL:     time.Minute,
	}, store, store, WithHTTPClient(tokenServer.Client()), WithClock(func() time.Time { return fx.now }))
	require.NoError(t, err)
	fx.flow = flow
	return fx
}

func stateFromURL(t *testing.T, raw string) url.Values {
	t.Helper()
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	return parsed.Query()
}

func TestNewFlowRequiresCredentials(t *testing.T) {
	_, err := NewFlow(Config{}, nil, nil)
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestStartBuildsAuthorizeURL(t *testing.T) {
	fx := newFlowFixture(t)
	authURL, err := fx.flow.Start(context.Background(), "/profile/edit")
	require.NoError(t, err)

	query := stateFromURL(t, authURL)
	assert.Equal(t, "client", query.Get("client_id"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "/authenticate /read-limited", query.Get("scope"))
	assert.Equal(t, "S256", query.Get("code_challenge_method"))
	assert.NotEmpty(t, query.Get("code_challenge"))
	assert.NotEmpty(t, query.Get("state"))
}

func TestCompleteCreatesUserOnce(t *testing.T) {
	fx := newFlowFixture(t)
	ctx := context.Background()
	authURL, err := fx.flow.Start(ctx, "/profile/edit")
	require.NoError(t, err)
	state := stateFromURL(t, authURL).Get("state")

	result, err := fx.flow.Complete(ctx, "good-code", state)
	require.NoError(t, err)
	assert.Equal(t, testORCID, result.User.ORCIDID)
	assert.Equal(t, "Ada Lovelace", result.User.Name)
	assert.Equal(t, "access", result.User.AccessToken)
	assert.Equal(t, "/profile/edit", result.Next)

	stored, err := fx.store.GetUserByORCID(ctx, testORCID)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, stored.ID)

	_, err = fx.flow.Complete(ctx, "good-code", state)
	require.ErrorIs(t, err, ErrInvalidState)

	authURL, err = fx.flow.Start(ctx, "")
	require.NoError(t, err)
	again, err := fx.flow.Complete(ctx, "good-code", stateFromURL(t, authURL).Get("state"))
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, again.User.ID)
}

func TestCompleteRejectsExpiredState(t *testing.T) {
	fx := newFlowFixture(t)
	authURL, err := fx.flow.Start(context.Background(), "")
	require.NoError(t, err)

	fx.now = fx.now.Add(2 * time.Minute)
	_, err = fx.flow.Complete(context.Background(), "good-code", stateFromURL(t, authURL).Get("state"))
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestCompleteReportsExchangeFailure(t *testing.T) {
	fx := newFlowFixture(t)
	authURL, err := fx.flow.Start(context.Background(), "")
	require.NoError(t, err)

	_, err = fx.flow.Complete(context.Background(), "bad-code", stateFromURL(t, authURL).Get("state"))
	require.ErrorIs(t, err, ErrExchange)
}

func TestCleanupExpired(t *testing.T) {
	fx := newFlowFixture(t)
	ctx := context.Background()
	_, err := fx.flow.Start(ctx, "")
	require.NoError(t, err)

	fx.now = fx.now.Add(time.Hour)
	fx.flow.CleanupExpired(ctx)

	var count int
	require.NoError(t, fx.store.DB().QueryRow(`SELECT COUNT(*) FROM signin_states`).Scan(&count))
	assert.Zero(t, count)
}

func TestCallbackHandler(t *testing.T) {
	fx := newFlowFixture(t)
	sessions, err := session.NewManager(session.Config{Secret: "0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)

	located := ""
	handlers := NewHandlers(fx.flow, sessions, func(_ context.Context, userID string) (string, bool, error) {
		return located, located != "", nil
	})

	callback := func(t *testing.T) *httptest.ResponseRecorder {
		t.Helper()
		start := httptest.NewRecorder()
		handlers.Start(start, httptest.NewRequest(http.MethodGet, "/auth/signin/orcid", nil))
		require.Equal(t, http.StatusFound, start.Code)
		state := stateFromURL(t, start.Header().Get("Location")).Get("state")

		rec := httptest.NewRecorder()
		handlers.Callback(rec, httptest.NewRequest(http.MethodGet, "/auth/callback/orcid?code=good-code&state="+state, nil))
		return rec
	}

	rec := callback(t)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile/create", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	claims, err := sessions.Parse(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, testORCID, claims.ORCIDID)

	located = "ada-lovelace"
	rec = callback(t)
	assert.Equal(t, "/profile/ada-lovelace", rec.Header().Get("Location"))
}

func TestCallbackHandlerErrors(t *testing.T) {
	fx := newFlowFixture(t)
	sessions, err := session.NewManager(session.Config{Secret: "0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)
	handlers := NewHandlers(fx.flow, sessions, nil)

	rec := httptest.NewRecorder()
	handlers.Callback(rec, httptest.NewRequest(http.MethodGet, "/auth/callback/orcid?error=access_denied", nil))
	assert.Equal(t, SignInPath+"?error="+ErrorAccessDenied, rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	handlers.Callback(rec, httptest.NewRequest(http.MethodGet, "/auth/callback/orcid?code=x&state=unknown", nil))
	assert.Equal(t, SignInPath+"?error="+ErrorCallback, rec.Header().Get("Location"))
	assert.Empty(t, rec.Result().Cookies())

	disabled := NewHandlers(nil, sessions, nil)
	rec = httptest.NewRecorder()
	disabled.Start(rec, httptest.NewRequest(http.MethodGet, "/auth/signin/orcid", nil))
	assert.Equal(t, SignInPath+"?error="+ErrorNotConfigured, rec.Header().Get("Location"))
}

func TestSignOutClearsCookie(t *testing.T) {
	sessions, err := session.NewManager(session.Config{Secret: "0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	NewHandlers(nil, sessions, nil).SignOut(rec, httptest.NewRequest(http.MethodPost, "/auth/signout", nil))
	assert.Equal(t, "/", rec.Header().Get("Location"))
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}
