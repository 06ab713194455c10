package oauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	apperrors "github.com/louisbranch/scholarflow/internal/platform/errors"
	"github.com/louisbranch/scholarflow/internal/platform/logging"
	"github.com/louisbranch/scholarflow/internal/platform/timeouts"
	"github.com/louisbranch/scholarflow/internal/services/auth/storage"
	"github.com/louisbranch/scholarflow/internal/services/auth/user"
)

var (
	// ErrNotConfigured is returned when ORCID credentials are missing.
	ErrNotConfigured = errors.New("ORCID sign-in is not configured")
	// ErrInvalidState indicates an unknown, reused, or expired state.
	ErrInvalidState = apperrors.New(apperrors.CodeInvalidInput, "Invalid sign-in state")
	// ErrExchange indicates the token exchange failed.
	ErrExchange = apperrors.New(apperrors.CodeUnauthenticated, "ORCID sign-in failed")
)

// Result is a completed sign-in.
type Result struct {
	User user.User
	Next string
}

// Flow runs the ORCID authorization-code exchange.
type Flow struct {
	cfg        Config
	oauth      *oauth2.Config
	states     storage.StateStore
	users      storage.UserStore
	httpClient *http.Client
	clock      func() time.Time
	newState   func() (string, error)
}

// Option configures a Flow.
type Option func(*Flow)

// WithHTTPClient sets the client used for the token exchange.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Flow) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(f *Flow) {
		if clock != nil {
			f.clock = clock
		}
	}
}

// NewFlow builds a Flow. It fails when credentials are missing.
func NewFlow(cfg Config, states storage.StateStore, users storage.UserStore, opts ...Option) (*Flow, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	if states == nil || users == nil {
		return nil, errors.New("oauth stores are required")
	}
	cfg = cfg.withDefaults()
	f := &Flow{
		cfg:        cfg,
		oauth:      cfg.oauth2Config(),
		states:     states,
		users:      users,
		httpClient: &http.Client{Timeout: timeouts.OAuthExchange},
		clock:      time.Now,
		newState:   generateState,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Start records a pending sign-in and returns the ORCID authorize URL.
// next is kept only when it is a same-site path.
func (f *Flow) Start(ctx context.Context, next string) (string, error) {
	state, err := f.newState()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	verifier := oauth2.GenerateVerifier()
	if err := f.states.PutState(ctx, storage.SignInState{
		State:        state,
		CodeVerifier: verifier,
		Next:         SafeNext(next),
		ExpiresAt:    f.clock().UTC().Add(f.cfg.StateTTL),
	}); err != nil {
		return "", err
	}
	return f.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)), nil
}

// Complete consumes state, exchanges code and upserts the user.
func (f *Flow) Complete(ctx context.Context, code, state string) (Result, error) {
	code = strings.TrimSpace(code)
	state = strings.TrimSpace(state)
	if code == "" || state == "" {
		return Result{}, ErrInvalidState
	}

	pending, err := f.states.TakeState(ctx, state)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Result{}, ErrInvalidState
		}
		return Result{}, err
	}
	if !pending.ExpiresAt.After(f.clock().UTC()) {
		return Result{}, ErrInvalidState
	}

	exchangeCtx := context.WithValue(ctx, oauth2.HTTPClient, f.httpClient)
	token, err := f.oauth.Exchange(exchangeCtx, code, oauth2.VerifierOption(pending.CodeVerifier))
	if err != nil {
		logging.FromContext(ctx).Warn("exchange ORCID code", zap.Error(err))
		return Result{}, apperrors.Wrap(ErrExchange.Code, ErrExchange.Message, err)
	}

	signIn, err := user.NormalizeSignIn(user.SignIn{
		ORCIDID:      extraString(token, "orcid"),
		Name:         extraString(token, "name"),
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	})
	if err != nil {
		return Result{}, err
	}

	var existing *user.User
	found, err := f.users.GetUserByORCID(ctx, signIn.ORCIDID)
	switch {
	case err == nil:
		existing = &found
	case errors.Is(err, storage.ErrNotFound):
	default:
		return Result{}, err
	}

	u, err := user.FromSignIn(existing, signIn, f.clock, nil)
	if err != nil {
		return Result{}, err
	}
	if err := f.users.PutUser(ctx, u); err != nil {
		return Result{}, err
	}
	return Result{User: u, Next: pending.Next}, nil
}

// CleanupExpired deletes expired pending states.
func (f *Flow) CleanupExpired(ctx context.Context) {
	deleted, err := f.states.DeleteExpiredStates(ctx, f.clock().UTC())
	if err != nil {
		logging.FromContext(ctx).Warn("delete expired sign-in states", zap.Error(err))
		return
	}
	if deleted > 0 {
		logging.FromContext(ctx).Debug("deleted expired sign-in states", zap.Int64("count", deleted))
	}
}

// StartCleanup periodically deletes expired states until ctx is done.
func (f *Flow) StartCleanup(ctx context.Context, interval time.Duration) {
	if f == nil || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				f.CleanupExpired(ctx)
			}
		}
	}()
}

func extraString(token *oauth2.Token, key string) string {
	if token == nil {
		return ""
	}
	value, _ := token.Extra(key).(string)
	return strings.TrimSpace(value)
}

func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
