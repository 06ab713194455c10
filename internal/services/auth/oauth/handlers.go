package oauth

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/louisbranch/scholarflow/internal/platform/logging"
	"github.com/louisbranch/scholarflow/internal/services/auth/session"
)

// Sign-in error codes passed back to the sign-in page.
const (
	ErrorAccessDenied  = "AccessDenied"
	ErrorCallback      = "OAuthCallback"
	ErrorNotConfigured = "Configuration"
)

// SignInPath is where failed sign-ins land.
const SignInPath = "/auth/signin"

// ProfileLocator finds the username of the profile owned by userID. found
// is false when the user has no profile yet.
type ProfileLocator func(ctx context.Context, userID string) (username string, found bool, err error)

// Handlers serves the browser side of the ORCID sign-in.
type Handlers struct {
	flow     *Flow
	sessions *session.Manager
	locate   ProfileLocator
}

// NewHandlers builds sign-in handlers. flow may be nil when ORCID
// credentials are not configured.
func NewHandlers(flow *Flow, sessions *session.Manager, locate ProfileLocator) *Handlers {
	return &Handlers{flow: flow, sessions: sessions, locate: locate}
}

// Start redirects to the ORCID authorize endpoint.
func (h *Handlers) Start(w http.ResponseWriter, r *http.Request) {
	if h.flow == nil {
		http.Redirect(w, r, SignInPath+"?error="+ErrorNotConfigured, http.StatusFound)
		return
	}
	authURL, err := h.flow.Start(r.Context(), r.URL.Query().Get("next"))
	if err != nil {
		logging.FromContext(r.Context()).Error("start ORCID sign-in", zap.Error(err))
		http.Redirect(w, r, SignInPath+"?error="+ErrorCallback, http.StatusFound)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback completes the sign-in and sets the session cookie.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logging.FromContext(ctx)
	if h.flow == nil {
		http.Redirect(w, r, SignInPath+"?error="+ErrorNotConfigured, http.StatusFound)
		return
	}

	query := r.URL.Query()
	if errParam := query.Get("error"); errParam != "" {
		log.Info("ORCID sign-in denied", zap.String("error", errParam), zap.String("description", query.Get("error_description")))
		http.Redirect(w, r, SignInPath+"?error="+ErrorAccessDenied, http.StatusFound)
		return
	}

	result, err := h.flow.Complete(ctx, query.Get("code"), query.Get("state"))
	if err != nil {
		level := log.Error
		if errors.Is(err, ErrInvalidState) {
			level = log.Warn
		}
		level("complete ORCID sign-in", zap.Error(err))
		http.Redirect(w, r, SignInPath+"?error="+ErrorCallback, http.StatusFound)
		return
	}

	token, expiresAt, err := h.sessions.Issue(result.User.ID, result.User.ORCIDID)
	if err != nil {
		log.Error("issue session", zap.String("user_id", result.User.ID), zap.Error(err))
		http.Redirect(w, r, SignInPath+"?error="+ErrorCallback, http.StatusFound)
		return
	}
	h.sessions.Write(w, r, token, expiresAt)

	var username string
	if result.Next == "" && h.locate != nil {
		found, ok, err := h.locate(ctx, result.User.ID)
		if err != nil {
			log.Warn("locate profile after sign-in", zap.String("user_id", result.User.ID), zap.Error(err))
		} else if ok {
			username = found
		}
	}
	log.Info("signed in", zap.String("user_id", result.User.ID), zap.String("orcid_id", result.User.ORCIDID))
	http.Redirect(w, r, Destination(result.Next, username), http.StatusFound)
}

// SignOut clears the session cookie and returns home.
func (h *Handlers) SignOut(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w, r)
	http.Redirect(w, r, "/", http.StatusFound)
}
