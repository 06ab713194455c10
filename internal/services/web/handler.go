// Package web serves ScholarFlow's pages, JSON API and sign-in routes.
package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/louisbranch/scholarflow/internal/platform/cmd"
	"github.com/louisbranch/scholarflow/internal/platform/logging"
	"github.com/louisbranch/scholarflow/internal/platform/telemetry/metrics"
	"github.com/louisbranch/scholarflow/internal/platform/timeouts"
	"github.com/louisbranch/scholarflow/internal/services/auth/oauth"
	"github.com/louisbranch/scholarflow/internal/services/auth/session"
	"github.com/louisbranch/scholarflow/internal/services/scholar/catalog"
	"github.com/louisbranch/scholarflow/internal/services/scholar/profile"
	"github.com/louisbranch/scholarflow/internal/services/web/api"
	"github.com/louisbranch/scholarflow/internal/services/web/platform/flash"
	"github.com/louisbranch/scholarflow/internal/services/web/platform/httpx"
	"github.com/louisbranch/scholarflow/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/scholarflow/internal/services/web/static"
	"go.uber.org/zap"
)

// Profiles is the profile service behind pages and the API.
type Profiles interface {
	api.Profiles
	Draft(ctx context.Context, userID string) (profile.Profile, error)
}

// Dependencies are the collaborators the web handler routes to.
type Dependencies struct {
	Profiles  Profiles
	Templates *catalog.Catalog
	Sessions  *session.Manager
	SignIn    *oauth.Handlers
	// Uploads serves stored files under /uploads/. Nil disables the route.
	Uploads http.Handler
	Metrics *metrics.Registry
	// Ready reports whether storage is reachable.
	Ready  func(context.Context) error
	Policy requestmeta.SchemePolicy
}

type handler struct {
	profiles  Profiles
	templates *catalog.Catalog
	flash     flash.Writer
}

// NewHandler builds the root HTTP handler.
func NewHandler(deps Dependencies) (http.Handler, error) {
	switch {
	case deps.Profiles == nil:
		return nil, errors.New("profile service is required")
	case deps.Templates == nil:
		return nil, errors.New("template catalog is required")
	case deps.Sessions == nil:
		return nil, errors.New("session manager is required")
	case deps.SignIn == nil:
		return nil, errors.New("sign-in handlers are required")
	}
	h := &handler{
		profiles:  deps.Profiles,
		templates: deps.Templates,
		flash:     flash.Writer{Policy: deps.Policy},
	}

	r := chi.NewRouter()
	r.Use(httpx.RequestID, httpx.RecoverPanic, httpx.AccessLog)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware(cmd.ServiceScholarFlow))
	}
	r.Use(deps.Sessions.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readiness(deps.Ready))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}
	r.Handle("/static/*", static.Handler("/static/"))
	if deps.Uploads != nil {
		r.Handle("/uploads/*", deps.Uploads)
	}

	r.Group(func(r chi.Router) {
		r.Use(deps.Policy.RequireSameOrigin)

		r.Get(oauth.SignInPath, h.signIn)
		r.Get("/auth/signin/orcid", deps.SignIn.Start)
		r.Get("/auth/callback/orcid", deps.SignIn.Callback)
		r.Post("/auth/signout", deps.SignIn.SignOut)

		r.Get("/", h.landing)
		r.Get("/profile/create", h.createForm)
		r.Post("/profile/create", h.createSubmit)
		r.Get("/profile/{username}", h.publicProfile)
		r.Get("/profile/{username}/edit", h.editForm)
		r.Post("/profile/{username}/edit", h.editSubmit)
		r.Post("/profile/{username}/edit/photo", h.photoSubmit)
		r.Post("/profile/{username}/edit/sync", h.syncSubmit)

		r.Route("/api", api.New(deps.Profiles, deps.Templates).Routes)
	})
	r.NotFound(h.notFound)
	return r, nil
}

func readiness(ready func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), timeouts.ReadinessProbe)
			defer cancel()
			if err := ready(ctx); err != nil {
				logging.FromContext(r.Context()).Warn("readiness check failed", zap.Error(err))
				_ = httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
