// Package api serves the JSON endpoints under /api.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/louisbranch/scholarflow/internal/platform/requestctx"
	"github.com/louisbranch/scholarflow/internal/services/scholar/app"
	"github.com/louisbranch/scholarflow/internal/services/scholar/catalog"
	"github.com/louisbranch/scholarflow/internal/services/scholar/profile"
)

// maxJSONBytes caps profile request bodies.
const maxJSONBytes = 1 << 20

// Fallback messages for unexpected failures.
const (
	msgInternal      = "Internal server error"
	msgFetchProfile  = "Failed to fetch profile"
	msgUpdateProfile = "Failed to update profile"
	msgDeleteProfile = "Failed to delete profile"
	msgUpload        = "Failed to upload file"
	msgFetchWorks    = "Failed to fetch ORCID works"
	msgSync          = "Failed to sync ORCID publications"
)

// Profiles is the profile service the API calls.
type Profiles interface {
	CurrentProfile(ctx context.Context, userID string) (*profile.Profile, error)
	CreateProfile(ctx context.Context, userID string, input profile.Profile) (profile.Profile, error)
	UpdateProfile(ctx context.Context, userID string, patch profile.Patch) (profile.Profile, error)
	PublicProfile(ctx context.Context, name string) (profile.Profile, error)
	ProfileByID(ctx context.Context, viewerID, profileID string) (profile.Profile, error)
	UpdateProfileByID(ctx context.Context, userID, profileID string, update app.OwnerUpdate) (profile.Profile, error)
	DeleteProfile(ctx context.Context, userID, profileID string) error
	UploadFile(ctx context.Context, userID string, in app.Upload) (app.UploadResult, error)
	PreviewWorks(ctx context.Context, userID string) ([]profile.Publication, error)
	SyncORCID(ctx context.Context, userID string) (profile.Profile, error)
}

// Handler serves the JSON API.
type Handler struct {
	profiles  Profiles
	templates *catalog.Catalog
}

// New builds the API handler.
func New(profiles Profiles, templates *catalog.Catalog) *Handler {
	return &Handler{profiles: profiles, templates: templates}
}

// Routes mounts the API on r. Paths are relative to /api.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/profile", h.getCurrent)
	r.Post("/profile", h.create)
	r.Put("/profile", h.updateCurrent)
	r.Post("/profile/orcid/sync", h.syncORCID)
	r.Get("/profile/id/{id}", h.getByID)
	r.Put("/profile/id/{id}", h.updateByID)
	r.Delete("/profile/id/{id}", h.deleteByID)
	r.Get("/profile/{username}", h.getPublic)
	r.Post("/upload", h.upload)
	r.Get("/orcid/works", h.previewWorks)
	r.Get("/templates", h.listTemplates)
}

func userID(r *http.Request) string {
	return requestctx.UserIDFromContext(r.Context())
}

type profileEnvelope struct {
	Profile *profile.Profile `json:"profile"`
}

type messageEnvelope struct {
	Message string `json:"message"`
}
