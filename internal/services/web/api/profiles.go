package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/louisbranch/scholarflow/internal/services/scholar/app"
	"github.com/louisbranch/scholarflow/internal/services/scholar/profile"
	"github.com/louisbranch/scholarflow/internal/services/web/platform/httpx"
)

func (h *Handler) getCurrent(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.CurrentProfile(r.Context(), userID(r))
	if err != nil {
		httpx.WriteError(w, r, err, msgInternal)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, profileEnvelope{Profile: p})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if userID(r) == "" {
		httpx.WriteError(w, r, app.ErrUnauthenticated, msgInternal)
		return
	}
	var input profile.Profile
	if err := httpx.DecodeJSON(r, &input, maxJSONBytes); err != nil {
		httpx.WriteError(w, r, err, msgInternal)
		return
	}
	created, err := h.profiles.CreateProfile(r.Context(), userID(r), input)
	if err != nil {
		httpx.WriteError(w, r, err, msgInternal)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusCreated, profileEnvelope{Profile: &created})
}

func (h *Handler) updateCurrent(w http.ResponseWriter, r *http.Request) {
	if userID(r) == "" {
		httpx.WriteError(w, r, app.ErrUnauthenticated, msgInternal)
		return
	}
	var patch profile.Patch
	if err := httpx.DecodeJSON(r, &patch, maxJSONBytes); err != nil {
		httpx.WriteError(w, r, err, msgInternal)
		return
	}
	updated, err := h.profiles.UpdateProfile(r.Context(), userID(r), patch)
	if err != nil {
		httpx.WriteError(w, r, err, msgInternal)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, profileEnvelope{Profile: &updated})
}

func (h *Handler) getPublic(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.PublicProfile(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		httpx.WriteError(w, r, err, msgInternal)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, profileEnvelope{Profile: &p})
}

func (h *Handler) getByID(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.ProfileByID(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err, msgFetchProfile)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) updateByID(w http.ResponseWriter, r *http.Request) {
	if userID(r) == "" {
		httpx.WriteError(w, r, app.ErrUnauthenticated, msgUpdateProfile)
		return
	}
	var update app.OwnerUpdate
	if err := httpx.DecodeJSON(r, &update, maxJSONBytes); err != nil {
		httpx.WriteError(w, r, err, msgUpdateProfile)
		return
	}
	updated, err := h.profiles.UpdateProfileByID(r.Context(), userID(r), chi.URLParam(r, "id"), update)
	if err != nil {
		httpx.WriteError(w, r, err, msgUpdateProfile)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteByID(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.DeleteProfile(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, r, err, msgDeleteProfile)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, messageEnvelope{Message: "Profile deleted successfully"})
}

func (h *Handler) listTemplates(w http.ResponseWriter, _ *http.Request) {
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"templates": h.templates.All()})
}
