package api

import (
	"net/http"

	"github.com/louisbranch/scholarflow/internal/services/scholar/profile"
	"github.com/louisbranch/scholarflow/internal/services/web/platform/httpx"
)

type worksEnvelope struct {
	Works []profile.Publication `json:"works"`
}

func (h *Handler) previewWorks(w http.ResponseWriter, r *http.Request) {
	works, err := h.profiles.PreviewWorks(r.Context(), userID(r))
	if err != nil {
		httpx.WriteError(w, r, err, msgFetchWorks)
		return
	}
	if works == nil {
		works = []profile.Publication{}
	}
	_ = httpx.WriteJSON(w, http.StatusOK, worksEnvelope{Works: works})
}

func (h *Handler) syncORCID(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.SyncORCID(r.Context(), userID(r))
	if err != nil {
		httpx.WriteError(w, r, err, msgSync)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, profileEnvelope{Profile: &p})
}
