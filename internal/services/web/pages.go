package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	apperrors "github.com/louisbranch/scholarflow/internal/platform/errors"
	"github.com/louisbranch/scholarflow/internal/platform/logging"
	"github.com/louisbranch/scholarflow/internal/platform/requestctx"
	"github.com/louisbranch/scholarflow/internal/services/auth/oauth"
	"github.com/louisbranch/scholarflow/internal/services/scholar/app"
	"github.com/louisbranch/scholarflow/internal/services/scholar/profile"
	"github.com/louisbranch/scholarflow/internal/services/web/api"
	"github.com/louisbranch/scholarflow/internal/services/web/pages"
	"github.com/louisbranch/scholarflow/internal/services/web/platform/flash"
	"go.uber.org/zap"
)

const worksUnavailable = "We could not load your ORCID works right now. You can import them later from the edit page."

func (h *handler) render(w http.ResponseWriter, r *http.Request, status int, title string, body templ.Component) {
	page := pages.Layout(title, h.viewer(r), body)
	templ.Handler(page, templ.WithStatus(status)).ServeHTTP(w, r)
}

// viewer resolves navigation state. Lookup failures render as a signed-in
// user without a profile link.
func (h *handler) viewer(r *http.Request) pages.Viewer {
	userID := requestctx.UserIDFromContext(r.Context())
	if userID == "" {
		return pages.Viewer{}
	}
	v := pages.Viewer{SignedIn: true}
	current, err := h.profiles.CurrentProfile(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("resolve viewer profile", zap.Error(err))
		return v
	}
	if current != nil {
		v.Name = current.DisplayNameOrFull()
		v.Username = current.Username
	}
	return v
}

// pageError renders domain failures under 500 with their message and
// everything else as the generic error page.
func (h *handler) pageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	if domainErr, ok := apperrors.As(err); ok {
		switch status := domainErr.HTTPStatus(); {
		case status == http.StatusNotFound:
			h.notFound(w, r)
			return
		case status == http.StatusUnauthorized:
			h.requireSignIn(w, r)
			return
		}
	}
	logging.FromContext(r.Context()).Error("render page", zap.String("path", r.URL.Path), zap.Error(err))
	h.render(w, r, http.StatusInternalServerError, "Error", pages.ServerError())
}

// formError returns the message and status for an error shown inline on a
// form, or ok=false when the error is not the user's to fix.
func formError(err error) (message string, status int, ok bool) {
	domainErr, isDomain := apperrors.As(err)
	if !isDomain {
		return "", 0, false
	}
	status = domainErr.HTTPStatus()
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		return "", 0, false
	}
	return domainErr.Message, status, true
}

func (h *handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "Not found", pages.NotFound())
}

func (h *handler) requireSignIn(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, oauth.SignInPath+"?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
}

func (h *handler) landing(w http.ResponseWriter, r *http.Request) {
	viewer := h.viewer(r)
	templ.Handler(pages.Layout("", viewer, pages.Landing(viewer))).ServeHTTP(w, r)
}

func (h *handler) signIn(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	h.render(w, r, http.StatusOK, "Sign in", pages.SignIn(query.Get("error"), oauth.SafeNext(query.Get("next"))))
}

func (h *handler) publicProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "username")
	userID := requestctx.UserIDFromContext(ctx)

	p, err := h.profiles.PublicProfile(ctx, name)
	if errors.Is(err, app.ErrProfileNotFound) && userID != "" {
		// Owners can preview their own private profile.
		if current, curErr := h.profiles.CurrentProfile(ctx, userID); curErr == nil && current != nil && current.Username == name {
			p, err = *current, nil
		}
	}
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	view := pages.ProfileView{
		ShowAll: r.URL.Query().Get("all") == "1",
		Owner:   userID != "" && userID == p.UserID,
	}
	h.render(w, r, http.StatusOK, p.DisplayNameOrFull(), pages.ProfilePage(p, view))
}

func (h *handler) createForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestctx.UserIDFromContext(ctx)
	if userID == "" {
		h.requireSignIn(w, r)
		return
	}
	current, err := h.profiles.CurrentProfile(ctx, userID)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	if current != nil {
		http.Redirect(w, r, profilePath(current.Username), http.StatusSeeOther)
		return
	}

	draft, err := h.profiles.Draft(ctx, userID)
	if err != nil {
		if errors.Is(err, app.ErrUserNotFound) {
			h.requireSignIn(w, r)
			return
		}
		logging.FromContext(ctx).Warn("prefill profile draft", zap.Error(err))
	}
	data := pages.CreateFormData{
		Draft:        draft,
		Templates:    h.templates.All(),
		ShowAllWorks: r.URL.Query().Get("all") == "1",
	}
	data.Works, data.WorksError = h.previewWorks(ctx, userID)
	h.render(w, r, http.StatusOK, "Create profile", pages.CreateForm(data))
}

func (h *handler) previewWorks(ctx context.Context, userID string) ([]profile.Publication, string) {
	works, err := h.profiles.PreviewWorks(ctx, userID)
	if err == nil {
		return works, ""
	}
	if errors.Is(err, app.ErrNoORCID) {
		return nil, err.Error()
	}
	logging.FromContext(ctx).Warn("preview ORCID works", zap.Error(err))
	return nil, worksUnavailable
}

func (h *handler) createSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestctx.UserIDFromContext(ctx)
	if userID == "" {
		h.requireSignIn(w, r)
		return
	}

	input, err := profileFromForm(w, r)
	if err == nil && r.PostForm.Get("importWorks") == "1" {
		works, worksErr := h.profiles.PreviewWorks(ctx, userID)
		if worksErr != nil {
			logging.FromContext(ctx).Warn("import ORCID works on create", zap.Error(worksErr))
		}
		input.Publications = works
	}
	var created profile.Profile
	if err == nil {
		created, err = h.profiles.CreateProfile(ctx, userID, input)
	}
	if err != nil {
		if errors.Is(err, app.ErrProfileExists) {
			if current, curErr := h.profiles.CurrentProfile(ctx, userID); curErr == nil && current != nil {
				http.Redirect(w, r, profilePath(current.Username), http.StatusSeeOther)
				return
			}
		}
		message, status, ok := formError(err)
		if !ok || status == http.StatusUnauthorized || status == http.StatusNotFound {
			h.pageError(w, r, err)
			return
		}
		data := pages.CreateFormData{Draft: input, Templates: h.templates.All(), Error: message}
		data.Works, data.WorksError = h.previewWorks(ctx, userID)
		h.render(w, r, status, "Create profile", pages.CreateForm(data))
		return
	}
	http.Redirect(w, r, profilePath(created.Username), http.StatusSeeOther)
}

// ownedForEdit loads the viewer's profile when it is the one named in the
// path.
func (h *handler) ownedForEdit(w http.ResponseWriter, r *http.Request) (profile.Profile, bool) {
	ctx := r.Context()
	userID := requestctx.UserIDFromContext(ctx)
	if userID == "" {
		h.requireSignIn(w, r)
		return profile.Profile{}, false
	}
	current, err := h.profiles.CurrentProfile(ctx, userID)
	if err != nil {
		h.pageError(w, r, err)
		return profile.Profile{}, false
	}
	if current == nil {
		http.Redirect(w, r, "/profile/create", http.StatusSeeOther)
		return profile.Profile{}, false
	}
	if current.Username != chi.URLParam(r, "username") {
		h.notFound(w, r)
		return profile.Profile{}, false
	}
	return *current, true
}

func (h *handler) editForm(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedForEdit(w, r)
	if !ok {
		return
	}
	data := pages.EditFormData{Profile: p, Templates: h.templates.All()}
	if notice, ok := h.flash.ReadAndClear(w, r); ok {
		data.Notice = notice.Message()
	}
	h.render(w, r, http.StatusOK, "Edit profile", pages.EditForm(data))
}

// editFailed re-renders the edit form with err, or the error page when the
// user cannot fix it.
func (h *handler) editFailed(w http.ResponseWriter, r *http.Request, p profile.Profile, err error) {
	message, status, ok := formError(err)
	if !ok || status == http.StatusUnauthorized || status == http.StatusNotFound {
		h.pageError(w, r, err)
		return
	}
	data := pages.EditFormData{Profile: p, Templates: h.templates.All(), Error: message}
	h.render(w, r, status, "Edit profile", pages.EditForm(data))
}

func (h *handler) editSubmit(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedForEdit(w, r)
	if !ok {
		return
	}
	patch, err := patchFromForm(w, r)
	if err == nil {
		_, err = h.profiles.UpdateProfile(r.Context(), p.UserID, patch)
	}
	if err != nil {
		h.editFailed(w, r, patch.Apply(p), err)
		return
	}
	h.flash.Write(w, r, flash.Success(flash.ProfileSaved))
	http.Redirect(w, r, editPath(p.Username), http.StatusSeeOther)
}

func (h *handler) photoSubmit(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedForEdit(w, r)
	if !ok {
		return
	}
	in, err := api.ReadUpload(w, r)
	if err == nil {
		if in.Type == "" {
			in.Type = string(profile.FileProfilePhoto)
		}
		_, err = h.profiles.UploadFile(r.Context(), p.UserID, in)
	}
	if err != nil {
		h.editFailed(w, r, p, err)
		return
	}
	h.flash.Write(w, r, flash.Success(flash.PhotoUploaded))
	http.Redirect(w, r, editPath(p.Username), http.StatusSeeOther)
}

func (h *handler) syncSubmit(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedForEdit(w, r)
	if !ok {
		return
	}
	if _, err := h.profiles.SyncORCID(r.Context(), p.UserID); err != nil {
		h.editFailed(w, r, p, err)
		return
	}
	h.flash.Write(w, r, flash.Success(flash.ORCIDSynced))
	http.Redirect(w, r, editPath(p.Username), http.StatusSeeOther)
}

func profilePath(username string) string {
	return "/profile/" + url.PathEscape(username)
}

func editPath(username string) string {
	return profilePath(username) + "/edit"
}
