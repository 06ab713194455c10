package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/louisbranch/scholarflow/internal/platform/logging"
	"github.com/louisbranch/scholarflow/internal/services/scholar/app"
	"github.com/louisbranch/scholarflow/internal/services/web/platform/httpx"
	"go.uber.org/zap"
)

// multipartOverhead leaves room for form fields around the file part.
const multipartOverhead = 1 << 20

// ReadUpload pulls the "file" and "type" fields from a multipart request.
// A missing file yields an Upload with no data so the service reports it
// after checking the profile.
func ReadUpload(w http.ResponseWriter, r *http.Request) (app.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(app.MaxUploadBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return app.Upload{}, app.ErrFileTooLarge
		}
		logging.FromContext(r.Context()).Info("unreadable upload form", zap.Error(err))
		return app.Upload{}, nil
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	in := app.Upload{Type: r.FormValue("type")}
	file, header, err := r.FormFile("file")
	if err != nil {
		return in, nil
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, app.MaxUploadBytes+1))
	if err != nil {
		return app.Upload{}, err
	}
	in.Filename = header.Filename
	in.ContentType = header.Header.Get("Content-Type")
	in.Data = data
	return in, nil
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if userID(r) == "" {
		httpx.WriteError(w, r, app.ErrUnauthenticated, msgUpload)
		return
	}
	in, err := ReadUpload(w, r)
	if err != nil {
		httpx.WriteError(w, r, err, msgUpload)
		return
	}
	result, err := h.profiles.UploadFile(r.Context(), userID(r), in)
	if err != nil {
		httpx.WriteError(w, r, err, msgUpload)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusCreated, result)
}
