package app

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/louisbranch/scholarflow/internal/platform/blobstore"
	apperrors "github.com/louisbranch/scholarflow/internal/platform/errors"
	"github.com/louisbranch/scholarflow/internal/platform/logging"
	"github.com/louisbranch/scholarflow/internal/services/scholar/profile"
	"github.com/louisbranch/scholarflow/internal/services/scholar/storage"
	"go.uber.org/zap"
)

// MaxUploadBytes is the largest accepted upload.
const MaxUploadBytes = 5 << 20

// UploadURLPrefix is the path uploads are served under.
const UploadURLPrefix = "/uploads/"

// Upload errors.
var (
	ErrNoFile          = apperrors.New(apperrors.CodeUploadMissing, "No file provided")
	ErrFileTooLarge    = apperrors.New(apperrors.CodeUploadTooLarge, "File too large (max 5MB)")
	ErrPhotoType       = apperrors.New(apperrors.CodeUploadType, "Invalid file type. Only JPEG, PNG, and WebP are allowed.")
	ErrUploadsDisabled = apperrors.New(apperrors.CodeUnknown, "Uploads are not configured")
)

var photoTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// Upload is a file received from the signed-in user.
type Upload struct {
	Filename string
	// ContentType is the client's declared type. It is logged, never trusted.
	ContentType string
	Data        []byte
	Type        string
}

// UploadResult is the stored file record and its public URL.
type UploadResult struct {
	File profile.File `json:"file"`
	URL  string       `json:"url"`
}

// UploadFile stores a file under the signed-in user's profile by content
// hash. Profile photos must sniff as JPEG, PNG or WebP and become the
// profile's photo. Anything that is not an image or PDF is kept as an opaque
// binary.
func (s *Service) UploadFile(ctx context.Context, userID string, in Upload) (UploadResult, error) {
	p, err := s.ownProfile(ctx, userID)
	if err != nil {
		return UploadResult{}, err
	}
	if s.blobs == nil {
		return UploadResult{}, ErrUploadsDisabled
	}
	if len(in.Data) == 0 {
		return UploadResult{}, ErrNoFile
	}
	if len(in.Data) > MaxUploadBytes {
		return UploadResult{}, ErrFileTooLarge
	}

	fileType := profile.FileProfilePhoto
	if strings.TrimSpace(in.Type) != "" {
		if fileType, err = profile.ParseFileType(in.Type); err != nil {
			return UploadResult{}, err
		}
	}
	// The bytes decide the type; the client's filename and header do not.
	mimetype, _, _ := strings.Cut(http.DetectContentType(in.Data), ";")
	if _, ok := photoTypes[mimetype]; fileType == profile.FileProfilePhoto && !ok {
		return UploadResult{}, ErrPhotoType
	}
	ext := uploadExt(mimetype)
	if ext == "bin" {
		mimetype = "application/octet-stream"
	}

	key, err := blobstore.ContentKey(p.ID, in.Data, ext)
	if err != nil {
		return UploadResult{}, fmt.Errorf("build upload key: %w", err)
	}
	if err := s.blobs.Put(ctx, key, in.Data, mimetype); err != nil {
		return UploadResult{}, fmt.Errorf("store upload: %w", err)
	}

	fileID, err := s.idGenerator()
	if err != nil {
		return UploadResult{}, fmt.Errorf("generate file id: %w", err)
	}
	url := UploadURLPrefix + key
	name := path.Base(strings.ReplaceAll(in.Filename, "\\", "/"))
	if name == "." || name == "/" {
		name = path.Base(key)
	}
	record := profile.File{
		ID:        fileID,
		ProfileID: p.ID,
		Filename:  name,
		Mimetype:  mimetype,
		Size:      int64(len(in.Data)),
		URL:       url,
		Type:      fileType,
		CreatedAt: s.now(),
	}
	if err := s.store.PutFile(ctx, record); err != nil {
		return UploadResult{}, fmt.Errorf("put file record: %w", err)
	}

	if fileType == profile.FileProfilePhoto {
		p.ProfilePhoto = url
		p.UpdatedAt = record.CreatedAt
		if err := s.store.UpdateProfile(ctx, p, storage.Replace{}); err != nil {
			return UploadResult{}, fmt.Errorf("set profile photo: %w", err)
		}
		s.dropPublic(ctx, p.Username)
	}
	logging.FromContext(ctx).Info("file uploaded",
		zap.String("profile_id", p.ID),
		zap.String("type", string(fileType)),
		zap.Int64("size", record.Size),
		zap.String("mimetype", mimetype),
		zap.String("declared_type", in.ContentType),
	)
	return UploadResult{File: record, URL: url}, nil
}

// uploadExt maps a sniffed media type to the stored key extension.
func uploadExt(mimetype string) string {
	if ext, ok := photoTypes[mimetype]; ok {
		return ext
	}
	if mimetype == "application/pdf" {
		return "pdf"
	}
	return "bin"
}
