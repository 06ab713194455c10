// Package storage defines persistence contracts for scholar profiles.
package storage

import (
	"context"
	"time"

	"github.com/louisbranch/scholarflow/internal/platform/errors"
	"github.com/louisbranch/scholarflow/internal/services/scholar/profile"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New(errors.CodeNotFound, "record not found")
	// ErrAlreadyExists indicates a unique key (user or username) is taken.
	ErrAlreadyExists = errors.New(errors.CodeProfileExists, "record already exists")
)

// Replace selects which collections an update rewrites.
type Replace struct {
	Publications bool
	Education    bool
	Positions    bool
	Awards       bool
	Grants       bool
	SocialLinks  bool
}

// All replaces every collection.
func (r Replace) All() Replace {
	return Replace{true, true, true, true, true, true}
}

// Any reports whether any collection is selected.
func (r Replace) Any() bool {
	return r.Publications || r.Education || r.Positions || r.Awards || r.Grants || r.SocialLinks
}

// ReplaceFromPatch selects the collections present in patch.
func ReplaceFromPatch(patch profile.Patch) Replace {
	return Replace{
		Publications: patch.Publications != nil,
		Education:    patch.Education != nil,
		Positions:    patch.Positions != nil,
		Awards:       patch.Awards != nil,
		Grants:       patch.Grants != nil,
		SocialLinks:  patch.SocialLinks != nil,
	}
}

// ProfileStore persists profiles and their collections.
//
// Reads return collections ordered for display.
type ProfileStore interface {
	CreateProfile(ctx context.Context, p profile.Profile) error
	GetProfile(ctx context.Context, profileID string) (profile.Profile, error)
	GetProfileByUserID(ctx context.Context, userID string) (profile.Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (profile.Profile, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateProfile(ctx context.Context, p profile.Profile, replace Replace) error
	ReplaceORCIDPublications(ctx context.Context, profileID string, publications []profile.Publication, syncedAt time.Time) error
	DeleteProfile(ctx context.Context, profileID string) error
}

// FileStore persists uploaded file records.
type FileStore interface {
	PutFile(ctx context.Context, f profile.File) error
	ListFiles(ctx context.Context, profileID string) ([]profile.File, error)
}

// Store is the full scholar persistence surface.
type Store interface {
	ProfileStore
	FileStore
	Ping(ctx context.Context) error
	Close() error
}
