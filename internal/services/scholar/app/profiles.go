package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/louisbranch/scholarflow/internal/platform/cache"
	"github.com/louisbranch/scholarflow/internal/platform/logging"
	"github.com/louisbranch/scholarflow/internal/services/scholar/profile"
	"github.com/louisbranch/scholarflow/internal/services/scholar/storage"
	"github.com/louisbranch/scholarflow/internal/services/scholar/username"
	"go.uber.org/zap"
)

// publicationsByIDLimit caps the publications returned by ProfileByID.
const publicationsByIDLimit = 20

// createAttempts bounds username reallocation when a concurrent create wins
// the same username.
const createAttempts = 3

// CurrentProfile returns the signed-in user's profile, or nil when they have
// not created one.
func (s *Service) CurrentProfile(ctx context.Context, userID string) (*profile.Profile, error) {
	p, err := s.ownProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// CreateProfile creates the signed-in user's profile. The username is derived
// from the name and made unique; ids, ownership and timestamps are assigned
// here regardless of input.
func (s *Service) CreateProfile(ctx context.Context, userID string, input profile.Profile) (profile.Profile, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return profile.Profile{}, err
	}
	if err := s.ensureNoProfile(ctx, userID); err != nil {
		return profile.Profile{}, err
	}

	p, err := profile.Normalize(input)
	if err != nil {
		return profile.Profile{}, err
	}
	profileID, err := s.idGenerator()
	if err != nil {
		return profile.Profile{}, fmt.Errorf("generate profile id: %w", err)
	}
	now := s.now()
	p.ID = profileID
	p.UserID = userID
	p.CreatedAt = now
	p.UpdatedAt = now
	p.LastORCIDSync = nil
	if p.ORCIDID != "" {
		p.LastORCIDSync = &now
	}
	p.PublishedAt = nil
	if p.Visibility == profile.VisibilityPublic {
		p.PublishedAt = &now
	}

	base := username.Base(p.FirstName, p.LastName)
	for attempt := 1; ; attempt++ {
		p.Username, err = username.Allocate(ctx, base, s.store.UsernameExists)
		if err != nil {
			return profile.Profile{}, err
		}
		err = s.store.CreateProfile(ctx, p)
		if err == nil {
			break
		}
		if !errors.Is(err, storage.ErrAlreadyExists) || attempt == createAttempts {
			return profile.Profile{}, fmt.Errorf("create profile: %w", err)
		}
		// Either this user raced another request or the username was taken
		// between allocation and insert.
		if err := s.ensureNoProfile(ctx, userID); err != nil {
			return profile.Profile{}, err
		}
	}

	s.observePublished(p)
	logging.FromContext(ctx).Info("profile created",
		zap.String("profile_id", p.ID),
		zap.String("username", p.Username),
	)
	return s.store.GetProfile(ctx, p.ID)
}

func (s *Service) ensureNoProfile(ctx context.Context, userID string) error {
	_, err := s.store.GetProfileByUserID(ctx, userID)
	switch {
	case err == nil:
		return ErrProfileExists
	case errors.Is(err, storage.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("get profile: %w", err)
	}
}

// UpdateProfile applies patch to the signed-in user's profile. Collections
// present in the patch replace the stored ones. Saving a public profile
// stamps publishedAt; any other visibility clears it.
func (s *Service) UpdateProfile(ctx context.Context, userID string, patch profile.Patch) (profile.Profile, error) {
	current, err := s.ownProfile(ctx, userID)
	if err != nil {
		return profile.Profile{}, err
	}
	p, err := profile.Normalize(patch.Apply(current))
	if err != nil {
		return profile.Profile{}, err
	}
	now := s.now()
	p.UpdatedAt = now
	p.PublishedAt = nil
	if p.Visibility == profile.VisibilityPublic {
		p.PublishedAt = &now
	}
	if err := s.store.UpdateProfile(ctx, p, storage.ReplaceFromPatch(patch)); err != nil {
		return profile.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	s.observePublished(p)
	s.dropPublic(ctx, p.Username)
	return s.store.GetProfile(ctx, p.ID)
}

// PublicProfile returns a public or unlisted profile by username.
func (s *Service) PublicProfile(ctx context.Context, name string) (profile.Profile, error) {
	canonical, err := username.Canonicalize(name)
	if err != nil {
		return profile.Profile{}, ErrProfileNotFound
	}
	key := cache.PublicProfileKey(canonical)

	var cached profile.Profile
	if ok, err := cache.GetJSON(ctx, s.cache, key, &cached); err != nil {
		logging.FromContext(ctx).Warn("read profile cache", zap.String("key", key), zap.Error(err))
	} else if ok {
		return cached, nil
	}

	p, err := s.store.GetProfileByUsername(ctx, canonical)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return profile.Profile{}, ErrProfileNotFound
		}
		return profile.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if !p.Visibility.Listed() {
		return profile.Profile{}, ErrProfileNotFound
	}
	if err := cache.SetJSON(ctx, s.cache, key, p, s.cfg.ProfileTTL); err != nil {
		logging.FromContext(ctx).Warn("write profile cache", zap.String("key", key), zap.Error(err))
	}
	return p, nil
}

// ProfileByID returns a profile with at most the 20 newest publications.
// Private profiles are only visible to their owner.
func (s *Service) ProfileByID(ctx context.Context, viewerID, profileID string) (profile.Profile, error) {
	p, err := s.profileByID(ctx, profileID)
	if err != nil {
		return profile.Profile{}, err
	}
	if p.Visibility == profile.VisibilityPrivate && p.UserID != viewerID {
		return profile.Profile{}, ErrProfileNotFound
	}
	if len(p.Publications) > publicationsByIDLimit {
		p.Publications = p.Publications[:publicationsByIDLimit]
	}
	return p, nil
}

// OwnerUpdate is the field set editable through the profile-by-id endpoint.
type OwnerUpdate struct {
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	Bio          *string `json:"bio"`
	Position     *string `json:"position"`
	Department   *string `json:"department"`
	Institution  *string `json:"institution"`
	Website      *string `json:"website"`
	ProfilePhoto *string `json:"profilePhoto"`
}

func (u OwnerUpdate) patch() profile.Patch {
	return profile.Patch{
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Bio:                u.Bio,
		CurrentPosition:    u.Position,
		CurrentDepartment:  u.Department,
		CurrentInstitution: u.Institution,
		Website:            u.Website,
		ProfilePhoto:       u.ProfilePhoto,
	}
}

// UpdateProfileByID applies an owner update to profileID.
func (s *Service) UpdateProfileByID(ctx context.Context, userID, profileID string, update OwnerUpdate) (profile.Profile, error) {
	current, err := s.ownedByID(ctx, userID, profileID)
	if err != nil {
		return profile.Profile{}, err
	}
	p, err := profile.Normalize(update.patch().Apply(current))
	if err != nil {
		return profile.Profile{}, err
	}
	p.UpdatedAt = s.now()
	if err := s.store.UpdateProfile(ctx, p, storage.Replace{}); err != nil {
		return profile.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	s.dropPublic(ctx, p.Username)
	return s.store.GetProfile(ctx, p.ID)
}

// DeleteProfile deletes profileID and everything it owns.
func (s *Service) DeleteProfile(ctx context.Context, userID, profileID string) error {
	p, err := s.ownedByID(ctx, userID, profileID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteProfile(ctx, p.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("delete profile: %w", err)
	}
	s.dropPublic(ctx, p.Username)
	logging.FromContext(ctx).Info("profile deleted", zap.String("profile_id", p.ID))
	return nil
}

func (s *Service) profileByID(ctx context.Context, profileID string) (profile.Profile, error) {
	p, err := s.store.GetProfile(ctx, profileID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return profile.Profile{}, ErrProfileNotFound
		}
		return profile.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *Service) ownedByID(ctx context.Context, userID, profileID string) (profile.Profile, error) {
	if err := requireUser(userID); err != nil {
		return profile.Profile{}, err
	}
	p, err := s.profileByID(ctx, profileID)
	if err != nil {
		return profile.Profile{}, err
	}
	if p.UserID != userID {
		return profile.Profile{}, ErrForbidden
	}
	return p, nil
}

// dropPublic invalidates a cached public view, logging failures.
func (s *Service) dropPublic(ctx context.Context, name string) {
	if err := s.invalidate(ctx, name); err != nil {
		logging.FromContext(ctx).Warn("invalidate profile cache", zap.String("username", name), zap.Error(err))
	}
}
