package app

import (
	"context"
	"fmt"

	"github.com/louisbranch/scholarflow/internal/platform/cache"
	apperrors "github.com/louisbranch/scholarflow/internal/platform/errors"
	"github.com/louisbranch/scholarflow/internal/platform/logging"
	"github.com/louisbranch/scholarflow/internal/services/auth/user"
	"github.com/louisbranch/scholarflow/internal/services/scholar/profile"
	"go.uber.org/zap"
)

// ErrORCIDDisabled is returned when no ORCID reader is configured.
var ErrORCIDDisabled = apperrors.New(apperrors.CodeORCIDUnavailable, "ORCID import is not configured")

// Draft returns create-form defaults for the signed-in user: the session
// name split into first and rest, then whatever the ORCID record adds.
// ORCID failures leave the draft with account data only.
func (s *Service) Draft(ctx context.Context, userID string) (profile.Profile, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return profile.Profile{}, err
	}
	first, rest := user.SplitName(u.Name)
	draft := profile.Profile{
		FirstName:  first,
		LastName:   rest,
		Email:      u.Email,
		ORCIDID:    u.ORCIDID,
		Template:   profile.TemplateMinimal,
		Visibility: profile.VisibilityPublic,
	}
	if s.orcid == nil || u.ORCIDID == "" {
		return draft, nil
	}

	client := s.orcid(u.AccessToken)
	person, err := client.FetchPerson(ctx, u.ORCIDID)
	if err != nil {
		logging.FromContext(ctx).Warn("prefill from ORCID person", zap.String("orcid_id", u.ORCIDID), zap.Error(err))
	} else {
		if person.GivenNames != "" {
			draft.FirstName = person.GivenNames
		}
		if person.FamilyName != "" {
			draft.LastName = person.FamilyName
		}
		draft.DisplayName = person.CreditName
		draft.Bio = person.Biography
		if draft.Email == "" && len(person.Emails) > 0 {
			draft.Email = person.Emails[0]
		}
		for i, site := range person.Websites {
			if i == 0 {
				draft.Website = site.URL
			}
			draft.SocialLinks = append(draft.SocialLinks, profile.SocialLink{
				Platform:    "Website",
				URL:         site.URL,
				DisplayName: site.Name,
			})
		}
	}

	draft.Education = client.FetchEducations(ctx, u.ORCIDID)
	draft.Positions = client.FetchEmployments(ctx, u.ORCIDID)
	for _, pos := range draft.Positions {
		if pos.Current {
			draft.CurrentPosition = pos.Title
			draft.CurrentInstitution = pos.Institution
			draft.CurrentDepartment = pos.Department
			break
		}
	}
	return draft, nil
}

// PreviewWorks returns the signed-in user's ORCID works for import, served
// from cache when fresh.
func (s *Service) PreviewWorks(ctx context.Context, userID string) ([]profile.Publication, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.ORCIDID == "" {
		return nil, ErrNoORCID
	}

	key := cache.ORCIDWorksKey(u.ORCIDID)
	var works []profile.Publication
	if ok, err := cache.GetJSON(ctx, s.cache, key, &works); err != nil {
		logging.FromContext(ctx).Warn("read works cache", zap.String("key", key), zap.Error(err))
	} else if ok {
		return works, nil
	}
	return s.fetchWorks(ctx, u.ORCIDID, u.AccessToken)
}

// SyncORCID replaces the profile's ORCID-sourced publications with the
// current record and stamps lastOrcidSync. Manually entered publications
// are kept.
func (s *Service) SyncORCID(ctx context.Context, userID string) (profile.Profile, error) {
	p, err := s.ownProfile(ctx, userID)
	if err != nil {
		return profile.Profile{}, err
	}
	u, err := s.user(ctx, userID)
	if err != nil {
		return profile.Profile{}, err
	}
	orcidID := p.ORCIDID
	if orcidID == "" {
		orcidID = u.ORCIDID
	}
	if orcidID == "" {
		return profile.Profile{}, ErrNoORCID
	}

	works, err := s.fetchWorks(ctx, orcidID, u.AccessToken)
	if err != nil {
		return profile.Profile{}, err
	}
	works, skipped := profile.NormalizeImported(works)
	if err := s.store.ReplaceORCIDPublications(ctx, p.ID, works, s.now()); err != nil {
		return profile.Profile{}, fmt.Errorf("replace ORCID publications: %w", err)
	}
	s.dropPublic(ctx, p.Username)
	logging.FromContext(ctx).Info("ORCID works synced",
		zap.String("profile_id", p.ID),
		zap.Int("works", len(works)),
		zap.Int("skipped", skipped),
	)
	return s.store.GetProfile(ctx, p.ID)
}

// fetchWorks reads works from ORCID and refreshes the preview cache.
func (s *Service) fetchWorks(ctx context.Context, orcidID, accessToken string) ([]profile.Publication, error) {
	if s.orcid == nil {
		return nil, ErrORCIDDisabled
	}
	works, err := s.orcid(accessToken).FetchWorks(ctx, orcidID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperrors.Wrap(apperrors.CodeORCIDUnavailable, "Failed to fetch ORCID works", err)
	}
	key := cache.ORCIDWorksKey(orcidID)
	if err := cache.SetJSON(ctx, s.cache, key, works, s.cfg.WorksTTL); err != nil {
		logging.FromContext(ctx).Warn("write works cache", zap.String("key", key), zap.Error(err))
	}
	return works, nil
}

func (s *Service) user(ctx context.Context, userID string) (user.User, error) {
	if err := requireUser(userID); err != nil {
		return user.User{}, err
	}
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return user.User{}, ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

