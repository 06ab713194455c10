// Package app implements the scholar profile use cases behind the HTTP API
// and pages: creation, editing, publishing, uploads and ORCID import.
package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/louisbranch/scholarflow/internal/platform/blobstore"
	"github.com/louisbranch/scholarflow/internal/platform/cache"
	apperrors "github.com/louisbranch/scholarflow/internal/platform/errors"
	"github.com/louisbranch/scholarflow/internal/platform/id"
	"github.com/louisbranch/scholarflow/internal/platform/telemetry/metrics"
	"github.com/louisbranch/scholarflow/internal/services/auth/user"
	"github.com/louisbranch/scholarflow/internal/services/scholar/orcid"
	"github.com/louisbranch/scholarflow/internal/services/scholar/profile"
	"github.com/louisbranch/scholarflow/internal/services/scholar/storage"
)

// Client-facing errors. Messages are part of the HTTP contract.
var (
	ErrUnauthenticated = apperrors.New(apperrors.CodeUnauthenticated, "Unauthorized")
	ErrForbidden       = apperrors.New(apperrors.CodeForbidden, "Unauthorized")
	ErrUserNotFound    = apperrors.New(apperrors.CodeUserNotFound, "User not found")
	ErrProfileNotFound = apperrors.New(apperrors.CodeProfileNotFound, "Profile not found")
	ErrProfileExists   = apperrors.New(apperrors.CodeProfileExists, "Profile already exists")
	ErrNoORCID         = apperrors.New(apperrors.CodeInvalidORCID, "No ORCID iD linked to this account")
)

// Users reads signed-in account records.
type Users interface {
	GetUser(ctx context.Context, userID string) (user.User, error)
}

// ORCID reads public and token-scoped ORCID record data.
type ORCID interface {
	FetchWorks(ctx context.Context, orcidID string) ([]profile.Publication, error)
	FetchPerson(ctx context.Context, orcidID string) (orcid.Person, error)
	FetchEducations(ctx context.Context, orcidID string) []profile.Education
	FetchEmployments(ctx context.Context, orcidID string) []profile.Position
}

// ORCIDFactory returns an ORCID reader authorized with accessToken. An empty
// token reads the public API.
type ORCIDFactory func(accessToken string) ORCID

// Config holds cache lifetimes.
type Config struct {
	WorksTTL   time.Duration `env:"SCHOLARFLOW_CACHE_WORKS_TTL" envDefault:"1h"`
	ProfileTTL time.Duration `env:"SCHOLARFLOW_CACHE_PROFILE_TTL" envDefault:"5m"`
}

// Service coordinates profile storage, uploads, caching and ORCID import.
type Service struct {
	store   storage.Store
	users   Users
	orcid   ORCIDFactory
	blobs   blobstore.Store
	cache   cache.Cache
	metrics *metrics.Registry
	cfg     Config

	clock       func() time.Time
	idGenerator func() (string, error)
}

// Option configures a Service.
type Option func(*Service)

// WithORCID enables ORCID import.
func WithORCID(factory ORCIDFactory) Option {
	return func(s *Service) { s.orcid = factory }
}

// WithBlobs enables uploads.
func WithBlobs(blobs blobstore.Store) Option {
	return func(s *Service) { s.blobs = blobs }
}

// WithCache sets the payload cache.
func WithCache(c cache.Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithMetrics records publish counts.
func WithMetrics(reg *metrics.Registry) Option {
	return func(s *Service) { s.metrics = reg }
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *Service) {
		if gen != nil {
			s.idGenerator = gen
		}
	}
}

// NewService builds a Service over the profile store and user lookup.
func NewService(store storage.Store, users Users, cfg Config, opts ...Option) *Service {
	s := &Service{
		store:       store,
		users:       users,
		cache:       cache.Nop{},
		cfg:         cfg,
		clock:       time.Now,
		idGenerator: id.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ready reports whether the profile store is reachable.
func (s *Service) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) now() time.Time {
	return s.clock().UTC()
}

func isNotFound(err error) bool {
	return apperrors.HasCode(err, apperrors.CodeNotFound)
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUnauthenticated
	}
	return nil
}

// ownProfile loads the profile owned by userID.
func (s *Service) ownProfile(ctx context.Context, userID string) (profile.Profile, error) {
	if err := requireUser(userID); err != nil {
		return profile.Profile{}, err
	}
	p, err := s.store.GetProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return profile.Profile{}, ErrProfileNotFound
		}
		return profile.Profile{}, err
	}
	return p, nil
}

// invalidate drops cached public views for the given usernames.
func (s *Service) invalidate(ctx context.Context, usernames ...string) error {
	keys := make([]string, 0, len(usernames))
	for _, name := range usernames {
		if name != "" {
			keys = append(keys, cache.PublicProfileKey(name))
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return s.cache.Delete(ctx, keys...)
}

func (s *Service) observePublished(p profile.Profile) {
	if p.Visibility == profile.VisibilityPublic {
		s.metrics.ObservePublished(string(p.Template))
	}
}
