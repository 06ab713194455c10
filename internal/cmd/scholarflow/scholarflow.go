// Package scholarflow parses server configuration and wires the ScholarFlow
// web service.
package scholarflow

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/louisbranch/scholarflow/internal/platform/blobstore"
	"github.com/louisbranch/scholarflow/internal/platform/cache"
	"github.com/louisbranch/scholarflow/internal/platform/cache/rediscache"
	cachesqlite "github.com/louisbranch/scholarflow/internal/platform/cache/sqlite"
	entrypoint "github.com/louisbranch/scholarflow/internal/platform/cmd"
	"github.com/louisbranch/scholarflow/internal/platform/logging"
	"github.com/louisbranch/scholarflow/internal/platform/telemetry/metrics"
	"github.com/louisbranch/scholarflow/internal/services/auth/oauth"
	"github.com/louisbranch/scholarflow/internal/services/auth/session"
	authsqlite "github.com/louisbranch/scholarflow/internal/services/auth/storage/sqlite"
	"github.com/louisbranch/scholarflow/internal/services/scholar/app"
	"github.com/louisbranch/scholarflow/internal/services/scholar/catalog"
	"github.com/louisbranch/scholarflow/internal/services/scholar/orcid"
	"github.com/louisbranch/scholarflow/internal/services/scholar/storage"
	scholarsqlite "github.com/louisbranch/scholarflow/internal/services/scholar/storage/sqlite"
	"github.com/louisbranch/scholarflow/internal/services/web"
	"github.com/louisbranch/scholarflow/internal/services/web/platform/requestmeta"
	"go.uber.org/zap"
)

// Config holds the server configuration.
type Config struct {
	HTTPAddr      string        `env:"SCHOLARFLOW_HTTP_ADDR" envDefault:"localhost:3000"`
	AuthDBPath    string        `env:"SCHOLARFLOW_AUTH_DB_PATH" envDefault:"data/auth.db"`
	ProfileDBPath string        `env:"SCHOLARFLOW_PROFILE_DB_PATH" envDefault:"data/scholar.db"`
	CleanupEvery  time.Duration `env:"SCHOLARFLOW_CLEANUP_INTERVAL" envDefault:"10m"`

	Logging logging.Config
	Session session.Config
	OAuth   oauth.Config
	ORCID   orcid.Config
	Cache   cache.Config
	Blobs   blobstore.Config
	Service app.Config
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.AuthDBPath, "auth-db", cfg.AuthDBPath, "Auth SQLite database path")
	fs.StringVar(&cfg.ProfileDBPath, "profile-db", cfg.ProfileDBPath, "Profile SQLite database path")
	fs.StringVar(&cfg.Cache.Backend, "cache", cfg.Cache.Backend, "Cache backend: sqlite, redis or none")
	fs.StringVar(&cfg.Blobs.Backend, "blobs", cfg.Blobs.Backend, "Upload backend: fs or s3")
	fs.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "Log level")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the web service and blocks until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceScholarFlow, entrypoint.RunOptions{Logging: cfg.Logging}, func(ctx context.Context) error {
		return serve(ctx, cfg)
	})
}

func serve(ctx context.Context, cfg Config) error {
	log := logging.L()

	sessions, err := session.NewManager(cfg.Session)
	if err != nil {
		return err
	}
	templates, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("load template catalog: %w", err)
	}

	authStore, err := authsqlite.Open(ctx, cfg.AuthDBPath)
	if err != nil {
		return fmt.Errorf("open auth store: %w", err)
	}
	defer closeLogged(authStore, "auth store")

	profileStore, err := scholarsqlite.Open(ctx, cfg.ProfileDBPath)
	if err != nil {
		return fmt.Errorf("open profile store: %w", err)
	}
	defer closeLogged(profileStore, "profile store")

	payloads, cacheCloser, err := cache.Open(ctx, cfg.Cache, cacheOpeners)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer closeLogged(cacheCloser, "cache")
	if purger, ok := payloads.(expiredPurger); ok {
		go purgeLoop(ctx, purger, cfg.CleanupEvery)
	}

	blobs, err := blobstore.Open(ctx, cfg.Blobs)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	reg := metrics.New()
	orcidClient := orcid.New(cfg.ORCID, orcid.WithMetrics(reg))
	service := app.NewService(profileStore, authStore, cfg.Service,
		app.WithORCID(func(token string) app.ORCID { return orcidClient.WithToken(token) }),
		app.WithBlobs(blobs),
		app.WithCache(payloads),
		app.WithMetrics(reg),
	)

	var flow *oauth.Flow
	if cfg.OAuth.Enabled() {
		flow, err = oauth.NewFlow(cfg.OAuth, authStore, authStore)
		if err != nil {
			return fmt.Errorf("init ORCID sign-in: %w", err)
		}
		flow.StartCleanup(ctx, cfg.CleanupEvery)
	} else {
		log.Warn("ORCID client credentials not set; sign-in is disabled")
	}

	handler, err := web.NewHandler(web.Dependencies{
		Profiles:  service,
		Templates: templates,
		Sessions:  sessions,
		SignIn:    oauth.NewHandlers(flow, sessions, profileLocator(profileStore)),
		Uploads:   blobstore.Handler(blobs, app.UploadURLPrefix),
		Metrics:   reg,
		Ready: func(ctx context.Context) error {
			if err := authStore.Ping(ctx); err != nil {
				return err
			}
			return service.Ready(ctx)
		},
		Policy: requestmeta.SchemePolicy{TrustForwardedProto: cfg.Session.TrustForwardedProto},
	})
	if err != nil {
		return fmt.Errorf("init web handler: %w", err)
	}
	return web.NewServer(cfg.HTTPAddr, handler).ListenAndServe(ctx)
}

var cacheOpeners = map[string]cache.Opener{
	cache.BackendSQLite: func(ctx context.Context, cfg cache.Config) (cache.Cache, io.Closer, error) {
		store, err := cachesqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	},
	cache.BackendRedis: func(ctx context.Context, cfg cache.Config) (cache.Cache, io.Closer, error) {
		c, err := rediscache.Open(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	},
}

type expiredPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// purgeLoop drops expired cache rows until ctx is done. Redis expires keys
// on its own.
func purgeLoop(ctx context.Context, purger expiredPurger, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := purger.PurgeExpired(ctx); err != nil {
				logging.L().Warn("purge expired cache entries", zap.Error(err))
			}
		}
	}
}

// profileLocator resolves where a user lands after sign-in.
func profileLocator(store storage.Store) oauth.ProfileLocator {
	return func(ctx context.Context, userID string) (string, bool, error) {
		p, err := store.GetProfileByUserID(ctx, userID)
		if errors.Is(err, storage.ErrNotFound) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		return p.Username, true, nil
	}
}

func closeLogged(c io.Closer, name string) {
	if err := c.Close(); err != nil {
		logging.L().Warn("close "+name, zap.Error(err))
	}
}
