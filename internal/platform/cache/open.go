package cache

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// Backend names accepted by the server configuration.
const (
	BackendNone   = "none"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config selects and configures a cache backend.
type Config struct {
	Backend   string        `env:"SCHOLARFLOW_CACHE_BACKEND" envDefault:"sqlite"`
	Path      string        `env:"SCHOLARFLOW_CACHE_DB_PATH" envDefault:"data/cache.db"`
	RedisAddr string        `env:"SCHOLARFLOW_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB   int           `env:"SCHOLARFLOW_REDIS_DB" envDefault:"0"`
	TTL       time.Duration `env:"SCHOLARFLOW_CACHE_TTL" envDefault:"15m"`
}

// Opener builds a backend. Backends register themselves from the server
// composition root to keep this package free of driver imports.
type Opener func(ctx context.Context, cfg Config) (Cache, io.Closer, error)

// Open resolves cfg.Backend against openers. The none backend needs no opener.
func Open(ctx context.Context, cfg Config, openers map[string]Opener) (Cache, io.Closer, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" || backend == BackendNone {
		return Nop{}, Nop{}, nil
	}
	opener, ok := openers[backend]
	if !ok || opener == nil {
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
	return opener(ctx, cfg)
}
