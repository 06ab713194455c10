package blobstore

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendFS = "fs"
	BackendS3 = "s3"
)

// Config selects and configures a blob backend.
type Config struct {
	Backend  string `env:"SCHOLARFLOW_BLOB_BACKEND" envDefault:"fs"`
	Dir      string `env:"SCHOLARFLOW_UPLOAD_DIR" envDefault:"data/uploads"`
	Bucket   string `env:"SCHOLARFLOW_S3_BUCKET"`
	Region   string `env:"SCHOLARFLOW_S3_REGION" envDefault:"us-east-1"`
	Endpoint string `env:"SCHOLARFLOW_S3_ENDPOINT"`
	Prefix   string `env:"SCHOLARFLOW_S3_PREFIX" envDefault:"uploads/"`
}

// Open builds the configured backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendFS:
		return NewFileStore(cfg.Dir)
	case BackendS3:
		return NewS3Store(ctx, S3Config{
			Bucket:   cfg.Bucket,
			Region:   cfg.Region,
			Endpoint: cfg.Endpoint,
			Prefix:   cfg.Prefix,
		})
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}
