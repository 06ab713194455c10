// Package logging builds the zap loggers shared by ScholarFlow processes.
package logging

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/louisbranch/scholarflow/internal/platform/requestctx"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls logger construction.
type Config struct {
	Level       string `env:"SCHOLARFLOW_LOG_LEVEL" envDefault:"info"`
	Development bool   `env:"SCHOLARFLOW_LOG_DEVELOPMENT" envDefault:"false"`
}

var (
	mu   sync.RWMutex
	base = zap.NewNop()
)

// New builds a logger tagged with the service name.
func New(service string, cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.With(zap.String("service", service)), nil
}

// SetDefault replaces the process logger returned by L and FromContext.
// The returned function restores the previous logger.
func SetDefault(logger *zap.Logger) func() {
	if logger == nil {
		logger = zap.NewNop()
	}
	mu.Lock()
	prev := base
	base = logger
	mu.Unlock()
	return func() {
		mu.Lock()
		base = prev
		mu.Unlock()
	}
}

// L returns the process logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// FromContext returns the process logger annotated with trace, request and
// user identifiers found in ctx.
func FromContext(ctx context.Context) *zap.Logger {
	logger := L()
	if ctx == nil {
		return logger
	}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		logger = logger.With(
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.String("span_id", span.SpanContext().SpanID().String()),
		)
	}
	if requestID := requestctx.RequestIDFromContext(ctx); requestID != "" {
		logger = logger.With(zap.String("request_id", requestID))
	}
	if userID := requestctx.UserIDFromContext(ctx); userID != "" {
		logger = logger.With(zap.String("user_id", userID))
	}
	return logger
}
