// Package cache stores short-lived JSON payloads such as ORCID works previews
// and public profile views.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Key prefixes used by ScholarFlow.
const (
	PrefixORCIDWorks    = "orcid:works:"
	PrefixPublicProfile = "profile:public:"
)

// Cache is a key/value payload store with per-entry TTL.
type Cache interface {
	// Get returns the payload and true when a live entry exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores payload for ttl. A non-positive ttl never expires.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	// Delete removes entries; missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}

// Nop is a cache that stores nothing.
type Nop struct{}

// Get always misses.
func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards the payload.
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete does nothing.
func (Nop) Delete(context.Context, ...string) error { return nil }

// ORCIDWorksKey is the cache key for an ORCID iD's transformed works.
func ORCIDWorksKey(orcidID string) string {
	return PrefixORCIDWorks + strings.TrimSpace(orcidID)
}

// PublicProfileKey is the cache key for a published profile view.
func PublicProfileKey(username string) string {
	return PrefixPublicProfile + strings.ToLower(strings.TrimSpace(username))
}

// GetJSON decodes a cached JSON payload into target.
func GetJSON(ctx context.Context, c Cache, key string, target any) (bool, error) {
	if c == nil {
		return false, nil
	}
	payload, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes value and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, value any, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	return c.Set(ctx, key, payload, ttl)
}

// Close does nothing.
func (Nop) Close() error { return nil }
