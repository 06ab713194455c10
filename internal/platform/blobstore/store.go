// Package blobstore persists uploaded files under content-addressed keys.
package blobstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrNotFound indicates no object is stored under the key.
var ErrNotFound = errors.New("blob not found")

// Object is a stored blob and its media type.
type Object struct {
	Data        []byte
	ContentType string
}

// Store persists blobs by key.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) (Object, error)
	Delete(ctx context.Context, key string) error
}

// ContentHash returns the lowercase hex SHA-256 of data.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ContentKey builds "{owner}/{sha256}.{ext}" for data.
func ContentKey(owner string, data []byte, ext string) (string, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" || strings.ContainsAny(owner, "/\\") || owner == "." || owner == ".." {
		return "", fmt.Errorf("invalid blob owner %q", owner)
	}
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	if ext == "" {
		return "", fmt.Errorf("blob extension is required")
	}
	return owner + "/" + ContentHash(data) + "." + ext, nil
}

// CleanKey validates a relative slash-separated key.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("blob key is required")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	cleaned := path.Clean(key)
	if cleaned != key || cleaned == "." || strings.HasPrefix(cleaned, "../") || cleaned == ".." {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return cleaned, nil
}
