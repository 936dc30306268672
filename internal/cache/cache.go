// Package cache stores extraction results keyed by document content,
// so re-submitting an unchanged document skips the five model calls.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from normalized document text. Identical
// content yields identical keys regardless of filename.
func Key(normalizedText string) string {
	hash := sha256.Sum256([]byte(normalizedText))
	return "lexmeta:v1:" + hex.EncodeToString(hash[:])
}
