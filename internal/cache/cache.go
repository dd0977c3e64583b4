// Package cache provides the resolution-result cache: an in-memory layer
// backed by go-cache, with an optional disk layer so cached searches
// survive worker restarts.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the storage interface the resolver writes resolution results
// through. Implementations must be safe for concurrent use.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a stable cache key from a normalized organization name.
func Key(normalizedOrg string) string {
	sum := sha256.Sum256([]byte(normalizedOrg))
	return "claimresolve:v1:" + hex.EncodeToString(sum[:])
}
