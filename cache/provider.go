// Package cache is the edge cache collaborator.
// Providers store serialized HTTP responses under gateway-derived keys
// and own nothing about key structure or response semantics.
package cache

import "time"

// Provider is an edge cache backend.
// It stores and retrieves []byte values representing HTTP responses and
// keeps track of entry expiration.
//
// Implementations must be safe for concurrent use.
type Provider interface {
	// Get returns the stored bytes for the key, if present and fresh.
	// An expired entry reads as a miss.
	Get(key string) ([]byte, bool, error)
	// Put stores bytes under the key until expires.
	Put(key string, expires time.Time, bytes []byte) error
	// Purge removes the entry for the key, if any.
	Purge(key string) error
}
