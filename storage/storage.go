// Package storage is the object store collaborator: an opaque
// "get(key, optional byte range)" interface plus an S3 implementation and
// an in-memory implementation for tests and local mode.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when the key does not exist in the store.
var ErrNotFound = errors.New("object not found")

// Object is the metadata and optional body stream of a stored object.
type Object struct {
	// Size is the total size of the object, regardless of any range.
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
	// Body is the object stream, restricted to the requested range when
	// Partial is set. Nil for Stat results. The caller owns the stream
	// and must close it on every exit path.
	Body io.ReadCloser
	// Partial is set when the store fulfilled a sub-range of the object.
	Partial *PartialRange
}

// PartialRange describes the sub-range a store fulfilled.
type PartialRange struct {
	Start int64
	End   int64 // inclusive
}

// Length returns the number of bytes in the fulfilled range.
func (p PartialRange) Length() int64 {
	return p.End - p.Start + 1
}

// Store is the object store collaborator.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get fetches an object. rangeHeader is a canonical `bytes=` header
	// value restricting the fetch, or empty for the whole object.
	Get(ctx context.Context, key string, rangeHeader string) (*Object, error)
	// Stat fetches object metadata without a body.
	Stat(ctx context.Context, key string) (*Object, error)
}
