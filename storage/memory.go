package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	byterange "github.com/blobgate/blobgate/pkg/byte-range"
)

type memObject struct {
	data         []byte
	contentType  string
	etag         string
	lastModified time.Time
}

// MemStore is an in-memory Store for tests and local mode.
type MemStore struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string]memObject)}
}

// Put stores an object under key. The ETag is derived from the content.
func (m *MemStore) Put(key string, data []byte, contentType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := sha256.Sum256(data)
	m.objects[key] = memObject{
		data:         append([]byte(nil), data...),
		contentType:  contentType,
		etag:         fmt.Sprintf(`"%x"`, sum[:8]),
		lastModified: time.Now().UTC().Truncate(time.Second),
	}
}

// Get implements Store.
func (m *MemStore) Get(_ context.Context, key string, rangeHeader string) (*Object, error) {
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	size := int64(len(obj.data))
	out := &Object{
		Size:         size,
		ContentType:  obj.contentType,
		ETag:         obj.etag,
		LastModified: obj.lastModified,
	}

	if rangeHeader == "" {
		out.Body = io.NopCloser(bytes.NewReader(obj.data))
		return out, nil
	}

	// the header text arrives pre-validated; limits do not apply here
	br, err := byterange.Parse(rangeHeader, byterange.Limits{
		MaxRangeBytes:  math.MaxInt64,
		MaxSuffixBytes: math.MaxInt64,
	})
	if err != nil || br.IsZero() {
		return nil, fmt.Errorf("unexpected range %q", rangeHeader)
	}

	var start, end int64
	switch br.Form {
	case byterange.FormBounded:
		start, end = br.Start, min(br.End, size-1)
	case byterange.FormOpen:
		start, end = br.Start, size-1
	case byterange.FormSuffix:
		start, end = max(size-br.N, 0), size-1
	}
	if start >= size {
		return nil, fmt.Errorf("range %q not satisfiable for %d byte object", rangeHeader, size)
	}

	out.Body = io.NopCloser(bytes.NewReader(obj.data[start : end+1]))
	out.Partial = &PartialRange{Start: start, End: end}
	return out, nil
}

// Stat implements Store.
func (m *MemStore) Stat(_ context.Context, key string) (*Object, error) {
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return &Object{
		Size:         int64(len(obj.data)),
		ContentType:  obj.contentType,
		ETag:         obj.etag,
		LastModified: obj.lastModified,
	}, nil
}
