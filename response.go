package blobgate

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/blobgate/blobgate/storage"
)

// FreshnessPolicy decides the Cache-Control of assembled responses,
// per the mutability class of the resources the gateway serves.
type FreshnessPolicy struct {
	// MaxAgeSeconds applies to regenerated artifacts.
	MaxAgeSeconds int
	// Immutable marks content-addressed or versioned artifacts, which
	// get a year-long immutable lifetime instead.
	Immutable bool
}

// Cache-Control is always private: resource bodies are tenant data and
// must not land in shared caches outside this service.
func (p FreshnessPolicy) CacheControl() string {
	if p.Immutable {
		return "private, max-age=31536000, immutable"
	}
	return fmt.Sprintf("private, max-age=%d", p.MaxAgeSeconds)
}

// assembly is the computed shape of a response: status code, entity
// headers, and whether a body follows.
type assembly struct {
	status        int
	contentLength int64
	contentRange  string // empty unless partial
	bodyPresent   bool
}

// assemble derives the response shape for an object and the request that
// fetched it.
//
// A storage-fulfilled sub-range yields 206 with Content-Range. HEAD never
// carries partial semantics: it is normalized to a plain 200 describing
// the whole object, with no body.
func assemble(obj *storage.Object, isHead bool) assembly {
	if isHead {
		return assembly{
			status:        http.StatusOK,
			contentLength: obj.Size,
		}
	}
	if obj.Partial != nil {
		return assembly{
			status:        http.StatusPartialContent,
			contentLength: obj.Partial.Length(),
			contentRange:  fmt.Sprintf("bytes %d-%d/%d", obj.Partial.Start, obj.Partial.End, obj.Size),
			bodyPresent:   true,
		}
	}
	return assembly{
		status:        http.StatusOK,
		contentLength: obj.Size,
		bodyPresent:   true,
	}
}

// writeObjectHeaders sets the entity headers for an assembled object
// response. CORS headers are layered separately, per request.
func writeObjectHeaders(h http.Header, obj *storage.Object, a assembly, freshness FreshnessPolicy) {
	h.Set("Accept-Ranges", "bytes")
	h.Set("Cache-Control", freshness.CacheControl())
	h.Set("Content-Length", strconv.FormatInt(a.contentLength, 10))
	if a.contentRange != "" {
		h.Set("Content-Range", a.contentRange)
	}
	if obj.ContentType != "" {
		h.Set("Content-Type", obj.ContentType)
	}
	if obj.ETag != "" {
		h.Set("ETag", obj.ETag)
	}
	if !obj.LastModified.IsZero() {
		h.Set("Last-Modified", obj.LastModified.UTC().Format(http.TimeFormat))
	}
}
