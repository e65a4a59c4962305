// Package resourcekey parses opaque storage keys into their structured
// form at the request boundary.
//
// A resource key looks like
//
//	analytics/archive/user_id=u1/2024/data.parquet
//
// where `analytics/` is the namespace the gateway serves and `user_id=u1`
// is the ownership marker. Parsing happens exactly once per request; the
// structured Resource flows through the pipeline so that no component ever
// re-parses the raw string.
package resourcekey

import (
	"strings"
)

// ownerMarkerPrefix introduces the ownership marker path segment.
const ownerMarkerPrefix = "user_id="

// Resource is the structured form of a storage key.
type Resource struct {
	// Namespace is the required key prefix, without the trailing slash.
	Namespace string
	// Owner is the tenant identifier from the ownership marker segment,
	// or empty if the key carries no marker.
	Owner string
	// Path is the key with the namespace prefix stripped.
	Path string

	raw string
}

// String returns the canonical key as used for storage lookups.
func (r Resource) String() string {
	return r.raw
}

// ParseError describes a syntactically unacceptable resource key.
// The caller maps it to an access-denied response.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "invalid resource key: " + e.Reason
}

// Parse validates a raw resource key against the configured namespace
// prefix and extracts the ownership marker.
//
// Keys containing NUL bytes or parent-directory segments are rejected, as
// are keys outside the namespace. A missing ownership marker is not a
// parse error; the authorizer denies those keys instead.
func Parse(raw, namespace string) (Resource, error) {
	if raw == "" {
		return Resource{}, &ParseError{Reason: "empty key"}
	}
	if strings.ContainsRune(raw, 0) {
		return Resource{}, &ParseError{Reason: "NUL byte in key"}
	}
	segments := strings.Split(raw, "/")
	for _, seg := range segments {
		if seg == ".." {
			return Resource{}, &ParseError{Reason: "parent directory traversal"}
		}
	}
	if namespace != "" && !strings.HasPrefix(raw, namespace) {
		return Resource{}, &ParseError{Reason: "key outside namespace " + namespace}
	}

	res := Resource{
		Namespace: strings.TrimSuffix(namespace, "/"),
		Path:      strings.TrimPrefix(raw, namespace),
		raw:       raw,
	}
	for _, seg := range segments {
		if owner, ok := strings.CutPrefix(seg, ownerMarkerPrefix); ok {
			res.Owner = owner
			break
		}
	}
	return res, nil
}
