// Package cachekey derives tenant-scoped cache keys.
//
// A key is the composite of the canonical resource URL, the authenticated
// tenant and the normalized range text. Two tenants requesting the same
// resource, or one tenant requesting two different ranges, must never
// share a cache entry: partial-content bodies are range-specific and
// resource bodies are tenant-private.
package cachekey

import (
	"net/url"
	"strings"
)

const (
	originSeparator = ":"
	methodSeparator = ":"
	fieldSeparator  = "\t"

	// tenantParam is the reserved query parameter carrying the tenant
	// discriminator. It is injected here, server-side, from the verified
	// identity. Keys are derived from the request path only, so an
	// attacker-supplied query string can never forge this component.
	tenantParam = "bg-tenant"
)

// Keyer derives cache keys for one origin namespace.
type Keyer struct {
	// OriginId uniquely identifies the origin in a shared cache.
	OriginId string
}

// NewKeyer returns a Keyer for the given origin identifier.
func NewKeyer(originId string) Keyer {
	return Keyer{OriginId: originId}
}

// Key returns the cache key for one (method, resource, tenant, range)
// combination. Identical inputs always yield byte-identical keys; this
// determinism is what makes cache hits possible at all.
//
// rangeHeader must be the normalized range text (empty when no range was
// requested), so that equivalent encodings of the same range share an
// entry while different ranges never do. The field separator is a byte
// that cannot appear in a header value or request target, which keeps the
// range component unambiguous against adversarial URLs.
func (k Keyer) Key(method, canonicalURL, tenantID, rangeHeader string) string {
	key := k.Prefix(method, canonicalURL) + tenantParam + "=" + url.QueryEscape(tenantID) + fieldSeparator
	if rangeHeader != "" {
		key += "range: " + rangeHeader
	}
	return key
}

// Prefix returns the key prefix shared by every variant (all tenants, all
// ranges) of a resource. It is suitable for purging a resource wholesale.
func (k Keyer) Prefix(method, canonicalURL string) string {
	return k.OriginId + originSeparator + method + methodSeparator + canonicalURL + "?"
}

// CanonicalURL builds the canonical request URL for a resource key,
// independent of how the inbound request escaped it.
func CanonicalURL(routePrefix, resourceKey string) string {
	u := url.URL{Path: resourceKey}
	return strings.TrimSuffix(routePrefix, "/") + "/" + u.EscapedPath()
}
