package blobgate

import (
	"net/http"
	"strings"
)

// CORSPolicy is an origin allow list. The zero value denies all
// cross-origin access: this gateway guards tenant-private data, so the
// default is deny, never a wildcard.
type CORSPolicy struct {
	origins map[string]struct{}
}

// NewCORSPolicy builds a policy from a comma-separated origin list.
// Empty entries are ignored; an empty list denies everything.
func NewCORSPolicy(commaList string) CORSPolicy {
	origins := make(map[string]struct{})
	for _, o := range strings.Split(commaList, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins[o] = struct{}{}
		}
	}
	return CORSPolicy{origins: origins}
}

// Allowed reports whether origin is in the allow list.
func (p CORSPolicy) Allowed(origin string) bool {
	if origin == "" {
		return false
	}
	_, ok := p.origins[origin]
	return ok
}

// Apply sets CORS response headers when the origin is authorized.
// Unauthorized origins get no CORS headers at all.
func (p CORSPolicy) Apply(h http.Header, origin string) {
	if !p.Allowed(origin) {
		return
	}
	h.Set("Access-Control-Allow-Origin", origin)
	h.Add("Vary", "Origin")
}

// ApplyPreflight sets the preflight response headers for an authorized
// origin.
func (p CORSPolicy) ApplyPreflight(h http.Header, origin string) {
	if !p.Allowed(origin) {
		return
	}
	p.Apply(h, origin)
	h.Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Range, Authorization")
	h.Set("Access-Control-Max-Age", "86400")
}
