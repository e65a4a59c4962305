// Package authz decides whether a tenant may read a resource.
//
// The decision is purely an ownership comparison between the resource
// key's embedded marker and the authenticated tenant. Identity proof is
// the identity collaborator's job, not this package's. Decisions are
// computed fresh on every request and never cached, because ownership can
// change between requests.
package authz

import (
	resourcekey "github.com/blobgate/blobgate/pkg/resource-key"
)

// Deny reasons. They are logged, never sent on the wire: every denial
// surfaces to the client as the same access-denied response.
const (
	ReasonMarkerMissing     = "ownership marker missing"
	ReasonOwnershipMismatch = "resource owned by another tenant"
)

// Decision is the result of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Authorize compares the resource's owner against the authenticated
// tenant.
func Authorize(res resourcekey.Resource, tenantID string) Decision {
	if res.Owner == "" {
		return Decision{Reason: ReasonMarkerMissing}
	}
	if res.Owner != tenantID {
		return Decision{Reason: ReasonOwnershipMismatch}
	}
	return Decision{Allowed: true}
}
