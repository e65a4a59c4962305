// Package identity verifies the caller of an inbound request.
//
// The gateway consumes identity as an opaque collaborator: it hands over
// the request and gets back a tenant subject or a failure. Ownership
// checks against that subject are the authz package's job.
package identity

import (
	"errors"
	"net/http"
)

// Identity is a verified caller identity.
type Identity struct {
	// Subject is the tenant identifier asserted by the credential.
	Subject string
}

var (
	// ErrNoCredentials means the request carried no credentials at all.
	ErrNoCredentials = errors.New("no credentials presented")
	// ErrInvalidCredentials means credentials were presented but failed
	// verification.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Authenticator verifies request credentials.
// Any returned error other than ErrNoCredentials and ErrInvalidCredentials
// is a collaborator failure, not a client mistake.
type Authenticator interface {
	Authenticate(r *http.Request) (Identity, error)
}
