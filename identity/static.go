package identity

import (
	"net/http"
	"strings"
)

// StaticAuthenticator maps literal bearer tokens to tenant subjects.
// Intended for tests and local development only.
type StaticAuthenticator struct {
	// Tokens maps token text to tenant identifier.
	Tokens map[string]string
}

// Authenticate implements Authenticator.
func (a StaticAuthenticator) Authenticate(r *http.Request) (Identity, error) {
	token := bearerToken(r)
	if token == "" {
		return Identity{}, ErrNoCredentials
	}
	subject, ok := a.Tokens[strings.TrimSpace(token)]
	if !ok {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{Subject: subject}, nil
}
