package identity

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningKey is the HMAC key shared with the identity provider.
type SigningKey []byte

// TenantClaims is the claim set the identity provider issues.
// The tenant identifier travels in the registered subject claim.
type TenantClaims struct {
	jwt.RegisteredClaims
}

// JWTAuthenticator verifies bearer tokens signed with an HMAC key.
type JWTAuthenticator struct {
	key SigningKey
}

// NewJWTAuthenticator returns an authenticator for the given signing key.
func NewJWTAuthenticator(key SigningKey) *JWTAuthenticator {
	return &JWTAuthenticator{key: key}
}

// Authenticate extracts and verifies the Authorization bearer token.
func (a *JWTAuthenticator) Authenticate(r *http.Request) (Identity, error) {
	tokenStr := bearerToken(r)
	if tokenStr == "" {
		return Identity{}, ErrNoCredentials
	}

	claims := &TenantClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(a.key), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if !token.Valid || claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidCredentials)
	}
	return Identity{Subject: claims.Subject}, nil
}

// SignToken issues a token for the given tenant, valid for ttl.
// Used by tests and local tooling; production tokens come from the
// identity provider.
func SignToken(key SigningKey, tenantID string, ttl time.Duration) (string, error) {
	claims := TenantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tenantID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
}

func bearerToken(r *http.Request) string {
	bearer := r.Header.Get("Authorization")
	if len(bearer) > 7 && strings.EqualFold(bearer[0:7], "bearer ") {
		return bearer[7:]
	}
	return ""
}
