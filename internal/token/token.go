// Package token mints the short-lived bearer tokens the logging API expects
// on every delivery attempt.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the token lifetime used by the delivery worker.
const DefaultTTL = time.Hour

// Signer produces HS256-signed bearer tokens for a shared API secret.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign returns a token whose subject is the emitting service. The service
// falls back to "unknown-service" so a missing name never produces an
// unverifiable token.
func (s *Signer) Sign(service string, ttl time.Duration) (string, error) {
	if service == "" {
		service = "unknown-service"
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   service,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
