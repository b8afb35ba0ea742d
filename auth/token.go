// Package auth holds the thin token glue between the platform's login
// flows (out of scope here) and the actor context the API needs.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"club-hub/domain"
)

// ActorClaims is the payload carried inside a bearer token: enough to
// rebuild the actor context, nothing more.
type ActorClaims struct {
	ActorID string           `json:"actor_id"`
	Kind    domain.ActorKind `json:"kind"`
	jwt.RegisteredClaims
}

// TokenManager signs and validates actor tokens with a shared HMAC
// secret loaded from configuration.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret []byte, ttl time.Duration) TokenManager {
	return TokenManager{secret: secret, ttl: ttl}
}

// Generate creates a signed token for an actor.
func (m TokenManager) Generate(actorID string, kind domain.ActorKind) (string, error) {
	now := time.Now()
	claims := &ActorClaims{
		ActorID: actorID,
		Kind:    kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "club-hub",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Validate parses a token string and returns its claims when the
// signature and expiry check out.
func (m TokenManager) Validate(tokenString string) (*ActorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ActorClaims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*ActorClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
