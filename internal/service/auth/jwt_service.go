// Package auth provides the token validation capability for the API: HMAC
// signed access tokens identifying the mobile client's user. Account
// management lives in the backend this engine syncs against; the engine
// only needs to know who a request belongs to.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService validates JWT authentication tokens. Tokens are issued by the
// backend alongside account management; the engine never mints its own.
type JWTService interface {
	// ValidateToken validates the provided access token string and extracts the claims.
	// Returns the claims containing user information if the token is valid,
	// or an error if validation fails (expired, invalid signature, etc.).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the custom claims structure for the JWT tokens.
// It extends standard JWT registered claims with application-specific fields.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
