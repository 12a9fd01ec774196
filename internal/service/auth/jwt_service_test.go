package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonfit/halcyon-engine/internal/config"
)

const testSecret = "test-secret-that-is-at-least-32-chars!!"

func newTestJWTService(t *testing.T) *hmacJWTService {
	t.Helper()
	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret})
	require.NoError(t, err)
	return svc.(*hmacJWTService)
}

// signToken mints a token the way the backend issuer does, so validation is
// exercised against externally produced tokens.
func signToken(t *testing.T, secret string, userID uuid.UUID, issuedAt time.Time, lifetime time.Duration) string {
	t.Helper()
	claims := jwtCustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(lifetime)),
			ID:        uuid.New().String(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	t.Run("rejects a short secret", func(t *testing.T) {
		t.Parallel()
		_, err := NewJWTService(config.AuthConfig{JWTSecret: "short"})
		assert.Error(t, err)
	})
}

func TestValidateToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("accepts a valid token and extracts the claims", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(t)
		userID := uuid.New()

		token := signToken(t, testSecret, userID, time.Now(), time.Hour)

		claims, err := svc.ValidateToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, userID.String(), claims.Subject)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(t)

		token := signToken(t, testSecret, uuid.New(), time.Now().Add(-24*time.Hour), time.Hour)

		_, err := svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("token within clock skew of expiry still validates", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(t)

		// Expired one minute ago, inside the two minute leeway.
		token := signToken(t, testSecret, uuid.New(), time.Now().Add(-61*time.Minute), time.Hour)

		_, err := svc.ValidateToken(ctx, token)
		assert.NoError(t, err)
	})

	t.Run("tampered token", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(t)

		token := signToken(t, testSecret, uuid.New(), time.Now(), time.Hour)

		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]

		_, err := svc.ValidateToken(ctx, tampered)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token signed with a different key", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(t)

		token := signToken(t, "another-secret-that-is-32-characters!!!", uuid.New(), time.Now(), time.Hour)

		_, err := svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token without a user id claim", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(t)

		token := signToken(t, testSecret, uuid.Nil, time.Now(), time.Hour)

		_, err := svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(t)
		_, err := svc.ValidateToken(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
