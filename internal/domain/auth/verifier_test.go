package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTVerifier_Verify(t *testing.T) {
	verifier := NewJWTVerifier("test-secret-key", "globetalk-test")
	ctx := context.Background()

	t.Run("should accept a token it issued", func(t *testing.T) {
		token, err := verifier.IssueToken("user-1", "user1@example.com", "Alice")
		require.NoError(t, err)

		claims, err := verifier.Verify(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "user1@example.com", claims.Email)
		assert.Equal(t, "Alice", claims.Name)
	})

	t.Run("should fall back to subject when user_id claim is absent", func(t *testing.T) {
		raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "user-2",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		token, err := raw.SignedString([]byte("test-secret-key"))
		require.NoError(t, err)

		claims, err := verifier.Verify(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "user-2", claims.UserID)
	})

	t.Run("should reject a token signed with another key", func(t *testing.T) {
		other := NewJWTVerifier("other-secret-key", "globetalk-test")
		token, err := other.IssueToken("user-1", "", "")
		require.NoError(t, err)

		_, err = verifier.Verify(ctx, token)
		assert.Error(t, err)
	})

	t.Run("should reject an expired token", func(t *testing.T) {
		raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "user-3",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		})
		token, err := raw.SignedString([]byte("test-secret-key"))
		require.NoError(t, err)

		_, err = verifier.Verify(ctx, token)
		assert.Error(t, err)
	})

	t.Run("should reject garbage", func(t *testing.T) {
		_, err := verifier.Verify(ctx, "not-a-token")
		assert.Error(t, err)
	})
}
