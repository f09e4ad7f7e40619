package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signTestToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateToken(t *testing.T) {
	secret := "test-secret"

	t.Run("round trip keeps identity and role", func(t *testing.T) {
		token := signTestToken(t, secret, Claims{
			UserId: 42,
			Role:   "Admin",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})

		claims, err := ValidateToken(token, secret)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserId)
		assert.Equal(t, "Admin", claims.Role)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		token := signTestToken(t, secret, Claims{UserId: 1})
		_, err := ValidateToken(token, "other-secret")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		token := signTestToken(t, secret, Claims{
			UserId: 1,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		})
		_, err := ValidateToken(token, secret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := ValidateToken("not.a.token", secret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned algorithm rejected", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserId: 1}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = ValidateToken(unsigned, secret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
