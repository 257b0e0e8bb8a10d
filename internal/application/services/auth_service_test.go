package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/loadboard/internal/infrastructure/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Enabled:   true,
		Secret:    "test-secret",
		Issuer:    "loadboard",
		ExpiresIn: time.Hour,
	}
}

func TestAuthService_IssueAndValidate(t *testing.T) {
	svc := NewAuthService(testAuthConfig())

	token, err := svc.IssueToken("ops")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, "loadboard", claims.Issuer)
}

func TestAuthService_Rejects(t *testing.T) {
	svc := NewAuthService(testAuthConfig())

	t.Run("empty subject cannot be issued", func(t *testing.T) {
		_, err := svc.IssueToken("")
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		cfg := testAuthConfig()
		cfg.Secret = "other"
		token, err := NewAuthService(cfg).IssueToken("ops")
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		cfg := testAuthConfig()
		cfg.Issuer = "someone-else"
		token, err := NewAuthService(cfg).IssueToken("ops")
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		issuer := NewAuthService(testAuthConfig())
		issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := issuer.IssueToken("ops")
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("unsigned", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "ops",
			Issuer:    "loadboard",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		assert.Error(t, err)
	})
}
