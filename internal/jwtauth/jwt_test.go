package jwtauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/tendai-dev/onboarding-kyb-sub006/pkg/domain-errors"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService("test-key", "onboarding-kyb", "onboarding-kyb-api")

	t.Run("valid token carries subject and email", func(t *testing.T) {
		token, err := svc.GenerateAccessToken("user-1", "ops@partner.example", time.Minute)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.Subject)
		assert.Equal(t, "ops@partner.example", claims.Email)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		token, err := svc.GenerateAccessToken("user-1", "ops@partner.example", -time.Minute)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("token signed with another key is rejected", func(t *testing.T) {
		other := NewService("different-key", "onboarding-kyb", "onboarding-kyb-api")
		token, err := other.GenerateAccessToken("user-1", "ops@partner.example", time.Minute)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	})
}
