package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/tendai-dev/onboarding-kyb-sub006/pkg/domain-errors"
)

func TestDerive(t *testing.T) {
	t.Run("same email always derives the same identity", func(t *testing.T) {
		a, err := Derive("ops@partner.example")
		require.NoError(t, err)
		b, err := Derive("ops@partner.example")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("derivation is case and whitespace insensitive", func(t *testing.T) {
		a, err := Derive("  Ops@Partner.Example ")
		require.NoError(t, err)
		b, err := Derive("ops@partner.example")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("distinct emails derive distinct identities", func(t *testing.T) {
		a, err := Derive("ops@partner.example")
		require.NoError(t, err)
		b, err := Derive("ops@other.example")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("blank email is unauthorized", func(t *testing.T) {
		_, err := Derive("   ")
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	})
}

func TestVerify(t *testing.T) {
	t.Run("no explicit id returns the derived identity", func(t *testing.T) {
		derived, err := Derive("ops@partner.example")
		require.NoError(t, err)
		got, err := Verify("ops@partner.example", "")
		require.NoError(t, err)
		assert.Equal(t, derived, got)
	})

	t.Run("matching explicit id is accepted", func(t *testing.T) {
		derived, err := Derive("ops@partner.example")
		require.NoError(t, err)
		got, err := Verify("ops@partner.example", derived.String())
		require.NoError(t, err)
		assert.Equal(t, derived, got)
	})

	t.Run("mismatched explicit id is rejected", func(t *testing.T) {
		other, err := Derive("ops@other.example")
		require.NoError(t, err)
		_, err = Verify("ops@partner.example", other.String())
		assert.True(t, dErrors.Is(err, dErrors.CodePartnerMismatch))
	})

	t.Run("unparseable explicit id is a bad request", func(t *testing.T) {
		_, err := Verify("ops@partner.example", "not-a-uuid")
		assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
	})
}
