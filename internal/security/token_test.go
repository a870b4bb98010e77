package security_test

import (
	"testing"

	"github.com/Rrens/storefront/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpaqueToken(t *testing.T) {
	token, digest, err := security.NewOpaqueToken()
	require.NoError(t, err)

	assert.Len(t, token, 64)
	assert.Len(t, digest, 64)
	assert.NotEqual(t, token, digest)
	assert.Equal(t, digest, security.HashToken(token))

	other, _, err := security.NewOpaqueToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestPassword(t *testing.T) {
	hash, err := security.HashPassword("correct horse")
	require.NoError(t, err)

	assert.NoError(t, security.CheckPassword(hash, "correct horse"))
	assert.ErrorIs(t, security.CheckPassword(hash, "wrong horse"), security.ErrPasswordMismatch)
}
