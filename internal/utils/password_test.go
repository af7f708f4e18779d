package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	for _, pw := range []string{"secret123", "p@ssw0rd!", "ünïcødé-pass", " "} {
		hash, err := h.HashPassword(pw)
		require.NoError(t, err)
		assert.NotEqual(t, pw, hash)
		assert.True(t, h.CheckPasswordHash(pw, hash))
		assert.False(t, h.CheckPasswordHash(pw+"x", hash))
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	a, err := h.HashPassword("same-password")
	require.NoError(t, err)
	b, err := h.HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestNewPasswordHasherFallsBackToDefaultCost(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(0).Cost)
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(99).Cost)
	assert.Equal(t, 10, NewPasswordHasher(10).Cost)
}

func TestCheckPasswordHashRejectsGarbage(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	assert.False(t, h.CheckPasswordHash("secret", "not-a-bcrypt-hash"))
}
