package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.NoError(t, hasher.Compare(hash, "secret123"))
	assert.ErrorIs(t, hasher.Compare(hash, "secret124"), ErrPasswordMismatch)
	assert.ErrorIs(t, hasher.Compare("not-a-hash", "secret123"), ErrPasswordMismatch)
}

func TestBcryptHasherFallsBackToDefaultCost(t *testing.T) {
	hasher := NewBcryptHasher(100).(*bcryptHasher)
	assert.Equal(t, DefaultCost, hasher.cost)
}

func TestNewResetToken(t *testing.T) {
	token, digest, err := NewResetToken()
	require.NoError(t, err)

	assert.Len(t, token, ResetTokenBytes*2)
	assert.Len(t, digest, 64)
	assert.Equal(t, HashToken(token), digest)
	assert.NotEqual(t, token, digest)

	other, _, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestBcryptHasherRejectsOverlongPassword(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	hash, err := h.Hash(strings.Repeat("a", MaxPasswordBytes))
	require.NoError(t, err)
	assert.NoError(t, h.Compare(hash, strings.Repeat("a", MaxPasswordBytes)))
}
