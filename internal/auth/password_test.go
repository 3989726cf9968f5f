package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	assert.True(t, VerifyPassword(hash, "correct horse battery staple"))
	assert.False(t, VerifyPassword(hash, "wrong password"))
}

func TestHashPasswordSaltsAreUnique(t *testing.T) {
	a, err := HashPassword("same password")
	require.NoError(t, err)
	b, err := HashPassword("same password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	assert.False(t, VerifyPassword("", "x"))
	assert.False(t, VerifyPassword("not a hash", "x"))
	assert.False(t, VerifyPassword("$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA", "x"))
	assert.False(t, VerifyPassword("$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA", "x"))
}
