package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_UsesCost12(t *testing.T) {
	hash := hashOfSecret(t)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 12, cost)
	assert.NotEqual(t, "secret", hash)
}

func TestVerifyPassword(t *testing.T) {
	hash := hashOfSecret(t)

	assert.True(t, VerifyPassword("secret", hash))
	assert.False(t, VerifyPassword("Secret", hash))
	assert.False(t, VerifyPassword("", hash))
}

func TestVerifyPassword_EmptyOrBrokenHash(t *testing.T) {
	assert.False(t, VerifyPassword("secret", ""))
	assert.False(t, VerifyPassword("", ""))
	assert.False(t, VerifyPassword("secret", "not-a-bcrypt-hash"))
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", 73))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}
