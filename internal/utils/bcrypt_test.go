package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword(t *testing.T) {
	password := "Secret1!"
	hashedPassword, err := HashPassword(password)

	assert.NoError(t, err)
	assert.NotEmpty(t, hashedPassword)
	assert.NotEqual(t, password, hashedPassword)
}

func TestHashPassword_DistinctHashes(t *testing.T) {
	// bcrypt salts every hash, so hashing twice must not produce equal output
	h1, err := HashPassword("Secret1!")
	assert.NoError(t, err)
	h2, err := HashPassword("Secret1!")
	assert.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestCheckPasswordHash(t *testing.T) {
	password := "Secret1!"
	hashedPassword, _ := HashPassword(password)

	assert.True(t, CheckPasswordHash(password, hashedPassword))
	assert.False(t, CheckPasswordHash("wrongpassword", hashedPassword))
}

func TestCheckPasswordHash_InvalidHash(t *testing.T) {
	assert.False(t, CheckPasswordHash("Secret1!", "invalidhash"))
}
