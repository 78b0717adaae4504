package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_VerifiesAndIsSalted(t *testing.T) {
	t.Parallel()

	for _, pw := range []string{"secret1", "pässwörd", strings.Repeat("x", MaxPasswordBytes), " "} {
		h1, err := HashPassword(pw, bcrypt.MinCost)
		require.NoError(t, err)
		h2, err := HashPassword(pw, bcrypt.MinCost)
		require.NoError(t, err)

		assert.NotEqual(t, h1, h2, "hashes must be salted")
		assert.NotContains(t, h1, pw)
		assert.True(t, VerifyPassword(pw, h1))
		assert.True(t, VerifyPassword(pw, h2))
	}
}

func TestVerifyPassword_RejectsOtherPasswords(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)

	for _, other := range []string{"correct horsE", "correct horse ", "", "battery staple"} {
		assert.False(t, VerifyPassword(other, h), "password %q must not verify", other)
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	t.Parallel()

	for _, h := range []string{"", "plaintext", "$2a$10$short", "$2a$99$" + strings.Repeat("a", 53)} {
		assert.NotPanics(t, func() {
			assert.False(t, VerifyPassword("plaintext", h))
		})
	}
}

func TestHashPassword_RejectsTooLong(t *testing.T) {
	t.Parallel()

	_, err := HashPassword(strings.Repeat("a", MaxPasswordBytes+1), bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	// 25 three-byte runes: 75 bytes, under 72 characters.
	_, err = HashPassword(strings.Repeat("€", 25), bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestVerifyPassword_TooLongNeverMatchesTruncatedPrefix(t *testing.T) {
	t.Parallel()

	prefix := strings.Repeat("a", MaxPasswordBytes)
	h, err := HashPassword(prefix, bcrypt.MinCost)
	require.NoError(t, err)

	assert.False(t, VerifyPassword(prefix+"tail", h))
}

func TestHashPassword_CostBounds(t *testing.T) {
	t.Parallel()

	_, err := HashPassword("pw", bcrypt.MinCost-1)
	assert.ErrorIs(t, err, ErrInvalidCost)
	_, err = HashPassword("pw", bcrypt.MaxCost+1)
	assert.ErrorIs(t, err, ErrInvalidCost)

	h, err := HashPassword("pw", bcrypt.MinCost)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(h))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}
