package auth

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secureshare/internal/common"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, salt := HashPassword([]byte("Str0ng!pass"))
	require.Len(t, hash, hashLen)
	require.Len(t, salt, saltLen)

	assert.True(t, VerifyPassword([]byte("Str0ng!pass"), salt, hash))
	assert.False(t, VerifyPassword([]byte("wrong"), salt, hash))
}

func TestHashPassword_FreshSalt(t *testing.T) {
	h1, s1 := HashPassword([]byte("same"))
	h2, s2 := HashPassword([]byte("same"))
	assert.NotEqual(t, s1, s2)
	assert.NotEqual(t, h1, h2)
}

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken("u1", "user", secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "user", claims.Role)
}

func TestParseToken_Expired(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken("u1", "user", secret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, secret)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("u1", "user", []byte("one"), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, []byte("another"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := ParseToken("not.a.token", []byte("secret"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGenerateCode(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 20; i++ {
		assert.Regexp(t, pattern, GenerateCode())
	}
}
