package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPasswordCost("Secret123!", bcrypt.MinCost)
	require.NoError(t, err)

	require.True(t, VerifyPassword(hash, "Secret123!"))
	require.False(t, VerifyPassword(hash, "secret123!"))
	require.False(t, VerifyPassword("", "Secret123!"))

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, bcrypt.MinCost, cost)
}

func TestHashPasswordDefaultCost(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, bcrypt.DefaultCost, cost)

	_, err = HashPassword("")
	require.ErrorIs(t, err, ErrEmptyPassword)

	_, err = HashPasswordCost("pw", bcrypt.MaxCost+1)
	require.Error(t, err)
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(48)
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	require.Len(t, raw, 48)

	other, err := GenerateToken(48)
	require.NoError(t, err)
	require.NotEqual(t, token, other)

	_, err = GenerateToken(0)
	require.ErrorIs(t, err, ErrTokenLength)
}

func TestConstantTimeEqual(t *testing.T) {
	require.True(t, ConstantTimeEqual("abc", "abc"))
	require.False(t, ConstantTimeEqual("abc", "abd"))
	require.False(t, ConstantTimeEqual("abc", "abcd"))
	require.False(t, ConstantTimeEqual("", ""))
}
