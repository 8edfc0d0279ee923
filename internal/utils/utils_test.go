package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientIdentifier(t *testing.T) {
	id := ClientIdentifier("203.0.113.9", "Mozilla/5.0", "")
	require.True(t, strings.HasPrefix(id, "203.0.113.9:"))
	require.Equal(t, id, ClientIdentifier("203.0.113.9", "Mozilla/5.0", ""))

	t.Run("user agent changes the key", func(t *testing.T) {
		other := ClientIdentifier("203.0.113.9", "curl/8.0", "")
		require.NotEqual(t, id, other)
	})

	t.Run("email is folded in normalized", func(t *testing.T) {
		a := ClientIdentifier("203.0.113.9", "Mozilla/5.0", " Kara@Example.com ")
		b := ClientIdentifier("203.0.113.9", "Mozilla/5.0", "kara@example.com")
		require.Equal(t, a, b)
		require.True(t, strings.HasSuffix(a, ":kara@example.com"))
	})

	t.Run("missing ip gets a placeholder", func(t *testing.T) {
		require.True(t, strings.HasPrefix(ClientIdentifier("", "ua", ""), "unknown:"))
	})
}

func TestTokenValues(t *testing.T) {
	a, err := NewAuthTokenValue()
	require.NoError(t, err)
	require.Len(t, a, 64)

	b, err := NewAuthTokenValue()
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	state, err := NewStateValue()
	require.NoError(t, err)
	require.Len(t, state, 32)
}

func TestHashSHA256(t *testing.T) {
	// Known vector for the empty string.
	require.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		HashSHA256(""))
	require.Equal(t, HashSHA256("abc"), HashSHA256("abc"))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Password123!", 4) // min cost keeps the test fast
	require.NoError(t, err)
	require.True(t, VerifyPassword(hash, "Password123!"))
	require.False(t, VerifyPassword(hash, "password123!"))
}
