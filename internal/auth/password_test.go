package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luminarygames/embervale-site/internal/auth"
)

func TestValidatePassword(t *testing.T) {
	t.Run("strong password passes", func(t *testing.T) {
		res := auth.ValidatePassword("Password123!")
		require.True(t, res.Valid)
		require.Empty(t, res.Errors)
		require.GreaterOrEqual(t, res.Score, 60)
	})

	t.Run("common password fails with all class errors", func(t *testing.T) {
		res := auth.ValidatePassword("password")
		require.False(t, res.Valid)
		require.Contains(t, res.Errors, "must contain an uppercase letter")
		require.Contains(t, res.Errors, "must contain a number")
		require.Contains(t, res.Errors, "must contain a special character")
		require.Contains(t, res.Errors, "is a commonly used password")
		require.LessOrEqual(t, res.Score, 10)
	})

	t.Run("repeated single character is a pattern error", func(t *testing.T) {
		res := auth.ValidatePassword("aaaaaaaa")
		require.False(t, res.Valid)
		require.Contains(t, res.Errors, "uses a single repeated character")
	})

	t.Run("ascending run is a pattern error", func(t *testing.T) {
		res := auth.ValidatePassword("abcdefgh")
		require.False(t, res.Valid)
		require.Contains(t, res.Errors, "is an ascending character sequence")
	})

	t.Run("keyboard sequence is a pattern error", func(t *testing.T) {
		res := auth.ValidatePassword("Qwerty!99x")
		require.False(t, res.Valid)
		require.Contains(t, res.Errors, "contains a keyboard sequence")
		require.LessOrEqual(t, res.Score, 10)
	})

	t.Run("short password fails", func(t *testing.T) {
		res := auth.ValidatePassword("Ab1!")
		require.False(t, res.Valid)
		require.Contains(t, res.Errors, "must be at least 8 characters long")
	})

	t.Run("repeated run caps score but does not block", func(t *testing.T) {
		res := auth.ValidatePassword("XyzXyzQ17!ab")
		require.True(t, res.Valid)
		require.LessOrEqual(t, res.Score, 60)
		require.Contains(t, res.Suggestions, "avoid repeating the same sequence of characters")
	})

	t.Run("blocking errors hide suggestions", func(t *testing.T) {
		res := auth.ValidatePassword("abcabcabc")
		require.False(t, res.Valid)
		require.Empty(t, res.Suggestions)
	})

	t.Run("deterministic", func(t *testing.T) {
		a := auth.ValidatePassword("Tr1cky-Passphrase#")
		b := auth.ValidatePassword("Tr1cky-Passphrase#")
		require.Equal(t, a, b)
	})

	t.Run("score stays within bounds", func(t *testing.T) {
		for _, pw := range []string{"", "a", "Password123!", "aaaaaaaaaaaaaaaaaaaa", "Sup3r-L0ng_Unique#Phrase!"} {
			res := auth.ValidatePassword(pw)
			require.GreaterOrEqual(t, res.Score, 0, "pw=%q", pw)
			require.LessOrEqual(t, res.Score, 100, "pw=%q", pw)
		}
	})
}
