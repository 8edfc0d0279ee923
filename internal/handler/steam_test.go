package handler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSteamID(t *testing.T) {
	id, ok := parseSteamID("https://steamcommunity.com/openid/id/76561197960287930")
	require.True(t, ok)
	require.Equal(t, "76561197960287930", id)

	for _, claimed := range []string{
		"",
		"https://steamcommunity.com/openid/id/",
		"https://steamcommunity.com/openid/id/not-a-number",
		"https://steamcommunity.com/openid/id/7656119x960287930",
		"https://evil.example.com/openid/id/76561197960287930",
	} {
		_, ok := parseSteamID(claimed)
		require.False(t, ok, "claimed_id %q should be rejected", claimed)
	}
}
