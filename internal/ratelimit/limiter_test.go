package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luminarygames/embervale-site/internal/config"
)

func testPolicy(max int, window time.Duration) Policy {
	return Policy{Name: "test", Max: max, Window: window}
}

func TestLimiter_FixedWindow(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	l := New(store)
	p := testPolicy(3, time.Minute)

	t.Run("allows up to max attempts", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			res := l.Check("alice", p)
			require.True(t, res.Allowed, "attempt %d should pass", i+1)
			require.Equal(t, 3-(i+1), res.Remaining)
			require.False(t, res.ResetAt.IsZero())
		}
	})

	t.Run("blocks the attempt after max", func(t *testing.T) {
		res := l.Check("alice", p)
		require.False(t, res.Allowed)
		require.Equal(t, 0, res.Remaining)
		require.Greater(t, res.RetryAfter, 0)
	})

	t.Run("identifiers are independent", func(t *testing.T) {
		res := l.Check("bob", p)
		require.True(t, res.Allowed)
	})
}

func TestLimiter_WindowExpiry(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	l := New(store)
	p := testPolicy(2, 50*time.Millisecond)

	require.True(t, l.Check("carol", p).Allowed)
	require.True(t, l.Check("carol", p).Allowed)
	require.False(t, l.Check("carol", p).Allowed)

	time.Sleep(60 * time.Millisecond)

	// A fresh window: the old entry is replaced, not merged.
	res := l.Check("carol", p)
	require.True(t, res.Allowed)
	require.Equal(t, 1, res.Remaining)
}

func TestLimiter_Reset(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	l := New(store)
	p := testPolicy(2, time.Minute)

	require.True(t, l.Check("dave", p).Allowed)
	require.True(t, l.Check("dave", p).Allowed)
	require.False(t, l.Check("dave", p).Allowed)

	l.Reset("dave")

	res := l.Check("dave", p)
	require.True(t, res.Allowed)
	require.Equal(t, 1, res.Remaining)

	// Resetting an unknown identifier is a no-op, not an error.
	l.Reset("nobody")
}

func TestMemoryStore_Sweep(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()

	s.Hit("expired", 10*time.Millisecond)
	s.Hit("active", time.Minute)
	time.Sleep(20 * time.Millisecond)

	s.sweep(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotContains(t, s.entries, "expired")
	require.Contains(t, s.entries, "active")
}

func TestPolicySet_Lookup(t *testing.T) {
	ps := NewPolicySet(config.LoadRateLimitConfig())

	t.Run("named policies", func(t *testing.T) {
		require.Equal(t, PolicyLogin, ps.Get(PolicyLogin).Name)
		require.Equal(t, 5, ps.Get(PolicyLogin).Max)
		require.Equal(t, PolicyFeedback, ps.Get(PolicyFeedback).Name)
	})

	t.Run("unknown name falls back to api policy", func(t *testing.T) {
		require.Equal(t, PolicyAPI, ps.Get("no-such-policy").Name)
	})
}
