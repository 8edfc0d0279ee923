// Package ratelimit implements the fixed-window attempt counter that
// gates the auth-sensitive endpoints. The window is fixed, not
// sliding: a client that bursts right across a window boundary can
// land up to 2×max attempts in quick succession. That is a known and
// accepted property of the scheme; the strict budgets on credential
// endpoints make the absolute numbers harmless.
package ratelimit

import (
	"math"
	"time"
)

// Result is the structured outcome of a limiter check. The limiter
// never fails; callers always receive a usable Result.
type Result struct {
	Allowed    bool
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds until the window resets, >0 only when blocked
}

// Store persists window counters keyed by identifier. Implementations
// must make Hit atomic per identifier so concurrent requests from the
// same client cannot undercount.
type Store interface {
	// Hit records one attempt for the identifier, opening a fresh
	// window when none is active, and returns the attempt count within
	// the current window together with the window end. ok is false
	// when the store is unavailable; the limiter then fails open.
	Hit(identifier string, window time.Duration) (count int, resetAt time.Time, ok bool)

	// Reset forgets the identifier's counter. Idempotent.
	Reset(identifier string)
}

// Limiter evaluates policies against a Store. The store is injected
// so tests run against isolated in-memory instances while production
// can share a Redis-backed store across replicas.
type Limiter struct {
	store Store
}

func New(store Store) *Limiter {
	return &Limiter{store: store}
}

// Check records an attempt for identifier under policy p and reports
// whether the request may proceed. The (max+1)-th attempt inside a
// window is blocked with a positive RetryAfter.
func (l *Limiter) Check(identifier string, p Policy) Result {
	count, resetAt, ok := l.store.Hit(identifier, p.Window)
	if !ok {
		// Store outage must not lock users out of login.
		return Result{Allowed: true, Remaining: p.Max - 1, ResetAt: time.Now().Add(p.Window)}
	}
	if count > p.Max {
		retry := int(math.Ceil(time.Until(resetAt).Seconds()))
		if retry < 1 {
			retry = 1
		}
		return Result{Allowed: false, Remaining: 0, ResetAt: resetAt, RetryAfter: retry}
	}
	return Result{Allowed: true, Remaining: p.Max - count, ResetAt: resetAt}
}

// Reset clears the counter for an identifier, used after a successful
// sensitive action so earlier failed attempts stop counting. No-op
// when the identifier is unknown.
func (l *Limiter) Reset(identifier string) {
	l.store.Reset(identifier)
}

// NopStore counts nothing and allows everything. Backs the limiter
// when rate limiting is switched off in configuration, keeping the
// handler code free of enabled/disabled branches.
type NopStore struct{}

func (NopStore) Hit(_ string, window time.Duration) (int, time.Time, bool) {
	return 1, time.Now().Add(window), true
}

func (NopStore) Reset(string) {}
