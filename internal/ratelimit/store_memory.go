package ratelimit

import (
	"sync"
	"time"
)

// entry tracks one identifier's attempts within the current window.
type entry struct {
	count        int
	resetAt      time.Time
	firstAttempt time.Time
}

// MemoryStore keeps counters in a mutex-guarded map. Entries whose
// window has closed are replaced on the next hit and deleted by a
// periodic sweep, bounding memory to identifiers active within the
// sweep interval.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	stop    chan struct{}
	once    sync.Once
}

// NewMemoryStore constructs a store and, when sweepInterval > 0,
// starts the background sweep goroutine. Tests pass 0 to keep the
// store fully deterministic.
func NewMemoryStore(sweepInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*entry),
		stop:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		go s.sweepLoop(sweepInterval)
	}
	return s
}

func (s *MemoryStore) Hit(identifier string, window time.Duration) (int, time.Time, bool) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.entries[identifier]
	if !found || now.After(e.resetAt) {
		// Expired entries are replaced wholesale, never merged.
		e = &entry{count: 1, resetAt: now.Add(window), firstAttempt: now}
		s.entries[identifier] = e
		return e.count, e.resetAt, true
	}
	e.count++
	return e.count, e.resetAt, true
}

func (s *MemoryStore) Reset(identifier string) {
	s.mu.Lock()
	delete(s.entries, identifier)
	s.mu.Unlock()
}

// Close stops the sweep goroutine. Safe to call more than once.
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.stop) })
}

func (s *MemoryStore) sweepLoop(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.sweep(time.Now())
		case <-s.stop:
			return
		}
	}
}

// sweep deletes every entry whose window has already closed.
func (s *MemoryStore) sweep(now time.Time) {
	s.mu.Lock()
	for id, e := range s.entries {
		if now.After(e.resetAt) {
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()
}
