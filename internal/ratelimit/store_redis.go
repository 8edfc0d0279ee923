package ratelimit

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// hitScript performs the fixed-window increment atomically: the first
// hit on a key starts the window by arming its expiry, later hits
// just count. Returns the attempt count and the remaining window in
// milliseconds.
var hitScript = redis.NewScript(`
    local c = redis.call('INCR', KEYS[1])
    if c == 1 then
        redis.call('PEXPIRE', KEYS[1], ARGV[1])
    end
    local ttl = redis.call('PTTL', KEYS[1])
    return { c, ttl }
`)

// RedisStore shares window counters across instances through Redis.
// Every error fails open: a Redis outage degrades rate limiting, it
// never takes down login.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(identifier string) string {
	return s.prefix + ":" + identifier
}

func (s *RedisStore) Hit(identifier string, window time.Duration) (int, time.Time, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	vals, err := hitScript.Run(ctx, s.client, []string{s.key(identifier)}, window.Milliseconds()).Result()
	if err != nil {
		log.Printf("ratelimit: redis hit failed for %s: %v", identifier, err)
		return 0, time.Time{}, false
	}
	arr, ok := vals.([]interface{})
	if !ok || len(arr) != 2 {
		log.Printf("ratelimit: unexpected script result: %#v", vals)
		return 0, time.Time{}, false
	}
	count, _ := arr[0].(int64)
	ttlMs, _ := arr[1].(int64)
	if ttlMs < 0 {
		ttlMs = window.Milliseconds()
	}
	return int(count), time.Now().Add(time.Duration(ttlMs) * time.Millisecond), true
}

func (s *RedisStore) Reset(identifier string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.client.Del(ctx, s.key(identifier)).Err(); err != nil {
		log.Printf("ratelimit: redis reset failed for %s: %v", identifier, err)
	}
}
