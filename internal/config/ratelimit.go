package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig tunes the named limiter policies. Each policy is a
// (max attempts, window) pair applied to one endpoint class; the
// defaults below are deliberately stricter for credential endpoints
// than for general API traffic.
type RateLimitConfig struct {
	Enabled        bool
	LoginMax       int
	LoginWindow    time.Duration
	SignupMax      int
	SignupWindow   time.Duration
	ResetMax       int
	ResetWindow    time.Duration
	MagicMax       int
	MagicWindow    time.Duration
	FeedbackMax    int
	FeedbackWindow time.Duration
	APIMax         int
	APIWindow      time.Duration
	SweepInterval  time.Duration
}

// LoadRateLimitConfig reads environment variables to build a
// RateLimitConfig. Defaults are used when variables are not set.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		LoginMax:       envInt("RATE_LIMIT_LOGIN_MAX", 5),
		LoginWindow:    envDur("RATE_LIMIT_LOGIN_WINDOW", 15*time.Minute),
		SignupMax:      envInt("RATE_LIMIT_SIGNUP_MAX", 3),
		SignupWindow:   envDur("RATE_LIMIT_SIGNUP_WINDOW", time.Hour),
		ResetMax:       envInt("RATE_LIMIT_RESET_MAX", 3),
		ResetWindow:    envDur("RATE_LIMIT_RESET_WINDOW", time.Hour),
		MagicMax:       envInt("RATE_LIMIT_MAGIC_MAX", 3),
		MagicWindow:    envDur("RATE_LIMIT_MAGIC_WINDOW", time.Hour),
		FeedbackMax:    envInt("RATE_LIMIT_FEEDBACK_MAX", 10),
		FeedbackWindow: envDur("RATE_LIMIT_FEEDBACK_WINDOW", time.Hour),
		APIMax:         envInt("RATE_LIMIT_API_MAX", 60),
		APIWindow:      envDur("RATE_LIMIT_API_WINDOW", time.Minute),
		SweepInterval:  envDur("RATE_LIMIT_SWEEP_INTERVAL", time.Hour),
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Hour
	}
	return cfg
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
