package ratelimit

import (
	"time"

	"github.com/luminarygames/embervale-site/internal/config"
)

// Policy names an endpoint class and its (max attempts, window) pair.
type Policy struct {
	Name   string
	Max    int
	Window time.Duration
}

// Policy names used across handlers and the router.
const (
	PolicyLogin    = "login"
	PolicySignup   = "signup"
	PolicyReset    = "password_reset"
	PolicyMagic    = "magic_link"
	PolicyFeedback = "feedback"
	PolicyAPI      = "api"
)

// PolicySet is a pure lookup table from policy name to Policy.
type PolicySet struct {
	policies map[string]Policy
}

// NewPolicySet builds the named policies from configuration.
func NewPolicySet(cfg config.RateLimitConfig) PolicySet {
	ps := map[string]Policy{
		PolicyLogin:    {Name: PolicyLogin, Max: cfg.LoginMax, Window: cfg.LoginWindow},
		PolicySignup:   {Name: PolicySignup, Max: cfg.SignupMax, Window: cfg.SignupWindow},
		PolicyReset:    {Name: PolicyReset, Max: cfg.ResetMax, Window: cfg.ResetWindow},
		PolicyMagic:    {Name: PolicyMagic, Max: cfg.MagicMax, Window: cfg.MagicWindow},
		PolicyFeedback: {Name: PolicyFeedback, Max: cfg.FeedbackMax, Window: cfg.FeedbackWindow},
		PolicyAPI:      {Name: PolicyAPI, Max: cfg.APIMax, Window: cfg.APIWindow},
	}
	return PolicySet{policies: ps}
}

// Get returns the named policy, falling back to the general API
// policy for unknown names so a typo never disables limiting.
func (s PolicySet) Get(name string) Policy {
	if p, ok := s.policies[name]; ok {
		return p
	}
	return s.policies[PolicyAPI]
}
