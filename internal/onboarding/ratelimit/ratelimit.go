// Package ratelimit bounds how often clients may start sessions and request
// new verification codes.
package ratelimit

import (
	"context"
	"log/slog"
	"math"
	"time"

	dErrors "onboarding/pkg/domain-errors"
)

// Class names a limited operation.
type Class string

const (
	// ClassSessionStart is keyed by client IP.
	ClassSessionStart Class = "session_start"
	// ClassCodeResend is keyed by session ID.
	ClassCodeResend Class = "code_resend"
)

// Rule allows Limit requests per sliding Window.
type Rule struct {
	Limit  int
	Window time.Duration
}

// DefaultRules returns the limits applied when none are configured.
func DefaultRules() map[Class]Rule {
	return map[Class]Rule{
		ClassSessionStart: {Limit: 20, Window: time.Minute},
		ClassCodeResend:   {Limit: 5, Window: 15 * time.Minute},
	}
}

// Result is the outcome of one check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int
}

// Store records requests in a sliding window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// Limiter applies per-class rules to a store.
type Limiter struct {
	store  Store
	rules  map[Class]Rule
	logger *slog.Logger
}

func NewLimiter(store Store, rules map[Class]Rule, logger *slog.Logger) *Limiter {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Limiter{store: store, rules: rules, logger: logger}
}

// Check records one request for key under class. Classes without a rule are
// not limited.
func (l *Limiter) Check(ctx context.Context, class Class, key string) (*Result, error) {
	rule, ok := l.rules[class]
	if !ok || rule.Limit <= 0 {
		return &Result{Allowed: true}, nil
	}
	res, err := l.store.Allow(ctx, string(class)+":"+key, rule.Limit, rule.Window)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "rate limit store unavailable")
	}
	if !res.Allowed && res.RetryAfter == 0 {
		res.RetryAfter = retryAfter(res.ResetAt, time.Now())
	}
	return res, nil
}

func retryAfter(resetAt, now time.Time) int {
	return max(1, int(math.Ceil(resetAt.Sub(now).Seconds())))
}
