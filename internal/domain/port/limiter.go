package port

import "time"

// RateLimiter bounds request volume per client identity.
type RateLimiter interface {
	Allow(identity string) bool
	RetryAfter(identity string) time.Duration
	Limit() int
	Window() time.Duration
}
