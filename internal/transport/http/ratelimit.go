package http

import "time"

// rateLimiter caps events per connection over a one-minute window.
// A zero limit disables limiting. Not safe for concurrent use; call
// allow only from the connection's read loop.
type rateLimiter struct {
	limit       int
	counter     int
	windowStart time.Time
}

func newRateLimiter(limit int) *rateLimiter {
	if limit <= 0 {
		return &rateLimiter{limit: 0}
	}
	return &rateLimiter{limit: limit}
}

func (r *rateLimiter) allow() bool {
	if r == nil || r.limit <= 0 {
		return true
	}
	now := time.Now()
	if r.windowStart.IsZero() || now.Sub(r.windowStart) >= time.Minute {
		r.windowStart = now
		r.counter = 0
	}
	r.counter++
	return r.counter <= r.limit
}
