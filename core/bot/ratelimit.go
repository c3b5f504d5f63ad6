package bot

import (
	"sync"
	"time"
)

// rateLimiter enforces a minimum interval between messages from the same
// phone number. A zero interval disables limiting.
type rateLimiter struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time
	interval time.Duration
	now      func() time.Time
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{
		lastSeen: make(map[string]time.Time),
		interval: interval,
		now:      time.Now,
	}
}

// Limited reports whether the phone is inside its cool-down window and, if
// not, stamps the new arrival.
func (r *rateLimiter) Limited(phone string) bool {
	if r.interval <= 0 {
		return false
	}
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	if last, ok := r.lastSeen[phone]; ok && now.Sub(last) < r.interval {
		return true
	}
	r.lastSeen[phone] = now
	return false
}
