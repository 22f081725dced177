package llm

import (
	"sync"
	"time"
)

// RateLimiter decides whether a keyed caller may proceed
type RateLimiter interface {
	Allow(key string) bool
	Reset(key string)
}

// SlidingWindowLimiter allows at most limit calls per key in any window
type SlidingWindowLimiter struct {
	windows map[string][]time.Time
	limit   int
	window  time.Duration
	now     func() time.Time
	mu      sync.Mutex
}

// NewSlidingWindowLimiter creates a new sliding window limiter
func NewSlidingWindowLimiter(limit int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		windows: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Allow checks if a request is allowed and records it when it is
func (l *SlidingWindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.windows[key][:0]
	for _, t := range l.windows[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.limit {
		l.windows[key] = kept
		return false
	}
	l.windows[key] = append(kept, now)
	return true
}

// Reset forgets a key's history
func (l *SlidingWindowLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}
