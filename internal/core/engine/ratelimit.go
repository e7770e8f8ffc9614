package engine

import (
	"context"
	"sync"
	"time"

	"github.com/unpackhq/unpack/internal/core"
)

const (
	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = time.Minute
	DefaultSweepInterval     = 5 * time.Minute
)

// RateLimiter admits at most Limit requests per Window for each client key.
//
// Windows are fixed: the first admitted request opens one and the counter
// resets on the first request after it closes.
type RateLimiter struct {
	Limit  int
	Window time.Duration
	Clock  func() time.Time

	mu      sync.Mutex
	records map[string]*core.RateRecord
}

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Count     int
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the time left in the window, rounded up to whole seconds.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	wait := d.ResetAt.Sub(now)
	if wait <= 0 {
		return time.Second
	}
	return (wait + time.Second - 1) / time.Second * time.Second
}

// NewRateLimiter applies defaults to non-positive arguments.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = DefaultRateLimitRequests
	}
	if window <= 0 {
		window = DefaultRateLimitWindow
	}
	return &RateLimiter{
		Limit:   limit,
		Window:  window,
		records: make(map[string]*core.RateRecord),
	}
}

// Allow records a request for key and reports whether it is admitted.
func (r *RateLimiter) Allow(key string) Decision {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.records == nil {
		r.records = make(map[string]*core.RateRecord)
	}

	rec, ok := r.records[key]
	switch {
	case !ok:
		rec = &core.RateRecord{Count: 1, ResetAt: now.Add(r.window())}
		r.records[key] = rec
	case rec.Expired(now):
		rec.Count = 1
		rec.ResetAt = now.Add(r.window())
	case rec.Count >= r.limit():
		return Decision{Allowed: false, Count: rec.Count, Limit: r.limit(), ResetAt: rec.ResetAt}
	default:
		rec.Count++
	}

	return Decision{
		Allowed:   true,
		Count:     rec.Count,
		Limit:     r.limit(),
		Remaining: r.limit() - rec.Count,
		ResetAt:   rec.ResetAt,
	}
}

// Sweep drops every record whose window has closed and returns how many
// were removed.
func (r *RateLimiter) Sweep() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, rec := range r.records {
		if rec.Expired(now) {
			delete(r.records, key)
			removed++
		}
	}
	return removed
}

// Tracked returns the number of client keys currently held.
func (r *RateLimiter) Tracked() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// StartSweeper runs Sweep every interval until ctx is done. onSweep, when
// non-nil, receives the removed and remaining counts after each pass.
func (r *RateLimiter) StartSweeper(ctx context.Context, interval time.Duration, onSweep func(removed, tracked int)) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed := r.Sweep()
				if onSweep != nil {
					onSweep(removed, r.Tracked())
				}
			}
		}
	}()
}

func (r *RateLimiter) now() time.Time {
	if r.Clock != nil {
		return r.Clock()
	}
	return time.Now()
}

func (r *RateLimiter) limit() int {
	if r.Limit <= 0 {
		return DefaultRateLimitRequests
	}
	return r.Limit
}

func (r *RateLimiter) window() time.Duration {
	if r.Window <= 0 {
		return DefaultRateLimitWindow
	}
	return r.Window
}
