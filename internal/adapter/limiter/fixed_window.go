package limiter

import (
	"sync"
	"time"
)

// FixedWindow counts requests per identity inside a fixed window that starts
// with the identity's first request. Each identity has its own lock, so
// unrelated clients never contend.
type FixedWindow struct {
	limit   int
	window  time.Duration
	now     func() time.Time
	entries sync.Map // identity -> *entry
}

type entry struct {
	mu          sync.Mutex
	count       int
	windowStart time.Time
	removed     bool
}

type Option func(*FixedWindow)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *FixedWindow) { l.now = now }
}

// NewFixedWindow allows limit requests per window and identity.
// Non-positive values fall back to 30 requests per minute.
func NewFixedWindow(limit int, window time.Duration, opts ...Option) *FixedWindow {
	if limit <= 0 {
		limit = 30
	}
	if window <= 0 {
		window = time.Minute
	}
	l := &FixedWindow{limit: limit, window: window, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *FixedWindow) Limit() int            { return l.limit }
func (l *FixedWindow) Window() time.Duration { return l.window }

// Allow records one request for identity and reports whether it is within
// the ceiling. It never fails; an exhausted window simply denies.
func (l *FixedWindow) Allow(identity string) bool {
	for {
		e := l.entry(identity)
		e.mu.Lock()
		if e.removed {
			// Pruned between lookup and lock; take the fresh entry.
			e.mu.Unlock()
			continue
		}
		allowed := l.record(e)
		e.mu.Unlock()
		return allowed
	}
}

// record must be called with e.mu held.
func (l *FixedWindow) record(e *entry) bool {
	now := l.now()
	if e.count == 0 || !now.Before(e.windowStart.Add(l.window)) {
		e.count = 1
		e.windowStart = now
		return true
	}
	e.count++
	return e.count <= l.limit
}

// RetryAfter is the time left in identity's current window, 0 if none.
func (l *FixedWindow) RetryAfter(identity string) time.Duration {
	v, ok := l.entries.Load(identity)
	if !ok {
		return 0
	}
	e := v.(*entry)
	e.mu.Lock()
	defer e.mu.Unlock()

	left := e.windowStart.Add(l.window).Sub(l.now())
	if left < 0 {
		return 0
	}
	return left
}

// Prune drops entries whose window has elapsed and returns how many went.
func (l *FixedWindow) Prune() int {
	now := l.now()
	removed := 0
	l.entries.Range(func(key, value any) bool {
		e := value.(*entry)
		e.mu.Lock()
		expired := !now.Before(e.windowStart.Add(l.window))
		if expired {
			e.removed = true
			l.entries.CompareAndDelete(key, e)
			removed++
		}
		e.mu.Unlock()
		return true
	})
	return removed
}

func (l *FixedWindow) entry(identity string) *entry {
	if v, ok := l.entries.Load(identity); ok {
		return v.(*entry)
	}
	v, _ := l.entries.LoadOrStore(identity, &entry{})
	return v.(*entry)
}
