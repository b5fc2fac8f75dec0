// Package ratelimit tracks call quotas per category in fixed time windows.
// Every outbound call of the ingestion adapters asks Permit first, a denied permit is a
// backpressure signal and not an error.
package ratelimit

import (
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-pkgz/lgr"

	"github.com/umputun/tradescope/pkg/clock"
)

// quota categories used by the adapters
const (
	CategoryUserLookup = "user_lookup"
	CategoryTimeline   = "timeline"
	CategoryScrape     = "scrape"
)

// Rule defines the window size and the number of calls allowed per window
type Rule struct {
	Window time.Duration
	Limit  int
}

// Usage is a snapshot of a category window
type Usage struct {
	Category    string    `json:"category"`
	Used        int       `json:"used"`
	Limit       int       `json:"limit"`
	Window      string    `json:"window"`
	NextResetAt time.Time `json:"next_reset_at"`
	ResetsIn    string    `json:"resets_in"`
}

// Limiter keeps one fixed window per category, each guarded by its own mutex
type Limiter struct {
	clock   clock.Clock
	windows map[string]*window // immutable after construction
}

type window struct {
	mu    sync.Mutex
	size  time.Duration
	limit int
	start time.Time
	count int
}

// DefaultRules returns quotas matching the free api tier and a polite scrape budget
func DefaultRules() map[string]Rule {
	return map[string]Rule{
		CategoryUserLookup: {Window: 15 * time.Minute, Limit: 3},
		CategoryTimeline:   {Window: 15 * time.Minute, Limit: 1},
		CategoryScrape:     {Window: time.Hour, Limit: 120},
	}
}

// New makes a limiter for the given categories. A nil clock means the system clock.
func New(clk clock.Clock, rules map[string]Rule) *Limiter {
	if clk == nil {
		clk = clock.System{}
	}
	l := &Limiter{clock: clk, windows: make(map[string]*window, len(rules))}
	for name, r := range rules {
		if r.Window <= 0 {
			r.Window = time.Minute
		}
		if r.Limit < 0 {
			r.Limit = 0
		}
		l.windows[name] = &window{size: r.Window, limit: r.Limit}
	}
	return l
}

// Permit consumes one call of the category quota if available.
// The window reset, check and increment happen in one critical section.
func (l *Limiter) Permit(category string) bool {
	w, ok := l.windows[category]
	if !ok {
		lgr.Printf("[WARN] rate limit category %q is not configured, call denied", category)
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	now := l.clock.Now()
	w.roll(now)
	if w.count >= w.limit {
		lgr.Printf("[DEBUG] rate limit %s exhausted (%d/%d), resets %s", category, w.count, w.limit,
			humanize.Time(w.start.Add(w.size)))
		return false
	}
	w.count++
	return true
}

// Remaining reports calls used in the current window, the limit and when the window resets
func (l *Limiter) Remaining(category string) (used, limit int, nextResetAt time.Time) {
	w, ok := l.windows[category]
	if !ok {
		return 0, 0, time.Time{}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot(l.clock.Now())
}

// Exhaust marks the current window of the category as used up,
// used when the remote side reports its own limit was hit
func (l *Limiter) Exhaust(category string) {
	w, ok := l.windows[category]
	if !ok {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.roll(l.clock.Now())
	w.count = w.limit
}

// Status returns usage of all categories
func (l *Limiter) Status() map[string]Usage {
	now := l.clock.Now()
	res := make(map[string]Usage, len(l.windows))
	for name, w := range l.windows {
		w.mu.Lock()
		used, limit, reset := w.snapshot(now)
		size := w.size
		w.mu.Unlock()
		res[name] = Usage{
			Category:    name,
			Used:        used,
			Limit:       limit,
			Window:      size.String(),
			NextResetAt: reset,
			ResetsIn:    humanize.RelTime(now, reset, "ago", "from now"),
		}
	}
	return res
}

// Categories returns configured category names, sorted
func (l *Limiter) Categories() []string {
	res := make([]string, 0, len(l.windows))
	for name := range l.windows {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

// roll starts a new window if now has crossed the end of the current one. Caller holds mu.
func (w *window) roll(now time.Time) {
	if w.start.IsZero() || !now.Before(w.start.Add(w.size)) {
		w.start = now.Truncate(w.size)
		w.count = 0
	}
}

// snapshot reports the window state as of now without mutating it. Caller holds mu.
func (w *window) snapshot(now time.Time) (used, limit int, nextResetAt time.Time) {
	if w.start.IsZero() || !now.Before(w.start.Add(w.size)) {
		return 0, w.limit, now.Truncate(w.size).Add(w.size)
	}
	return w.count, w.limit, w.start.Add(w.size)
}
