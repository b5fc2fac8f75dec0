package scrape

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// hostLimiter spaces out requests to the same host
type hostLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	interval time.Duration
}

func newHostLimiter(interval time.Duration) *hostLimiter {
	return &hostLimiter{limiters: make(map[string]*rate.Limiter), interval: interval}
}

// wait blocks until a request to host is allowed or ctx is done
func (h *hostLimiter) wait(ctx context.Context, host string) error {
	return h.get(host).Wait(ctx)
}

func (h *hostLimiter) get(host string) *rate.Limiter {
	h.mu.RLock()
	limiter, ok := h.limiters[host]
	h.mu.RUnlock()
	if ok {
		return limiter
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if limiter, ok := h.limiters[host]; ok {
		return limiter
	}

	limit := rate.Inf
	if h.interval > 0 {
		limit = rate.Every(h.interval)
	}
	limiter = rate.NewLimiter(limit, 1)
	h.limiters[host] = limiter
	return limiter
}
