package http

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	writeLimit    = 60
	writeWindow   = time.Minute
	staleClient   = 10 * time.Minute
	pruneInterval = 5 * time.Minute
)

// rateLimiter applies a fixed window of writeLimit requests per
// writeWindow to each client IP. Entries idle past staleClient are
// pruned by a background goroutine.
type rateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window

	stopOnce sync.Once
	quit     chan struct{}
}

type window struct {
	startedAt time.Time
	lastSeen  time.Time
	count     int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		windows: make(map[string]*window),
		quit:    make(chan struct{}),
	}
	go rl.pruneLoop()
	return rl
}

// allow records a request from clientIP and reports whether it fits in
// the current window. Rejections are counted on metrics when given.
func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.windows[clientIP]
	if !ok || now.Sub(w.startedAt) >= writeWindow {
		rl.windows[clientIP] = &window{startedAt: now, lastSeen: now, count: 1}
		return true
	}

	w.count++
	w.lastSeen = now

	if w.count > writeLimit {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}

func (rl *rateLimiter) pruneLoop() {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.prune(time.Now().Add(-staleClient))
		case <-rl.quit:
			return
		}
	}
}

func (rl *rateLimiter) prune(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, w := range rl.windows {
		if w.lastSeen.Before(cutoff) {
			delete(rl.windows, ip)
		}
	}
}

// stop ends the prune goroutine. Safe to call repeatedly.
func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() {
		close(rl.quit)
	})
}
