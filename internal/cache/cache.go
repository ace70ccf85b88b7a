package cache

import (
	"log/slog"
	"sync"
	"time"
)

// Sweeper is implemented by caches whose expired entries the Manager
// sweeps in the background.
type Sweeper interface {
	CleanExpired() int
}

// Manager owns the background sweep for every registered cache.
// Register before StartCleanup; Stop is safe to call more than once.
type Manager struct {
	mu       sync.Mutex
	sweepers []Sweeper

	started  bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Register adds a cache to the sweep rotation.
func (m *Manager) Register(s Sweeper) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepers = append(m.sweepers, s)
}

// StartCleanup launches the periodic sweep goroutine.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()

	go func() {
		defer close(m.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := m.sweep(); n > 0 {
					slog.Debug("Cache sweep removed expired entries", "removed", n)
				}
			case <-m.stop:
				return
			}
		}
	}()
}

func (m *Manager) sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for _, s := range m.sweepers {
		removed += s.CleanExpired()
	}
	return removed
}

// Stop halts the sweep goroutine and waits for it to exit.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		m.mu.Lock()
		started := m.started
		m.mu.Unlock()
		if started {
			<-m.done
		}
	})
}
