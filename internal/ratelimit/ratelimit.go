// Package ratelimit throttles requests per client and endpoint class using
// fixed-length windows kept in process memory. Not safe for multi-instance
// deployment without an external shared store behind the same interface.
package ratelimit

import (
	"sync"
	"time"
)

// Class groups endpoints that share a budget.
type Class string

const (
	// ClassProtocol covers metadata, content, and lock operations.
	ClassProtocol Class = "protocol"
	// ClassCreate covers file creation.
	ClassCreate Class = "create"
	// ClassSession covers edit-session token issuance.
	ClassSession Class = "session"
)

type window struct {
	start time.Time
	count int
}

// Limiter tracks request counts per (clientKey, class) window.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	length  time.Duration
	limits  map[Class]int
	stop    chan struct{}
	stopped bool
	now     func() time.Time
}

// New builds a Limiter and starts its background sweep.
func New(length time.Duration, limits map[Class]int) *Limiter {
	l := &Limiter{
		windows: make(map[string]*window),
		length:  length,
		limits:  limits,
		stop:    make(chan struct{}),
		now:     time.Now,
	}
	go l.sweepLoop()
	return l
}

// Allow records one request for the key/class pair. When the budget is
// exhausted it returns false plus the seconds remaining in the window.
func (l *Limiter) Allow(clientKey string, class Class) (bool, int) {
	limit, ok := l.limits[class]
	if !ok || limit <= 0 {
		return true, 0
	}
	key := clientKey + ":" + string(class)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, exists := l.windows[key]
	if !exists || now.Sub(w.start) >= l.length {
		l.windows[key] = &window{start: now, count: 1}
		return true, 0
	}
	w.count++
	if w.count > limit {
		remaining := l.length - now.Sub(w.start)
		secs := int(remaining.Seconds())
		if secs < 1 {
			secs = 1
		}
		return false, secs
	}
	return true, 0
}

// Close stops the background sweep. Safe to call more than once.
func (l *Limiter) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.stopped {
		l.stopped = true
		close(l.stop)
	}
}

func (l *Limiter) sweepLoop() {
	ticker := time.NewTicker(l.length)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep discards windows older than twice the window length.
func (l *Limiter) sweep() {
	cutoff := l.now().Add(-2 * l.length)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, w := range l.windows {
		if w.start.Before(cutoff) {
			delete(l.windows, key)
		}
	}
}
