package services

import (
	"sync"
	"time"

	"github.com/viorelmirea/provocations-backend/internal/platform/logger"
)

// RequestLimiter bounds how many external-generation calls the process may
// make per fixed window (24h in production). The counter is in-memory and
// per-process: horizontally scaled deployments each enforce their own
// quota, so the effective global limit grows with the instance count.
// The counter does not survive a restart.
type RequestLimiter struct {
	log    *logger.Logger
	limit  int
	window time.Duration

	mu    sync.Mutex
	count int

	stopOnce sync.Once
	stop     chan struct{}
}

func NewRequestLimiter(limit int, window time.Duration, baseLog *logger.Logger) *RequestLimiter {
	l := &RequestLimiter{
		log:    baseLog.With("service", "RequestLimiter"),
		limit:  limit,
		window: window,
		stop:   make(chan struct{}),
	}
	go l.resetLoop()
	return l
}

// TryConsume reports whether one more external call is allowed in the
// current window, incrementing the count when it is. Never fails.
func (l *RequestLimiter) TryConsume() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.count >= l.limit {
		return false
	}
	l.count++
	return true
}

// Remaining is informational only; the value may be stale by the time the
// caller acts on it.
func (l *RequestLimiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.limit - l.count
}

func (l *RequestLimiter) resetLoop() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			used := l.count
			l.count = 0
			l.mu.Unlock()
			l.log.Info("Request window reset", "used", used, "limit", l.limit)
		case <-l.stop:
			return
		}
	}
}

// Close stops the background reset timer.
func (l *RequestLimiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}
