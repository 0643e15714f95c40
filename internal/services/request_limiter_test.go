package services

import (
	"sync"
	"testing"
	"time"

	"github.com/viorelmirea/provocations-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestRequestLimiterGrantsUpToLimit(t *testing.T) {
	limiter := NewRequestLimiter(3, time.Hour, testLogger(t))
	defer limiter.Close()

	for i := 0; i < 3; i++ {
		if !limiter.TryConsume() {
			t.Fatalf("call %d: want=true got=false", i+1)
		}
	}
	if limiter.TryConsume() {
		t.Fatalf("call over limit: want=false got=true")
	}
	if limiter.TryConsume() {
		t.Fatalf("repeat call over limit: want=false got=true")
	}
}

func TestRequestLimiterDenialDoesNotMutate(t *testing.T) {
	limiter := NewRequestLimiter(1, time.Hour, testLogger(t))
	defer limiter.Close()

	if !limiter.TryConsume() {
		t.Fatalf("first call: want=true got=false")
	}
	limiter.TryConsume()
	limiter.TryConsume()
	if got := limiter.Remaining(); got != 0 {
		t.Fatalf("remaining after denials: want=0 got=%d", got)
	}
}

func TestRequestLimiterResetsAfterWindow(t *testing.T) {
	limiter := NewRequestLimiter(1, 30*time.Millisecond, testLogger(t))
	defer limiter.Close()

	if !limiter.TryConsume() {
		t.Fatalf("first window call: want=true got=false")
	}
	if limiter.TryConsume() {
		t.Fatalf("exhausted window call: want=false got=true")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if limiter.TryConsume() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("limiter never reset after window elapsed")
}

func TestRequestLimiterConcurrentConsume(t *testing.T) {
	const limit = 50
	limiter := NewRequestLimiter(limit, time.Hour, testLogger(t))
	defer limiter.Close()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < limit*4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.TryConsume() {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if granted != limit {
		t.Fatalf("concurrent grants: want=%d got=%d", limit, granted)
	}
}
