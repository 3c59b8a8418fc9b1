package background

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/moodlog/api/internal/ratelimit"
)

type stubCleaner struct {
	calls   atomic.Int64
	cleared int64
	err     error
}

func (s *stubCleaner) ClearExpiredResetTokens(ctx context.Context) (int64, error) {
	s.calls.Add(1)
	return s.cleared, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCleanupManager_RunsImmediatelyAndStops(t *testing.T) {
	cleaner := &stubCleaner{cleared: 3}
	limiter := ratelimit.NewLoginLimiter(ratelimit.DefaultConfig())
	cm := NewCleanupManager(cleaner, limiter, testLogger(), time.Hour)

	done := make(chan struct{})
	go func() {
		cm.Start(context.Background())
		close(done)
	}()

	// First pass runs without waiting for the ticker.
	assert.Eventually(t, func() bool {
		return cleaner.calls.Load() == 1
	}, time.Second, 10*time.Millisecond)

	cm.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup manager did not stop")
	}
}

func TestCleanupManager_RepoFailureDoesNotAbort(t *testing.T) {
	cleaner := &stubCleaner{err: errors.New("db down")}
	limiter := ratelimit.NewLoginLimiter(ratelimit.DefaultConfig())
	cm := NewCleanupManager(cleaner, limiter, testLogger(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cm.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return cleaner.calls.Load() == 1
	}, time.Second, 10*time.Millisecond)

	// The limiter sweep still ran despite the repo error.
	assert.Equal(t, 0, limiter.Size())

	cancel()
	<-done
}
