package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/moodlog/api/internal/ratelimit"
)

// ResetTokenCleaner is the repository slice the cleanup task needs.
type ResetTokenCleaner interface {
	ClearExpiredResetTokens(ctx context.Context) (int64, error)
}

// CleanupManager periodically clears expired password-reset tokens and
// sweeps idle login-limiter keys so neither grows without bound.
type CleanupManager struct {
	users    ResetTokenCleaner
	limiter  *ratelimit.LoginLimiter
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	users ResetTokenCleaner,
	limiter *ratelimit.LoginLimiter,
	logger *slog.Logger,
	interval time.Duration,
) *CleanupManager {
	return &CleanupManager{
		users:    users,
		limiter:  limiter,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rowsCleared, err := cm.users.ClearExpiredResetTokens(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to clear expired reset tokens", slog.Any("error", err))
	} else if rowsCleared > 0 {
		cm.logger.Info("expired reset tokens cleared", slog.Int64("rows_cleared", rowsCleared))
	}

	if swept := cm.limiter.Sweep(); swept > 0 {
		cm.logger.Info("idle login limiter keys swept", slog.Int("keys_swept", swept))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
