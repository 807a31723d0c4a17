package background

import (
	"context"
	"log/slog"
	"time"
)

const syncBatchSize = 50

// PendingSyncer reconciles pending subscriptions against the payment provider.
type PendingSyncer interface {
	SyncPending(ctx context.Context, limit int) (int, error)
}

// SubscriptionSyncManager periodically reconciles subscriptions stuck in
// pending, picking up checkouts whose webhook never arrived.
type SubscriptionSyncManager struct {
	billing  PendingSyncer
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

func NewSubscriptionSyncManager(billing PendingSyncer, logger *slog.Logger, interval time.Duration) *SubscriptionSyncManager {
	return &SubscriptionSyncManager{
		billing:  billing,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the sync loop until Stop is called or the context is cancelled.
// One pass runs immediately on startup.
func (sm *SubscriptionSyncManager) Start(ctx context.Context) {
	ticker := time.NewTicker(sm.interval)
	defer ticker.Stop()

	sm.runSync(ctx)

	for {
		select {
		case <-ticker.C:
			sm.runSync(ctx)
		case <-sm.stopCh:
			sm.logger.Info("subscription sync stopped")
			return
		case <-ctx.Done():
			sm.logger.Info("subscription sync context cancelled")
			return
		}
	}
}

func (sm *SubscriptionSyncManager) runSync(ctx context.Context) {
	syncCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	synced, err := sm.billing.SyncPending(syncCtx, syncBatchSize)
	if err != nil {
		sm.logger.Error("subscription sync failed", slog.Any("error", err))
		return
	}

	if synced > 0 {
		sm.logger.Info("subscription sync completed", slog.Int("synced", synced))
	}
}

// Stop signals the sync loop to exit.
func (sm *SubscriptionSyncManager) Stop() {
	close(sm.stopCh)
}
