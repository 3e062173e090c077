package worker

import (
	"context"
	"sync"
	"time"

	"zonecheck/internal/config"

	"go.uber.org/zap"
)

// Reloader rebuilds every jurisdiction snapshot.
type Reloader interface {
	LoadAll(ctx context.Context) error
}

// StartReloadWorker reloads all jurisdictions every interval until ctx is
// done. A non-positive interval disables the worker.
func StartReloadWorker(ctx context.Context, wg *sync.WaitGroup, logger *zap.Logger, r Reloader, interval time.Duration) {
	if interval <= 0 {
		logger.Info("Reload worker disabled")
		return
	}

	ticker := time.NewTicker(interval)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				reloadOnce(ctx, logger, r)
			}
		}
	}()

	logger.Info("Reload worker started", zap.Duration("interval", interval))
}

func reloadOnce(ctx context.Context, logger *zap.Logger, r Reloader) {
	ctx, cancel := context.WithTimeout(ctx, config.SnapshotLoadTimeout)
	defer cancel()

	start := time.Now()
	if err := r.LoadAll(ctx); err != nil {
		logger.Error("Reload worker: some jurisdictions failed to reload", zap.Error(err))
		return
	}
	logger.Debug("Reload worker: snapshots refreshed", zap.Duration("took", time.Since(start)))
}
