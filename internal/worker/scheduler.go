package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StartAllWorkers starts every background worker. The returned function
// cancels them and waits until they have exited.
func StartAllWorkers(ctx context.Context, logger *zap.Logger, catalog Reloader, reloadInterval time.Duration) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup

	logger.Info("Starting all workers...")

	StartReloadWorker(ctx, &wg, logger, catalog, reloadInterval)

	logger.Info("All workers started")

	return func() {
		cancel()
		wg.Wait()
		logger.Info("All workers stopped")
	}
}
