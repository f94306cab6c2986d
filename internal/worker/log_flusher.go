package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Syncer flushes buffered output.
type Syncer interface {
	Sync() error
}

// StartLogFlusher syncs s every interval until ctx is done, then once more.
// The returned channel is closed after the final sync.
func StartLogFlusher(ctx context.Context, s Syncer, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				if err := s.Sync(); err != nil {
					logger.Warn("final log flush failed", zap.Error(err))
				}
				return
			case <-ticker.C:
				if err := s.Sync(); err != nil {
					logger.Warn("log flush failed", zap.Error(err))
				}
			}
		}
	}()
	return done
}
