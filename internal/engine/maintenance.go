package engine

import (
	"context"

	"go.uber.org/zap"
)

// PurgeExpiredCaches deletes unexecuted share caches past the expiry window.
// Executed caches are never purged; they are the settlement record.
func (e *Engine) PurgeExpiredCaches(ctx context.Context) (int64, error) {
	cutoff := e.now() - CacheExpirySecs
	n, err := e.store.DeleteExpiredCaches(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		e.log.Info("expired share caches purged", zap.Int64("deleted", n))
	}
	return n, nil
}
