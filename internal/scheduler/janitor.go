package scheduler

import (
	"context"
	"time"

	"github.com/linkdeck/linkdeck/internal/logger"
	redisstore "github.com/linkdeck/linkdeck/internal/store/redis"
)

// DefaultJanitorInterval is how often the index janitor sweeps.
const DefaultJanitorInterval = 24 * time.Hour

// Janitor prunes dangling owner-index entries: bookmark IDs whose JSON
// key is gone (a crash between the delete and the index update, or a
// manually removed key). Listing already skips these, so the janitor
// is hygiene, not correctness.
type Janitor struct {
	store    indexStore
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// indexStore is the slice of the Redis store the janitor needs.
type indexStore interface {
	OwnerIDs(ctx context.Context) ([]string, error)
	IndexedIDs(ctx context.Context, ownerID string) ([]string, error)
	Exists(ctx context.Context, id string) (bool, error)
	PruneIndexEntry(ctx context.Context, ownerID, id string) error
	DropOwner(ctx context.Context, ownerID string) error
}

var _ indexStore = (*redisstore.Store)(nil)

// NewJanitor creates an index janitor.
func NewJanitor(store indexStore, log logger.Logger, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	return &Janitor{
		store:    store,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs one sweep immediately, then sweeps on the interval.
func (j *Janitor) Start(ctx context.Context) error {
	if err := j.Sweep(ctx); err != nil {
		j.logger.Warn("initial index sweep failed", logger.Error(err))
	}

	ticker := time.NewTicker(j.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := j.Sweep(ctx); err != nil {
					j.logger.Error("index sweep failed", logger.Error(err))
				}
			case <-j.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the janitor.
func (j *Janitor) Stop() {
	close(j.stopCh)
}

// Sweep walks every owner index and removes entries whose bookmark no
// longer exists. Per-entry failures are logged and skipped; the next
// sweep retries.
func (j *Janitor) Sweep(ctx context.Context) error {
	owners, err := j.store.OwnerIDs(ctx)
	if err != nil {
		return err
	}

	pruned := 0
	for _, owner := range owners {
		ids, err := j.store.IndexedIDs(ctx, owner)
		if err != nil {
			j.logger.Warn("failed to read owner index",
				logger.String("owner_id", owner),
				logger.Error(err))
			continue
		}

		if len(ids) == 0 {
			if err := j.store.DropOwner(ctx, owner); err != nil {
				j.logger.Warn("failed to drop empty owner",
					logger.String("owner_id", owner),
					logger.Error(err))
			}
			continue
		}

		for _, id := range ids {
			ok, err := j.store.Exists(ctx, id)
			if err != nil {
				j.logger.Warn("failed to check bookmark",
					logger.String("bookmark_id", id),
					logger.Error(err))
				continue
			}
			if ok {
				continue
			}

			if err := j.store.PruneIndexEntry(ctx, owner, id); err != nil {
				j.logger.Warn("failed to prune index entry",
					logger.String("owner_id", owner),
					logger.String("bookmark_id", id),
					logger.Error(err))
				continue
			}
			pruned++
		}
	}

	if pruned > 0 {
		j.logger.Info("index sweep completed", logger.Int("pruned", pruned))
	} else {
		j.logger.Debug("index sweep found nothing to prune")
	}

	return nil
}
