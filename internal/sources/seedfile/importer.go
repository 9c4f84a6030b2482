package seedfile

import (
	"context"
	"fmt"

	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/logger"
)

// seedStore is the slice of the bookmark store the importer needs.
type seedStore interface {
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Bookmark, error)
	Insert(ctx context.Context, title, url, ownerID string) (*domain.Bookmark, error)
}

// Importer inserts seed bookmarks at startup. Idempotent: an owner's
// existing URLs are skipped, so restarting the service does not
// duplicate rows.
type Importer struct {
	loader *Loader
	store  seedStore
	logger logger.Logger
}

// NewImporter creates a seed importer for filePath.
func NewImporter(filePath string, store seedStore, log logger.Logger) *Importer {
	return &Importer{
		loader: NewLoader(filePath),
		store:  store,
		logger: log,
	}
}

// Run performs one import pass.
func (i *Importer) Run(ctx context.Context) error {
	config, err := i.loader.Load()
	if err != nil {
		return err
	}

	imported := 0
	for _, group := range config {
		existing, err := i.store.ListByOwner(ctx, group.Owner)
		if err != nil {
			return fmt.Errorf("failed to list bookmarks for seed owner %s: %w", group.Owner, err)
		}

		seen := make(map[string]bool, len(existing))
		for _, b := range existing {
			seen[b.URL] = true
		}

		for _, entry := range group.Bookmarks {
			if seen[entry.URL] {
				continue
			}
			if _, err := i.store.Insert(ctx, entry.Title, entry.URL, group.Owner); err != nil {
				return fmt.Errorf("failed to seed bookmark %s: %w", entry.URL, err)
			}
			imported++
		}
	}

	if imported > 0 {
		i.logger.Info("seed import completed", logger.Int("imported", imported))
	} else {
		i.logger.Debug("seed import found nothing new")
	}

	return nil
}
