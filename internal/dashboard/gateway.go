package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/logger"
)

// Mutator issues insert and delete operations against the remote
// store. Results never feed the view directly; visibility comes from
// the subscription-driven reload.
type Mutator interface {
	Insert(ctx context.Context, title, url, ownerID string) (*domain.Bookmark, error)
	Delete(ctx context.Context, id string) error
}

// Gateway translates user intent into scoped store operations.
type Gateway struct {
	store   Mutator
	timeout time.Duration
	logger  logger.Logger
}

// NewGateway creates a mutation gateway over store.
func NewGateway(store Mutator, timeout time.Duration, log logger.Logger) *Gateway {
	return &Gateway{
		store:   store,
		timeout: timeout,
		logger:  log,
	}
}

// Add validates the draft and, if both fields are non-empty, clears it
// and issues an insert owned by ownerID. An empty title or url is a
// silent no-op: no request is sent, no error surfaced, the draft keeps
// its fields. The draft clears before the store acknowledges; the new
// row appears only once the synchronizer reloads.
func (g *Gateway) Add(ctx context.Context, draft *Draft, ownerID string) error {
	title, url := draft.Fields()
	title = strings.TrimSpace(title)
	url = strings.TrimSpace(url)
	if title == "" || url == "" {
		return nil
	}

	draft.Clear()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if _, err := g.store.Insert(ctx, title, url, ownerID); err != nil {
		g.logger.Warn("bookmark insert failed",
			logger.String("owner_id", ownerID),
			logger.Error(err))
		return fmt.Errorf("add bookmark: %w", err)
	}
	return nil
}

// Remove issues a delete by identifier. No client-side ownership check
// is performed; lists are owner-scoped at the store.
func (g *Gateway) Remove(ctx context.Context, id string) error {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if err := g.store.Delete(ctx, id); err != nil {
		g.logger.Warn("bookmark delete failed",
			logger.String("bookmark_id", id),
			logger.Error(err))
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return nil
}
