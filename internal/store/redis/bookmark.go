package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/linkdeck/linkdeck/internal/domain"
)

// ErrNotFound is returned when a bookmark ID does not exist in the store.
var ErrNotFound = errors.New("bookmark not found")

// Store handles Redis operations for bookmarks, sessions and the
// change-notification channel.
type Store struct {
	client *redis.Client
	now    func() time.Time
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		now:    time.Now,
	}
}

// Insert creates a new bookmark owned by ownerID. The store assigns the
// ID and the creation timestamp, then publishes a change event.
// The caller never renders the returned bookmark directly; visibility
// comes from the subscription-driven reload.
func (s *Store) Insert(ctx context.Context, title, url, ownerID string) (*domain.Bookmark, error) {
	bookmark := &domain.Bookmark{
		ID:        uuid.NewString(),
		Title:     title,
		URL:       url,
		OwnerID:   ownerID,
		CreatedAt: s.now(),
	}

	data, err := json.Marshal(bookmark)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bookmark: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, BookmarkKey(bookmark.ID), data, 0)
	pipe.ZAdd(ctx, OwnerIndexKey(ownerID), redis.Z{
		Score:  float64(bookmark.CreatedAt.UnixNano()),
		Member: bookmark.ID,
	})
	pipe.SAdd(ctx, AllOwnersKey(), ownerID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to save bookmark: %w", err)
	}

	s.publish(ctx, Event{Op: OpInsert, ID: bookmark.ID, OwnerID: ownerID})
	return bookmark, nil
}

// Get retrieves a bookmark by ID. Returns ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, id string) (*domain.Bookmark, error) {
	data, err := s.client.Get(ctx, BookmarkKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}

	var bookmark domain.Bookmark
	if err := json.Unmarshal(data, &bookmark); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bookmark: %w", err)
	}

	return &bookmark, nil
}

// ListByOwner retrieves all bookmarks owned by ownerID, ordered by
// creation timestamp descending (newest first). Entries whose JSON is
// missing or unreadable are skipped; the janitor prunes them later.
func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]domain.Bookmark, error) {
	ids, err := s.client.ZRevRange(ctx, OwnerIndexKey(ownerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmark IDs: %w", err)
	}

	if len(ids) == 0 {
		return []domain.Bookmark{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = BookmarkKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookmarks: %w", err)
	}

	bookmarks := make([]domain.Bookmark, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// nil entry: key expired or deleted between ZRevRange and MGet
			continue
		}
		var bookmark domain.Bookmark
		if err := json.Unmarshal([]byte(raw), &bookmark); err != nil {
			continue
		}
		bookmarks = append(bookmarks, bookmark)
	}

	return bookmarks, nil
}

// Delete removes a bookmark by ID and publishes a change event.
// Returns ErrNotFound if the ID does not exist.
func (s *Store) Delete(ctx context.Context, id string) error {
	// Resolve the owner first so the index entry can be removed too.
	bookmark, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, BookmarkKey(id))
	pipe.ZRem(ctx, OwnerIndexKey(bookmark.OwnerID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}

	s.publish(ctx, Event{Op: OpDelete, ID: id, OwnerID: bookmark.OwnerID})
	return nil
}

// OwnerIDs returns every owner that currently has an index entry.
// Used by the index janitor.
func (s *Store) OwnerIDs(ctx context.Context) ([]string, error) {
	owners, err := s.client.SMembers(ctx, AllOwnersKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get owner IDs: %w", err)
	}
	return owners, nil
}

// IndexedIDs returns the bookmark IDs present in an owner's index,
// newest first.
func (s *Store) IndexedIDs(ctx context.Context, ownerID string) ([]string, error) {
	ids, err := s.client.ZRevRange(ctx, OwnerIndexKey(ownerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read owner index: %w", err)
	}
	return ids, nil
}

// PruneIndexEntry removes a dangling ID from an owner's index without
// touching the bookmark key or publishing an event.
func (s *Store) PruneIndexEntry(ctx context.Context, ownerID, id string) error {
	if err := s.client.ZRem(ctx, OwnerIndexKey(ownerID), id).Err(); err != nil {
		return fmt.Errorf("failed to prune index entry: %w", err)
	}
	return nil
}

// DropOwner removes an owner from the owners set once its index is
// empty. The next insert re-adds it.
func (s *Store) DropOwner(ctx context.Context, ownerID string) error {
	n, err := s.client.ZCard(ctx, OwnerIndexKey(ownerID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check owner index: %w", err)
	}
	if n > 0 {
		return nil
	}
	if err := s.client.SRem(ctx, AllOwnersKey(), ownerID).Err(); err != nil {
		return fmt.Errorf("failed to drop owner: %w", err)
	}
	return nil
}

// Exists reports whether a bookmark key is present.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, BookmarkKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check bookmark: %w", err)
	}
	return n > 0, nil
}
