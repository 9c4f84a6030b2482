package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when a session ID does not exist or
// has expired.
var ErrSessionNotFound = errors.New("session not found")

// SessionRecord is the server-side state of one authenticated session.
// The record's lifetime in Redis (key TTL) is the session's validity.
type SessionRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SaveSession stores a session record with a TTL matching its expiry.
func (s *Store) SaveSession(ctx context.Context, rec *SessionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", rec.ID)
	}

	if err := s.client.Set(ctx, SessionKey(rec.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession retrieves a session record by ID. Returns
// ErrSessionNotFound when the record is absent or already expired.
func (s *Store) GetSession(ctx context.Context, id string) (*SessionRecord, error) {
	data, err := s.client.Get(ctx, SessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var rec SessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if s.now().After(rec.ExpiresAt) {
		return nil, ErrSessionNotFound
	}

	return &rec, nil
}

// DeleteSession ends a session. Deleting an absent session is not an
// error: sign-out must be idempotent.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, SessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
