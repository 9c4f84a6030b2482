package redis

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/linkdeck/linkdeck/internal/utils"
)

// Event operation kinds carried on the change channel.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Event is one change notification for the bookmark collection. The
// channel is collection-wide: every mutation is delivered to every
// subscriber regardless of which principal caused it. Consumers are
// expected to reload rather than interpret the payload.
type Event struct {
	Op      string `json:"op"`
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
}

// Subscription is a cancellable handle on the change channel.
// Events() is closed after Cancel() returns; no event is delivered
// afterwards.
type Subscription struct {
	events chan Event
	cancel func()
	once   sync.Once
}

// Events returns the delivery channel.
func (s *Subscription) Events() <-chan Event { return s.events }

// Cancel stops delivery and releases the underlying pub/sub
// connection. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// Subscribe opens a change-notification subscription on the bookmark
// collection. Delivery is asynchronous and non-blocking for the
// publisher; a slow consumer drops events, which is acceptable because
// consumers reload the full collection on any signal.
func (s *Store) Subscribe(ctx context.Context) (*Subscription, error) {
	pubsub := s.client.Subscribe(ctx, ChannelBookmarkEvents)

	// Force the subscription to be established before returning, so an
	// event published right after Subscribe cannot be missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		utils.Close(pubsub)
		return nil, err
	}

	events := make(chan Event, 16)
	done := make(chan struct{})

	sub := &Subscription{
		events: events,
		cancel: func() {
			utils.Close(pubsub)
			<-done
		},
	}

	go func() {
		defer close(done)
		defer close(events)
		for msg := range pubsub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue
			}
			select {
			case events <- ev:
			default:
				// consumer is behind; the next reload covers this event
			}
		}
	}()

	return sub, nil
}

// publish sends a change event on the collection channel. Best effort:
// a failed publish is invisible to subscribers until the next event,
// so it is not treated as a mutation failure.
func (s *Store) publish(ctx context.Context, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_ = s.client.Publish(ctx, ChannelBookmarkEvents, data).Err()
}
