package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/logger"
	redisstore "github.com/linkdeck/linkdeck/internal/store/redis"
)

// Lister loads the full current collection for one owner, ordered by
// creation timestamp descending.
type Lister interface {
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Bookmark, error)
}

// Subscription is a cancellable handle on the collection change
// channel. Events() must be closed once Cancel() has taken effect.
type Subscription interface {
	Events() <-chan redisstore.Event
	Cancel()
}

// ChangeFeed opens subscriptions on the bookmark collection. The feed
// is collection-wide: events are delivered for every mutation, not
// just those of the subscribing owner.
type ChangeFeed interface {
	Subscribe(ctx context.Context) (Subscription, error)
}

// storeFeed adapts the Redis store's concrete subscription to the
// ChangeFeed interface.
type storeFeed struct {
	store *redisstore.Store
}

func (f storeFeed) Subscribe(ctx context.Context) (Subscription, error) {
	return f.store.Subscribe(ctx)
}

// NewStoreFeed wraps a Redis store as a ChangeFeed.
func NewStoreFeed(s *redisstore.Store) ChangeFeed { return storeFeed{store: s} }

// Synchronizer keeps a local ordered view of one owner's bookmarks
// consistent with the remote store for the lifetime of an active view.
//
// Policy is reload-on-signal: events are never interpreted as diffs.
// Any event triggers a full re-list and wholesale replacement of the
// view state, so the state always equals one consistent snapshot of
// the store. Events arriving while a reload runs are coalesced into a
// single follow-up reload; reloads are serialized, so the installed
// state is always the most recently completed reload.
type Synchronizer struct {
	store   Lister
	feed    ChangeFeed
	ownerID string
	timeout time.Duration
	logger  logger.Logger

	mu      sync.RWMutex
	items   []domain.Bookmark
	loading bool
	notice  string

	sub       Subscription
	done      chan struct{}
	closeOnce sync.Once
	changed   chan struct{}
}

// NewSynchronizer creates a synchronizer scoped to ownerID. Nothing is
// loaded until Start.
func NewSynchronizer(store Lister, feed ChangeFeed, ownerID string, timeout time.Duration, log logger.Logger) *Synchronizer {
	return &Synchronizer{
		store:   store,
		feed:    feed,
		ownerID: ownerID,
		timeout: timeout,
		logger:  log,
		loading: true,
		done:    make(chan struct{}),
		changed: make(chan struct{}, 1),
	}
}

// Start performs the initial load and then opens the subscription, in
// that order: an event can never race an unfinished initial load.
// An initial load failure keeps the (empty) prior state, records a
// non-fatal notice and still opens the subscription, so a later event
// can repair the view. A subscribe failure is returned: without a
// channel there is nothing to keep the view live.
func (s *Synchronizer) Start(ctx context.Context) error {
	if err := s.load(ctx); err != nil {
		s.setNotice(fmt.Sprintf("failed to load bookmarks: %v", err))
		s.logger.Warn("initial bookmark load failed",
			logger.String("owner_id", s.ownerID),
			logger.Error(err))
	}

	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	s.signal()

	sub, err := s.feed.Subscribe(ctx)
	if err != nil {
		close(s.done)
		return fmt.Errorf("failed to subscribe to bookmark changes: %w", err)
	}
	s.sub = sub

	go s.run(ctx)
	return nil
}

// run is the single event loop: one reload at a time, pending events
// drained beforehand so a burst collapses into one reload.
func (s *Synchronizer) run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case _, ok := <-s.sub.Events():
			if !ok {
				return
			}
			if !s.drain() {
				return
			}
			s.reload(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// drain consumes queued events without blocking. Returns false when
// the channel is closed.
func (s *Synchronizer) drain() bool {
	for {
		select {
		case _, ok := <-s.sub.Events():
			if !ok {
				return false
			}
		default:
			return true
		}
	}
}

// reload re-requests the full collection and replaces the view state.
// On failure the prior rendered state is preserved (never flash to
// empty) and the error is kept as a non-fatal notice.
func (s *Synchronizer) reload(ctx context.Context) {
	if err := s.load(ctx); err != nil {
		s.setNotice(fmt.Sprintf("failed to refresh bookmarks: %v", err))
		s.logger.Warn("bookmark reload failed",
			logger.String("owner_id", s.ownerID),
			logger.Error(err))
	}
	s.signal()
}

func (s *Synchronizer) load(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	items, err := s.store.ListByOwner(ctx, s.ownerID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.items = items
	s.notice = ""
	s.mu.Unlock()
	return nil
}

func (s *Synchronizer) setNotice(msg string) {
	s.mu.Lock()
	s.notice = msg
	s.mu.Unlock()
}

// signal wakes renderers waiting on Changed. Coalescing: a pending
// signal is enough, renderers always read the latest snapshot.
func (s *Synchronizer) signal() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// Snapshot returns a copy of the current view state: the ordered
// items, whether the initial load is still outstanding, and the last
// non-fatal notice ("" when healthy).
func (s *Synchronizer) Snapshot() ([]domain.Bookmark, bool, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.Bookmark, len(s.items))
	copy(items, s.items)
	return items, s.loading, s.notice
}

// Changed returns the signal channel renderers select on. One pending
// signal at most; read Snapshot after each receive.
func (s *Synchronizer) Changed() <-chan struct{} { return s.changed }

// Done is closed once the event loop has exited, whether through
// Close, context cancellation or channel closure.
func (s *Synchronizer) Done() <-chan struct{} { return s.done }

// Close cancels the subscription and waits for the event loop to
// exit. After Close returns no reload will run. Idempotent.
func (s *Synchronizer) Close() {
	s.closeOnce.Do(func() {
		if s.sub != nil {
			s.sub.Cancel()
		}
		<-s.done
	})
}
