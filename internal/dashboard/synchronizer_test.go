package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/logger"
	redisstore "github.com/linkdeck/linkdeck/internal/store/redis"
)

// fakeLister serves a mutable collection and records every call.
type fakeLister struct {
	mu        sync.Mutex
	items     []domain.Bookmark
	err       error
	calls     int
	lastOwner string
	ordered   *callOrder

	// proceed, when non-nil, gates every list call so tests can hold a
	// reload open while more events arrive. entered reports that a call
	// has reached the gate.
	proceed chan struct{}
	entered chan struct{}
}

func (f *fakeLister) ListByOwner(_ context.Context, ownerID string) ([]domain.Bookmark, error) {
	if f.proceed != nil {
		if f.entered != nil {
			f.entered <- struct{}{}
		}
		<-f.proceed
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastOwner = ownerID
	if f.ordered != nil {
		f.ordered.record("list")
	}
	if f.err != nil {
		return nil, f.err
	}
	items := make([]domain.Bookmark, len(f.items))
	copy(items, f.items)
	return items, nil
}

func (f *fakeLister) set(items []domain.Bookmark, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = items
	f.err = err
}

func (f *fakeLister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeLister) owner() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOwner
}

type fakeSubscription struct {
	events  chan redisstore.Event
	mu      sync.Mutex
	cancels int
	once    sync.Once
}

func newFakeSubscription() *fakeSubscription {
	return &fakeSubscription{events: make(chan redisstore.Event, 16)}
}

func (s *fakeSubscription) Events() <-chan redisstore.Event { return s.events }

func (s *fakeSubscription) Cancel() {
	s.mu.Lock()
	s.cancels++
	s.mu.Unlock()
	s.once.Do(func() { close(s.events) })
}

func (s *fakeSubscription) cancelCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancels
}

func (s *fakeSubscription) push() {
	s.events <- redisstore.Event{Op: redisstore.OpInsert}
}

type fakeFeed struct {
	sub     *fakeSubscription
	err     error
	ordered *callOrder

	mu         sync.Mutex
	subscribed bool
}

func (f *fakeFeed) Subscribe(_ context.Context) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ordered != nil {
		f.ordered.record("subscribe")
	}
	if f.err != nil {
		return nil, f.err
	}
	f.subscribed = true
	return f.sub, nil
}

func (f *fakeFeed) wasSubscribed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribed
}

// callOrder records the sequence of collaborator calls.
type callOrder struct {
	mu    sync.Mutex
	calls []string
}

func (c *callOrder) record(name string) {
	c.mu.Lock()
	c.calls = append(c.calls, name)
	c.mu.Unlock()
}

func (c *callOrder) sequence() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func bookmarksNamed(titles ...string) []domain.Bookmark {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	items := make([]domain.Bookmark, len(titles))
	for i, title := range titles {
		// Newest first, matching the store's ordering contract.
		items[i] = domain.Bookmark{
			ID:        title,
			Title:     title,
			URL:       "https://" + title + ".example.com",
			OwnerID:   "user-1",
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		}
	}
	return items
}

func titlesOf(items []domain.Bookmark) []string {
	titles := make([]string, len(items))
	for i, b := range items {
		titles[i] = b.Title
	}
	return titles
}

func equalTitles(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// waitChanged fails the test if no change signal arrives in time.
func waitChanged(t *testing.T, s *Synchronizer) {
	t.Helper()
	select {
	case <-s.Changed():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change signal")
	}
}

func newTestSynchronizer(lister *fakeLister, feed *fakeFeed) *Synchronizer {
	return NewSynchronizer(lister, feed, "user-1", 0, logger.Nop())
}

func TestStartLoadsBeforeSubscribing(t *testing.T) {
	order := &callOrder{}
	lister := &fakeLister{items: bookmarksNamed("B", "A"), ordered: order}
	feed := &fakeFeed{sub: newFakeSubscription(), ordered: order}

	s := newTestSynchronizer(lister, feed)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Close()

	seq := order.sequence()
	if len(seq) != 2 || seq[0] != "list" || seq[1] != "subscribe" {
		t.Errorf("call order = %v, want [list subscribe]", seq)
	}

	items, loading, notice := s.Snapshot()
	if loading {
		t.Error("loading = true after Start, want false")
	}
	if notice != "" {
		t.Errorf("notice = %q, want empty", notice)
	}
	if !equalTitles(titlesOf(items), []string{"B", "A"}) {
		t.Errorf("items = %v, want [B A]", titlesOf(items))
	}
	if !domain.ByCreatedDesc(items) {
		t.Error("items not ordered newest-first")
	}
}

func TestReloadReplacesEntireState(t *testing.T) {
	lister := &fakeLister{items: bookmarksNamed("B", "A")}
	feed := &fakeFeed{sub: newFakeSubscription()}

	s := newTestSynchronizer(lister, feed)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Close()
	waitChanged(t, s) // initial load signal

	// The store changed completely; no diff of the old state survives.
	lister.set(bookmarksNamed("D", "C"), nil)
	feed.sub.push()
	waitChanged(t, s)

	items, _, _ := s.Snapshot()
	if !equalTitles(titlesOf(items), []string{"D", "C"}) {
		t.Errorf("items after reload = %v, want [D C]", titlesOf(items))
	}
}

func TestDeleteVisibleThroughReload(t *testing.T) {
	lister := &fakeLister{items: bookmarksNamed("B", "A")}
	feed := &fakeFeed{sub: newFakeSubscription()}

	s := newTestSynchronizer(lister, feed)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Close()
	waitChanged(t, s)

	// A deleted remotely, regardless of which client asked.
	lister.set(bookmarksNamed("B"), nil)
	feed.sub.push()
	waitChanged(t, s)

	items, _, _ := s.Snapshot()
	if !equalTitles(titlesOf(items), []string{"B"}) {
		t.Errorf("items = %v, want [B]", titlesOf(items))
	}
}

func TestInitialLoadFailureKeepsListening(t *testing.T) {
	lister := &fakeLister{err: errors.New("store down")}
	feed := &fakeFeed{sub: newFakeSubscription()}

	s := newTestSynchronizer(lister, feed)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Close()
	waitChanged(t, s)

	items, loading, notice := s.Snapshot()
	if loading {
		t.Error("loading = true, want false once the initial load settled")
	}
	if len(items) != 0 {
		t.Errorf("items = %v, want empty", titlesOf(items))
	}
	if notice == "" {
		t.Error("notice empty, want a non-fatal load failure notice")
	}

	// The store recovers; the next event repairs the view.
	lister.set(bookmarksNamed("A"), nil)
	feed.sub.push()
	waitChanged(t, s)

	items, _, notice = s.Snapshot()
	if !equalTitles(titlesOf(items), []string{"A"}) {
		t.Errorf("items after recovery = %v, want [A]", titlesOf(items))
	}
	if notice != "" {
		t.Errorf("notice = %q after recovery, want empty", notice)
	}
}

func TestReloadFailurePreservesPriorState(t *testing.T) {
	lister := &fakeLister{items: bookmarksNamed("B", "A")}
	feed := &fakeFeed{sub: newFakeSubscription()}

	s := newTestSynchronizer(lister, feed)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Close()
	waitChanged(t, s)

	lister.set(nil, errors.New("store down"))
	feed.sub.push()
	waitChanged(t, s)

	items, _, notice := s.Snapshot()
	if !equalTitles(titlesOf(items), []string{"B", "A"}) {
		t.Errorf("items = %v, want prior state [B A]", titlesOf(items))
	}
	if notice == "" {
		t.Error("notice empty, want a refresh failure notice")
	}
}

func TestCloseCancelsExactlyOnceAndStopsReloads(t *testing.T) {
	lister := &fakeLister{items: bookmarksNamed("A")}
	feed := &fakeFeed{sub: newFakeSubscription()}

	s := newTestSynchronizer(lister, feed)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	s.Close()
	s.Close() // idempotent

	if got := feed.sub.cancelCount(); got != 1 {
		t.Errorf("subscription cancelled %d times, want 1", got)
	}

	calls := lister.callCount()
	time.Sleep(50 * time.Millisecond)
	if got := lister.callCount(); got != calls {
		t.Errorf("list calls went from %d to %d after Close", calls, got)
	}

	select {
	case <-s.Done():
	default:
		t.Error("Done() not closed after Close")
	}
}

func TestEventBurstCoalescesIntoSerialReloads(t *testing.T) {
	proceed := make(chan struct{})
	entered := make(chan struct{}, 8)
	lister := &fakeLister{items: bookmarksNamed("A"), proceed: proceed, entered: entered}
	feed := &fakeFeed{sub: newFakeSubscription()}

	s := newTestSynchronizer(lister, feed)

	started := make(chan error, 1)
	go func() { started <- s.Start(context.Background()) }()
	<-entered
	proceed <- struct{}{} // release the initial load
	if err := <-started; err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() {
		close(proceed)
		s.Close()
	}()
	waitChanged(t, s)

	// First event starts a reload which we hold open while three more
	// events queue up behind it.
	feed.sub.push()
	<-entered
	feed.sub.push()
	feed.sub.push()
	feed.sub.push()

	proceed <- struct{}{} // first reload completes
	waitChanged(t, s)
	// The three queued events collapse into a single follow-up reload.
	<-entered
	proceed <- struct{}{}
	waitChanged(t, s)

	// Initial load + two reloads: the burst of four events did not
	// produce four list calls.
	if got := lister.callCount(); got != 3 {
		t.Errorf("list calls = %d, want 3 (initial + 2 coalesced reloads)", got)
	}
}

func TestStartSubscribeFailure(t *testing.T) {
	lister := &fakeLister{items: bookmarksNamed("A")}
	feed := &fakeFeed{err: errors.New("pubsub down")}

	s := newTestSynchronizer(lister, feed)
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("Start() expected error when subscribe fails")
	}

	// Close must not hang on a synchronizer that never got a loop.
	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close() hung after failed Start")
	}
}
