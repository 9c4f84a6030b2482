package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/session"
)

type fakeSessions struct {
	p  session.Principal
	ok bool
}

func (f fakeSessions) CurrentSession(context.Context) (session.Principal, bool) {
	return f.p, f.ok
}

func signedIn(sessionID, userID string) *Guard {
	return NewGuard(fakeSessions{
		p:  session.Principal{SessionID: sessionID, UserID: userID, Email: userID + "@example.com"},
		ok: true,
	})
}

func TestActivateUnauthenticated(t *testing.T) {
	lister := &fakeLister{items: bookmarksNamed("A")}
	feed := &fakeFeed{sub: newFakeSubscription()}

	v := NewView(NewGuard(fakeSessions{}), lister, feed, &fakeMutator{}, 0, logger.Nop())
	err := v.Activate(context.Background())
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("Activate() error = %v, want ErrNotAuthenticated", err)
	}

	// The guard check precedes everything: no load, no subscription.
	if got := lister.callCount(); got != 0 {
		t.Errorf("list calls = %d, want 0", got)
	}
	if feed.wasSubscribed() {
		t.Error("feed subscribed despite failed guard check")
	}

	// Close must be safe on a rejected activation.
	v.Close()
}

func TestActivateScopesToPrincipal(t *testing.T) {
	lister := &fakeLister{items: bookmarksNamed("A")}
	feed := &fakeFeed{sub: newFakeSubscription()}

	v := NewView(signedIn("sess-1", "user-42"), lister, feed, &fakeMutator{}, 0, logger.Nop())
	if err := v.Activate(context.Background()); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	defer v.Close()

	if got := lister.owner(); got != "user-42" {
		t.Errorf("list scoped to %q, want user-42", got)
	}
	if got := v.Principal().UserID; got != "user-42" {
		t.Errorf("Principal().UserID = %q, want user-42", got)
	}
}

func TestGuardReadsRequestContext(t *testing.T) {
	g := NewGuard(nil)

	if _, ok := g.Check(context.Background()); ok {
		t.Error("Check() = true on a bare context, want false")
	}

	p := session.Principal{SessionID: "sess-1", UserID: "user-1"}
	ctx := session.WithPrincipal(context.Background(), p)
	got, ok := g.Check(ctx)
	if !ok {
		t.Fatal("Check() = false on a context carrying a principal")
	}
	if got != p {
		t.Errorf("Check() principal = %+v, want %+v", got, p)
	}
}

// TestAddRoundTrip walks the full add flow: submit fills the draft,
// the gateway clears it and issues the insert, and the new row becomes
// visible only through the event-driven reload.
func TestAddRoundTrip(t *testing.T) {
	lister := &fakeLister{items: bookmarksNamed("A")}
	feed := &fakeFeed{sub: newFakeSubscription()}
	mutator := &fakeMutator{}

	v := NewView(signedIn("sess-1", "user-1"), lister, feed, mutator, 0, logger.Nop())
	if err := v.Activate(context.Background()); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	defer v.Close()
	waitChanged(t, v.sync)

	if err := v.SubmitAdd(context.Background(), "Docs", "https://go.dev/doc"); err != nil {
		t.Fatalf("SubmitAdd() error = %v", err)
	}
	if title, url := v.DraftFields(); title != "" || url != "" {
		t.Errorf("draft = (%q, %q) after submit, want cleared", title, url)
	}

	calls := mutator.insertCalls()
	if len(calls) != 1 || calls[0].ownerID != "user-1" {
		t.Fatalf("insert calls = %+v, want one call owned by user-1", calls)
	}

	// The row is not rendered until the store announces it.
	items, _, _ := v.Snapshot()
	if len(items) != 1 {
		t.Fatalf("items before reload = %v, want just [A]", titlesOf(items))
	}

	docs := bookmarksNamed("Docs", "A")
	lister.set(docs, nil)
	feed.sub.push()
	waitChanged(t, v.sync)

	items, _, _ = v.Snapshot()
	if !equalTitles(titlesOf(items), []string{"Docs", "A"}) {
		t.Errorf("items after reload = %v, want [Docs A]", titlesOf(items))
	}
}

func TestRegistryCloseAllTearsDownSessionViews(t *testing.T) {
	reg := NewRegistry()

	subA, subB := newFakeSubscription(), newFakeSubscription()
	viewA := NewView(signedIn("sess-1", "user-1"), &fakeLister{}, &fakeFeed{sub: subA}, &fakeMutator{}, 0, logger.Nop())
	viewB := NewView(signedIn("sess-1", "user-1"), &fakeLister{}, &fakeFeed{sub: subB}, &fakeMutator{}, 0, logger.Nop())
	other := NewView(signedIn("sess-2", "user-2"), &fakeLister{}, &fakeFeed{sub: newFakeSubscription()}, &fakeMutator{}, 0, logger.Nop())

	for _, v := range []*View{viewA, viewB, other} {
		if err := v.Activate(context.Background()); err != nil {
			t.Fatalf("Activate() error = %v", err)
		}
	}
	defer other.Close()

	reg.Add("sess-1", viewA)
	reg.Add("sess-1", viewB)
	reg.Add("sess-2", other)

	reg.CloseAll("sess-1")

	if got := subA.cancelCount(); got != 1 {
		t.Errorf("viewA subscription cancelled %d times, want 1", got)
	}
	if got := subB.cancelCount(); got != 1 {
		t.Errorf("viewB subscription cancelled %d times, want 1", got)
	}
	select {
	case <-viewA.Done():
	default:
		t.Error("viewA still live after CloseAll")
	}

	if got := reg.Count("sess-1"); got != 0 {
		t.Errorf("Count(sess-1) = %d, want 0", got)
	}
	if got := reg.Count("sess-2"); got != 1 {
		t.Errorf("Count(sess-2) = %d, want 1", got)
	}

	// Closing again through the view is still safe.
	viewA.Close()
}

func TestRegistryShutdownClosesEverything(t *testing.T) {
	reg := NewRegistry()

	subs := []*fakeSubscription{newFakeSubscription(), newFakeSubscription()}
	for i, sub := range subs {
		v := NewView(signedIn("sess-1", "user-1"), &fakeLister{}, &fakeFeed{sub: sub}, &fakeMutator{}, 0, logger.Nop())
		if err := v.Activate(context.Background()); err != nil {
			t.Fatalf("Activate() error = %v", err)
		}
		if i == 0 {
			reg.Add("sess-1", v)
		} else {
			reg.Add("sess-2", v)
		}
	}

	reg.Shutdown()

	deadline := time.After(2 * time.Second)
	for i, sub := range subs {
		select {
		case _, ok := <-sub.Events():
			if ok {
				t.Errorf("subscription %d delivered an event after Shutdown", i)
			}
		case <-deadline:
			t.Fatalf("subscription %d not cancelled by Shutdown", i)
		}
	}
}
