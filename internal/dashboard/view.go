package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/session"
)

// ErrNotAuthenticated is returned by Activate when the guard finds no
// valid session. It is control flow, not a failure: the HTTP layer
// answers with a redirect to the sign-in page.
var ErrNotAuthenticated = errors.New("no authenticated session")

// View is one activation of the bookmark dashboard: guard, then
// synchronizer, then user-triggered gateway operations, then teardown.
// The ordering is fixed: the guard check completes before any data is
// requested, and the initial load completes before the subscription
// opens.
type View struct {
	guard   *Guard
	store   Lister
	feed    ChangeFeed
	gateway *Gateway
	timeout time.Duration
	logger  logger.Logger

	draft     Draft
	principal session.Principal
	sync      *Synchronizer
}

// NewView assembles a view from its collaborators. Nothing runs until
// Activate.
func NewView(guard *Guard, store Lister, feed ChangeFeed, mutator Mutator, timeout time.Duration, log logger.Logger) *View {
	return &View{
		guard:   guard,
		store:   store,
		feed:    feed,
		gateway: NewGateway(mutator, timeout, log),
		timeout: timeout,
		logger:  log,
	}
}

// Activate runs the guard and, on success, starts synchronization for
// the caller's principal. On ErrNotAuthenticated no store request has
// been made.
func (v *View) Activate(ctx context.Context) error {
	p, ok := v.guard.Check(ctx)
	if !ok {
		return ErrNotAuthenticated
	}
	v.principal = p

	v.sync = NewSynchronizer(v.store, v.feed, p.UserID, v.timeout, v.logger)
	return v.sync.Start(ctx)
}

// Close tears the view down, cancelling the subscription. Idempotent;
// safe to call on a view whose activation was rejected by the guard.
func (v *View) Close() {
	if v.sync != nil {
		v.sync.Close()
	}
}

// Snapshot returns the current view state. Valid only after a
// successful Activate.
func (v *View) Snapshot() ([]domain.Bookmark, bool, string) {
	return v.sync.Snapshot()
}

// Changed exposes the synchronizer's change signal.
func (v *View) Changed() <-chan struct{} { return v.sync.Changed() }

// Done is closed when synchronization has stopped, typically because
// the view was closed from another goroutine (logout, shutdown).
func (v *View) Done() <-chan struct{} { return v.sync.Done() }

// SubmitAdd fills the draft with the given fields and submits it
// through the gateway, scoped to the view's principal.
func (v *View) SubmitAdd(ctx context.Context, title, url string) error {
	v.draft.Set(title, url)
	return v.gateway.Add(ctx, &v.draft, v.principal.UserID)
}

// Remove deletes a bookmark by identifier through the gateway.
func (v *View) Remove(ctx context.Context, id string) error {
	return v.gateway.Remove(ctx, id)
}

// DraftFields returns the current add-form field values, so callers
// can observe the optimistic clear independently from the reload.
func (v *View) DraftFields() (title, url string) {
	return v.draft.Fields()
}

// Principal returns the principal the view is scoped to.
func (v *View) Principal() session.Principal { return v.principal }
