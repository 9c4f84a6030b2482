package dashboard

import (
	"context"

	"github.com/linkdeck/linkdeck/internal/session"
)

// SessionSource exposes the ambient authentication state to the guard.
// Production code reads the principal the session middleware put in the
// request context; tests inject fakes.
type SessionSource interface {
	CurrentSession(ctx context.Context) (session.Principal, bool)
}

type contextSource struct{}

func (contextSource) CurrentSession(ctx context.Context) (session.Principal, bool) {
	return session.PrincipalFromContext(ctx)
}

// NewContextSource returns the SessionSource backed by the request
// context.
func NewContextSource() SessionSource { return contextSource{} }

// Guard gates view activation on a valid session. The check runs
// strictly before any bookmark data is requested: a failed check means
// no load and no subscription, only a redirect by the HTTP layer.
type Guard struct {
	sessions SessionSource
}

// NewGuard creates a guard reading from src, defaulting to the
// request-context source when src is nil.
func NewGuard(src SessionSource) *Guard {
	if src == nil {
		src = contextSource{}
	}
	return &Guard{sessions: src}
}

// Check reports whether the caller is authenticated and, if so, which
// principal the view is scoped to. Read-only: the only side effect of
// a failed check is the caller's redirect.
func (g *Guard) Check(ctx context.Context) (session.Principal, bool) {
	return g.sessions.CurrentSession(ctx)
}
