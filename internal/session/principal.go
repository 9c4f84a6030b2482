package session

import "context"

// Principal is the authenticated identity attached to a request once
// the session middleware has validated the cookie and loaded the
// session record. Downstream code reads it from the context; only the
// identity layer ever writes it.
type Principal struct {
	SessionID string
	UserID    string
	Email     string
}

type principalKey struct{}

// WithPrincipal stores the principal in the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext extracts the principal from the context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
