package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/linkdeck/linkdeck/internal/logger"
	redisstore "github.com/linkdeck/linkdeck/internal/store/redis"
)

// CookieName is the cookie carrying the signed session token.
const CookieName = "linkdeck_session"

// Manager owns the session lifecycle: establishing a session after a
// successful sign-in, resolving it on each request, and destroying it
// on sign-out. The rest of the application only ever sees a Principal
// in the request context.
type Manager struct {
	store  *redisstore.Store
	secret []byte
	ttl    time.Duration
	secure bool
	logger logger.Logger
}

// NewManager creates a session manager backed by the Redis store.
func NewManager(store *redisstore.Store, secret []byte, ttl time.Duration, secure bool, log logger.Logger) *Manager {
	return &Manager{
		store:  store,
		secret: secret,
		ttl:    ttl,
		secure: secure,
		logger: log,
	}
}

// Establish creates a session record for a signed-in user and sets the
// session cookie on the response.
func (m *Manager) Establish(ctx context.Context, w http.ResponseWriter, user *OAuthUser) (*redisstore.SessionRecord, error) {
	now := time.Now()
	rec := &redisstore.SessionRecord{
		ID:        uuid.NewString(),
		UserID:    user.ProviderUserID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	if err := m.store.SaveSession(ctx, rec); err != nil {
		return nil, err
	}

	token, err := SignToken(m.secret, rec.ID, rec.UserID, rec.ExpiresAt)
	if err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  rec.ExpiresAt,
	})

	return rec, nil
}

// Destroy ends a session and clears the cookie. Idempotent.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, sessionID string) error {
	m.clearCookie(w)
	return m.store.DeleteSession(ctx, sessionID)
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// Middleware resolves the session cookie into a Principal in the
// request context. A missing, invalid or expired token is silently
// ignored (the cookie is cleared); enforcement belongs to
// RequireSession.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := ParseToken(m.secret, cookie.Value)
		if err != nil {
			m.clearCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		rec, err := m.store.GetSession(r.Context(), claims.SessionID)
		if err != nil {
			if !errors.Is(err, redisstore.ErrSessionNotFound) {
				m.logger.Warn("session lookup failed", logger.Error(err))
			}
			m.clearCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := WithPrincipal(r.Context(), Principal{
			SessionID: rec.ID,
			UserID:    rec.UserID,
			Email:     rec.Email,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSession redirects unauthenticated requests to loginPath.
// It must run after Middleware. Handlers behind it can assume a
// Principal is present in the context.
func RequireSession(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PrincipalFromContext(r.Context()); !ok {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
