package routes

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
	"github.com/linkdeck/linkdeck/internal/httpserver/handlers"
	"github.com/linkdeck/linkdeck/internal/httpserver/mw"
	"github.com/linkdeck/linkdeck/internal/session"
)

func init() { Register(registerAuth) }

func registerAuth(r chi.Router, d deps.Deps) {
	// Sign-in endpoints face the open internet; keep a per-IP budget.
	limited := r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:             10,
		RefillPerIPPerMin: 30,
		MaxEntries:        10_000,
		SweepInterval:     time.Minute,
		IdleTTL:           15 * time.Minute,
		TrustProxy:        d.TrustProxy,
	}))

	limited.Get("/login", handlers.Login(d))
	limited.Get("/auth/callback", handlers.Callback(d))

	r.With(session.RequireSession("/login")).Post("/logout", handlers.Logout(d))
}
