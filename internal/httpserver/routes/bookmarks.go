package routes

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
	"github.com/linkdeck/linkdeck/internal/httpserver/handlers"
	"github.com/linkdeck/linkdeck/internal/session"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Route("/api/bookmarks", func(r chi.Router) {
		r.Use(session.RequireSession("/login"))

		// The stream is long-lived; only the one-shot endpoints get a
		// request timeout.
		r.With(middleware.Timeout(10 * time.Second)).Get("/", handlers.ListBookmarks(d))
		r.With(middleware.Timeout(10 * time.Second)).Post("/", handlers.AddBookmark(d))
		r.With(middleware.Timeout(10 * time.Second)).Delete("/{id}", handlers.DeleteBookmark(d))

		r.Get("/stream", handlers.StreamBookmarks(d))
	})
}
