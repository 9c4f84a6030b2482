package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// Readyz reports whether the service can serve traffic: Redis must
// answer a ping, since both the store and the change channel live
// there.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := d.RedisClient.Ping(ctx).Err(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false, Error: err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}
