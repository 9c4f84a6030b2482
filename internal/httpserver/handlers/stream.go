package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/linkdeck/linkdeck/internal/dashboard"
	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
	"github.com/linkdeck/linkdeck/internal/logger"
)

type streamPayload struct {
	Bookmarks []domain.Bookmark `json:"bookmarks"`
	Loading   bool              `json:"loading"`
	Notice    string            `json:"notice,omitempty"`
}

// StreamBookmarks is the active view: opening the stream activates a
// dashboard view (guard, initial load, subscription) and every change
// signal pushes the full current snapshot as an SSE event. Closing the
// connection, or logout tearing the view down, ends the stream and
// cancels the subscription.
func StreamBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		view := dashboard.NewView(d.Guard, d.Store, d.Feed, d.Store, d.StoreTimeout, d.Logger)
		if err := view.Activate(r.Context()); err != nil {
			if errors.Is(err, dashboard.ErrNotAuthenticated) {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			d.Logger.Warn("view activation failed", logger.Error(err))
			writeJSON(w, http.StatusBadGateway, noticeResponse{Notice: "failed to open bookmark stream"})
			return
		}

		p := view.Principal()
		d.Views.Add(p.SessionID, view)
		defer func() {
			view.Close()
			d.Views.Remove(p.SessionID, view)
		}()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		d.Logger.Info("bookmark stream opened",
			logger.String("user_id", p.UserID),
			logger.String("session_id", p.SessionID))

		writeSnapshot(w, view)
		flusher.Flush()

		for {
			select {
			case <-view.Changed():
				writeSnapshot(w, view)
				flusher.Flush()
			case <-view.Done():
				// Closed from elsewhere (logout or shutdown).
				d.Logger.Debug("bookmark stream closed by teardown",
					logger.String("session_id", p.SessionID))
				return
			case <-r.Context().Done():
				d.Logger.Debug("bookmark stream client disconnected",
					logger.String("session_id", p.SessionID))
				return
			}
		}
	}
}

func writeSnapshot(w http.ResponseWriter, view *dashboard.View) {
	bookmarks, loading, notice := view.Snapshot()
	data, err := json.Marshal(streamPayload{
		Bookmarks: bookmarks,
		Loading:   loading,
		Notice:    notice,
	})
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: bookmarks\ndata: %s\n\n", data)
}
