package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linkdeck/linkdeck/internal/dashboard"
	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/session"
	redisstore "github.com/linkdeck/linkdeck/internal/store/redis"
)

type bookmarkListResponse struct {
	Bookmarks []domain.Bookmark `json:"bookmarks"`
}

type noticeResponse struct {
	Notice string `json:"notice"`
}

type addBookmarkRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ListBookmarks serves a one-shot snapshot of the caller's collection:
// exactly the query the synchronizer runs on load and reload.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := session.PrincipalFromContext(r.Context())

		ctx, cancel := storeCtx(r.Context(), d)
		defer cancel()

		bookmarks, err := d.Store.ListByOwner(ctx, p.UserID)
		if err != nil {
			d.Logger.Warn("bookmark list failed",
				logger.String("owner_id", p.UserID),
				logger.Error(err))
			writeJSON(w, http.StatusBadGateway, noticeResponse{Notice: "failed to load bookmarks"})
			return
		}

		writeJSON(w, http.StatusOK, bookmarkListResponse{Bookmarks: bookmarks})
	}
}

// AddBookmark submits the add form through the mutation gateway. An
// empty title or url is a silent no-op: the gateway sends nothing and
// the handler still answers 204. The created row is not returned;
// clients see it through the stream's reload.
func AddBookmark(d deps.Deps) http.HandlerFunc {
	gateway := dashboard.NewGateway(d.Store, d.StoreTimeout, d.Logger)

	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := session.PrincipalFromContext(r.Context())

		var req addBookmarkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, noticeResponse{Notice: "invalid request body"})
			return
		}

		draft := &dashboard.Draft{}
		draft.Set(req.Title, req.URL)

		if err := gateway.Add(r.Context(), draft, p.UserID); err != nil {
			writeJSON(w, http.StatusBadGateway, noticeResponse{Notice: "failed to add bookmark"})
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteBookmark removes a bookmark by identifier. The visible removal
// happens through the subscription-driven reload, not this response.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	gateway := dashboard.NewGateway(d.Store, d.StoreTimeout, d.Logger)

	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			writeJSON(w, http.StatusBadRequest, noticeResponse{Notice: "missing bookmark id"})
			return
		}

		if err := gateway.Remove(r.Context(), id); err != nil {
			if errors.Is(err, redisstore.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, noticeResponse{Notice: "bookmark not found"})
				return
			}
			writeJSON(w, http.StatusBadGateway, noticeResponse{Notice: "failed to delete bookmark"})
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func storeCtx(ctx context.Context, d deps.Deps) (context.Context, context.CancelFunc) {
	if d.StoreTimeout > 0 {
		return context.WithTimeout(ctx, d.StoreTimeout)
	}
	return context.WithCancel(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
