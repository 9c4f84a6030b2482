package domain

import "time"

// Bookmark represents one saved link owned by a single principal.
//
// Bookmarks are immutable once created: there is no edit operation,
// only insert and delete. Ordering of a collection is always by
// CreatedAt descending (newest first).
type Bookmark struct {
	// ID is the canonical unique identifier, assigned by the store.
	ID string `json:"id"`

	// Title is the user-supplied display name.
	Title string `json:"title"`

	// URL is the full external URL the bookmark points to.
	URL string `json:"url"`

	// OwnerID references the principal that created the bookmark.
	// Every bookmark is owned by exactly one principal.
	OwnerID string `json:"owner_id"`

	// CreatedAt is assigned by the store at insert time and is the
	// collection ordering key.
	CreatedAt time.Time `json:"created_at"`
}

// ByCreatedDesc reports whether a slice of bookmarks is ordered
// newest-first, the only ordering the collection view exposes.
func ByCreatedDesc(bookmarks []Bookmark) bool {
	for i := 1; i < len(bookmarks); i++ {
		if bookmarks[i].CreatedAt.After(bookmarks[i-1].CreatedAt) {
			return false
		}
	}
	return true
}
