package redis

const (
	// KeyPrefixBookmark is the prefix for bookmark JSON entries
	KeyPrefixBookmark = "linkdeck:bookmark:"
	// KeyPrefixOwnerIndex is the prefix for per-owner ZSET indexes
	// (member = bookmark ID, score = creation time in unix nanoseconds)
	KeyPrefixOwnerIndex = "linkdeck:bookmarks:owner:"
	// KeyAllOwners is the SET of owner IDs that have an index
	KeyAllOwners = "linkdeck:bookmarks:owners"
	// KeyPrefixSession is the prefix for session records
	KeyPrefixSession = "linkdeck:session:"
	// ChannelBookmarkEvents is the pub/sub channel carrying change
	// notifications for the whole bookmark collection
	ChannelBookmarkEvents = "linkdeck:bookmarks:events"
)

// BookmarkKey returns the Redis key for a bookmark by ID
func BookmarkKey(id string) string {
	return KeyPrefixBookmark + id
}

// OwnerIndexKey returns the Redis key for an owner's bookmark index
func OwnerIndexKey(ownerID string) string {
	return KeyPrefixOwnerIndex + ownerID
}

// AllOwnersKey returns the key for the set of all owner IDs
func AllOwnersKey() string {
	return KeyAllOwners
}

// SessionKey returns the Redis key for a session record
func SessionKey(id string) string {
	return KeyPrefixSession + id
}
