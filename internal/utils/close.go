package utils

import "io"

// Close closes c and ignores any error. For best-effort cleanup where
// the close error carries no information, like an already-broken
// pub/sub connection.
func Close(c io.Closer) {
	_ = c.Close()
}
