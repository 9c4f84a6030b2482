package dashboard

import "sync"

// Draft is the local input state for the add form: two text fields and
// nothing else. Clearing the draft is deliberately independent from
// the store acknowledging the insert: the fields reset as soon as a
// valid submission is issued, while the new row only appears through
// the synchronizer's reload.
type Draft struct {
	mu    sync.Mutex
	title string
	url   string
}

// Set replaces both fields.
func (d *Draft) Set(title, url string) {
	d.mu.Lock()
	d.title, d.url = title, url
	d.mu.Unlock()
}

// Fields returns the current field values.
func (d *Draft) Fields() (title, url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.title, d.url
}

// Clear resets both fields to empty.
func (d *Draft) Clear() {
	d.mu.Lock()
	d.title, d.url = "", ""
	d.mu.Unlock()
}
