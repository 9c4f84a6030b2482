package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/linkdeck/linkdeck/internal/logger"
)

type fakeIndexStore struct {
	owners  []string
	indexes map[string][]string // owner -> indexed IDs
	present map[string]bool     // bookmark ID -> key exists
	pruned  []string
	dropped []string

	ownersErr error
}

func (f *fakeIndexStore) OwnerIDs(_ context.Context) ([]string, error) {
	if f.ownersErr != nil {
		return nil, f.ownersErr
	}
	return f.owners, nil
}

func (f *fakeIndexStore) IndexedIDs(_ context.Context, ownerID string) ([]string, error) {
	return f.indexes[ownerID], nil
}

func (f *fakeIndexStore) Exists(_ context.Context, id string) (bool, error) {
	return f.present[id], nil
}

func (f *fakeIndexStore) PruneIndexEntry(_ context.Context, ownerID, id string) error {
	f.pruned = append(f.pruned, ownerID+"/"+id)
	return nil
}

func (f *fakeIndexStore) DropOwner(_ context.Context, ownerID string) error {
	f.dropped = append(f.dropped, ownerID)
	return nil
}

func TestSweepPrunesDanglingEntries(t *testing.T) {
	store := &fakeIndexStore{
		owners: []string{"user-1", "user-2"},
		indexes: map[string][]string{
			"user-1": {"a", "b", "c"},
			"user-2": {"d"},
		},
		present: map[string]bool{"a": true, "c": true, "d": true},
	}

	j := NewJanitor(store, logger.Nop(), 0)
	if err := j.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}

	if len(store.pruned) != 1 {
		t.Fatalf("pruned %d entries, want 1: %v", len(store.pruned), store.pruned)
	}
	if store.pruned[0] != "user-1/b" {
		t.Errorf("pruned %q, want user-1/b", store.pruned[0])
	}
}

func TestSweepNothingToPrune(t *testing.T) {
	store := &fakeIndexStore{
		owners:  []string{"user-1"},
		indexes: map[string][]string{"user-1": {"a"}},
		present: map[string]bool{"a": true},
	}

	j := NewJanitor(store, logger.Nop(), 0)
	if err := j.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if len(store.pruned) != 0 {
		t.Errorf("pruned %v, want none", store.pruned)
	}
}

func TestSweepDropsEmptyOwners(t *testing.T) {
	store := &fakeIndexStore{
		owners: []string{"user-1", "user-2"},
		indexes: map[string][]string{
			"user-2": {"a"},
		},
		present: map[string]bool{"a": true},
	}

	j := NewJanitor(store, logger.Nop(), 0)
	if err := j.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}

	if len(store.dropped) != 1 || store.dropped[0] != "user-1" {
		t.Errorf("dropped = %v, want [user-1]", store.dropped)
	}
}

func TestSweepPropagatesOwnerListError(t *testing.T) {
	store := &fakeIndexStore{ownersErr: errors.New("redis down")}

	j := NewJanitor(store, logger.Nop(), 0)
	if err := j.Sweep(context.Background()); err == nil {
		t.Fatal("Sweep() expected error, got nil")
	}
}
