// Package memory provides the in-memory local fallback store.
//
// A memory.Table is what a collection binds to when no user is signed in
// or the remote adapter is unreachable at open time. It holds the seed
// dataset for the session, enforces no owner isolation, and does not
// persist anywhere. The lack of persistence is a deliberate limitation:
// fallback mode is a scratch workspace, not an offline database.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentdash/agentdash/internal/models"
	"github.com/agentdash/agentdash/internal/storage"
)

// Ensure Table implements storage.Table
var _ storage.Table[*models.Habit] = (*Table[*models.Habit])(nil)

// Table is an in-memory implementation of storage.Table for one logical
// table. The owner ID passed to its methods is ignored; the seed is the
// full working set for the session.
type Table[T storage.Record[T]] struct {
	mu    sync.RWMutex
	recs  map[string]T
	order []string // insertion order, seed first
}

// NewTable creates a fallback table pre-populated with seed records.
// Seed records missing an ID or creation timestamp get them assigned.
func NewTable[T storage.Record[T]](seed []T) *Table[T] {
	t := &Table[T]{recs: make(map[string]T, len(seed))}
	now := time.Now().Unix()
	for _, rec := range seed {
		rec = rec.Clone()
		if rec.RecordID() == "" {
			rec.SetRecordID(uuid.New().String())
		}
		if rec.RecordCreatedAt() == 0 {
			rec.StampCreatedAt(now)
		}
		t.recs[rec.RecordID()] = rec
		t.order = append(t.order, rec.RecordID())
	}
	return t
}

// List returns all records in insertion order.
func (t *Table[T]) List(_ context.Context, _ string) ([]T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	recs := make([]T, 0, len(t.order))
	for _, id := range t.order {
		recs = append(recs, t.recs[id].Clone())
	}
	return recs, nil
}

// Insert stores a new record, filling ID and creation timestamp if unset.
func (t *Table[T]) Insert(_ context.Context, _ string, rec T) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec = rec.Clone()
	if rec.RecordID() == "" {
		rec.SetRecordID(uuid.New().String())
	}
	if rec.RecordCreatedAt() == 0 {
		rec.StampCreatedAt(time.Now().Unix())
	}

	id := rec.RecordID()
	if _, exists := t.recs[id]; !exists {
		t.order = append(t.order, id)
	}
	t.recs[id] = rec

	return rec.Clone(), nil
}

// Update replaces the stored record with the given ID wholesale.
func (t *Table[T]) Update(_ context.Context, _ string, id string, rec T) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	if _, exists := t.recs[id]; !exists {
		return zero, storage.ErrNotFound
	}
	t.recs[id] = rec.Clone()

	return rec.Clone(), nil
}

// Remove deletes the record with the given ID.
func (t *Table[T]) Remove(_ context.Context, _ string, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.recs[id]; !exists {
		return storage.ErrNotFound
	}
	delete(t.recs, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}

	return nil
}
