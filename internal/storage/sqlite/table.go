package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/agentdash/agentdash/internal/models"
	"github.com/agentdash/agentdash/internal/storage"
)

// Table is the SQLite adapter for one logical record table.
// It translates between the wire row shape (JSON doc plus lifted key
// columns) and the in-memory record type T.
type Table[T storage.Record[T]] struct {
	store *Store
	name  string
}

// NewTable creates the adapter for the named table. The name must be one
// of the tables declared in migrations.go; it is interpolated into SQL
// and must never come from user input.
func NewTable[T storage.Record[T]](store *Store, name string) *Table[T] {
	return &Table[T]{store: store, name: name}
}

// Ensure Table implements storage.Table
var _ storage.Table[*models.Habit] = (*Table[*models.Habit])(nil)

// List returns all records owned by ownerID, oldest first.
func (t *Table[T]) List(ctx context.Context, ownerID string) ([]T, error) {
	query := fmt.Sprintf(
		"SELECT doc FROM %s WHERE owner_id = ? ORDER BY created_at, id", t.name)

	rows, err := t.store.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.name, err)
	}
	defer rows.Close()

	var recs []T
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", t.name, err)
		}
		rec, err := decodeDoc[T](doc)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s row: %w", t.name, err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", t.name, err)
	}

	return recs, nil
}

// Insert persists a new record, filling ID and creation timestamp if the
// caller left them unset.
func (t *Table[T]) Insert(ctx context.Context, ownerID string, rec T) (T, error) {
	var zero T

	rec = rec.Clone()
	if rec.RecordID() == "" {
		rec.SetRecordID(uuid.New().String())
	}
	if rec.RecordCreatedAt() == 0 {
		rec.StampCreatedAt(time.Now().Unix())
	}

	doc, err := json.Marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("failed to encode %s record: %w", t.name, err)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (id, owner_id, created_at, doc) VALUES (?, ?, ?, ?)", t.name)
	_, err = t.store.db.ExecContext(ctx, query,
		rec.RecordID(), ownerID, rec.RecordCreatedAt(), string(doc))
	if err != nil {
		return zero, fmt.Errorf("failed to insert into %s: %w", t.name, err)
	}

	return rec, nil
}

// Update replaces the stored record wholesale, scoped to ownerID.
func (t *Table[T]) Update(ctx context.Context, ownerID, id string, rec T) (T, error) {
	var zero T

	rec = rec.Clone()
	doc, err := json.Marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("failed to encode %s record: %w", t.name, err)
	}

	query := fmt.Sprintf(
		"UPDATE %s SET doc = ? WHERE id = ? AND owner_id = ?", t.name)
	res, err := t.store.db.ExecContext(ctx, query, string(doc), id, ownerID)
	if err != nil {
		return zero, fmt.Errorf("failed to update %s: %w", t.name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return zero, fmt.Errorf("failed to update %s: %w", t.name, err)
	}
	if affected == 0 {
		return zero, storage.ErrNotFound
	}

	return rec, nil
}

// Remove deletes the record with the given ID, scoped to ownerID.
func (t *Table[T]) Remove(ctx context.Context, ownerID, id string) error {
	query := fmt.Sprintf(
		"DELETE FROM %s WHERE id = ? AND owner_id = ?", t.name)
	res, err := t.store.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", t.name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", t.name, err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// decodeDoc unmarshals a JSON doc column into a fresh record.
// T is always a pointer type in practice, so the pointed-at value is
// allocated through reflection to give json.Unmarshal a non-nil target.
func decodeDoc[T storage.Record[T]](doc string) (T, error) {
	var zero T
	rec, ok := reflect.New(reflect.TypeOf(zero).Elem()).Interface().(T)
	if !ok {
		return zero, fmt.Errorf("record type %T is not a pointer", zero)
	}
	if err := json.Unmarshal([]byte(doc), rec); err != nil {
		return zero, err
	}
	return rec, nil
}
