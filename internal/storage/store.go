// Package storage provides abstractions for persistent record storage.
package storage

import (
	"context"
	"errors"
)

// AnonymousOwner is the sentinel owner ID used when no user is signed in.
// The local fallback store ignores owner scoping entirely; the sentinel
// exists so records created offline still carry an owner field.
const AnonymousOwner = "anonymous"

// ErrNotFound is returned by Update and Remove when no record with the
// given ID exists within the caller's owner scope.
var ErrNotFound = errors.New("record not found")

// Logical table names shared by the SQLite adapter and the collections.
const (
	TableHabits         = "habits"
	TableHabitEntries   = "habit_entries"
	TableExpenses       = "expenses"
	TablePayments       = "payments"
	TableProjects       = "projects"
	TableProjectTasks   = "project_tasks"
	TableFinancialGoals = "financial_goals"
)

// Record is the constraint every storable record type satisfies.
// The type parameter lets Clone return the concrete record type.
type Record[T any] interface {
	// RecordID returns the unique identifier, empty if unassigned.
	RecordID() string
	// SetRecordID assigns the identifier. Called once, before insert.
	SetRecordID(id string)
	// RecordCreatedAt returns the creation Unix timestamp, zero if unset.
	RecordCreatedAt() int64
	// StampCreatedAt fixes the creation timestamp. Never called twice.
	StampCreatedAt(unix int64)
	// Clone returns a deep copy so snapshots never alias store state.
	Clone() T
}

// Table defines the four-operation store contract for one logical table.
// Both the SQLite-backed adapter and the in-memory fallback implement it,
// which lets a collection bind to either without changing the behavior
// the service layer observes.
//
// Implementations scope List, Update and Remove to ownerID where they
// support ownership at all; the in-memory fallback does not.
type Table[T Record[T]] interface {
	// List returns all records owned by ownerID.
	List(ctx context.Context, ownerID string) ([]T, error)

	// Insert persists a new record. ID and creation timestamp are
	// expected to be assigned already; implementations may fill them
	// as a safety net. Returns the stored record.
	Insert(ctx context.Context, ownerID string, rec T) (T, error)

	// Update replaces the stored record with the given ID wholesale.
	// Returns ErrNotFound if no such record exists for ownerID.
	Update(ctx context.Context, ownerID, id string, rec T) (T, error)

	// Remove deletes the record with the given ID.
	// Returns ErrNotFound if no such record exists for ownerID.
	Remove(ctx context.Context, ownerID, id string) error
}
