package collection

import "errors"

var (
	// ErrValidationRejected marks a record that failed basic invariants.
	// Raised before any store call is attempted.
	ErrValidationRejected = errors.New("record failed validation")

	// ErrMutationRejected marks a mutation the bound store refused after
	// it had been applied optimistically. The snapshot has already been
	// rolled back when this is returned.
	ErrMutationRejected = errors.New("mutation rejected by store")

	// ErrNotFound marks an update or remove against an ID that is not in
	// the current snapshot.
	ErrNotFound = errors.New("record not in collection")

	// ErrClosed marks an operation submitted after Close.
	ErrClosed = errors.New("collection closed")
)
