package services

import "errors"

// Error kinds surfaced to callers. Services wrap them with entity ids and
// the expected vs. actual state via fmt.Errorf("...: %w", ...), so callers
// match with errors.Is and still get a usable message.
var (
	// ErrInvalidArgument marks malformed caller input: an unknown enum
	// value, a non-positive quantity, a till sale carrying a table id.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound marks a reference to an order, line, product, table or
	// user that does not exist (or is soft-deleted where that matters).
	ErrNotFound = errors.New("not found")

	// ErrInvalidState marks an operation that is not legal for the
	// entity's current state, e.g. mutating a finalized order.
	ErrInvalidState = errors.New("invalid state")

	// ErrTableConflict marks detected occupancy drift: a table whose
	// status disagrees with the open orders referencing it. This is
	// never auto-repaired; staff reconcile it via the table override.
	ErrTableConflict = errors.New("table occupancy conflict")
)
