package ports

import "errors"

// Sentinel errors the stores return for conditions callers branch on. Any
// other non-nil error from a store is a storage failure and must propagate —
// authorization code may deny by returning an error, but never by swallowing
// one.
var (
	// ErrConflict reports a unique-constraint violation on create: the
	// (entity_type, name) pair already exists.
	ErrConflict = errors.New("already exists")

	// ErrNotFound reports that a required lookup matched nothing, e.g. an
	// unknown relation-type name on relation creation.
	ErrNotFound = errors.New("not found")
)
