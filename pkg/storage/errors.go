package storage

import "errors"

var (
	// ErrAlreadyInTx is returned by Begin on a handle that is already a transaction.
	ErrAlreadyInTx = errors.New("already in tx")
	// ErrNotInTx is returned by Commit and Rollback outside a transaction.
	ErrNotInTx = errors.New("not in tx")
	// ErrDuplicate is returned when a unique key (post slug, lead email) is taken.
	ErrDuplicate = errors.New("duplicate key")
	// ErrStaleVersion is returned when an optimistic update lost a race.
	ErrStaleVersion = errors.New("stale version")
)
