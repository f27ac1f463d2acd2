// Package repoerr holds the storage-level sentinel errors. It is a leaf
// package so domain packages can match on these sentinels without importing
// the repository interfaces (which import the domain types back).
package repoerr

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a conditional update loses its
	// compare-and-set (e.g. the confirmation flag was already set)
	ErrConflict = errors.New("conflict: document was modified concurrently")

	// ErrDuplicateLeader is returned when the leader already has an active project
	ErrDuplicateLeader = errors.New("leader already has an active project")

	// ErrDuplicateGroup is returned when the group number is held by an active project
	ErrDuplicateGroup = errors.New("group number already held by an active project")
)
