package repository

import "github.com/DeadGolden0/Guardia-Bot-V2/internal/repository/repoerr"

// The sentinel values live in the leaf package repoerr so the domain
// packages can match on them without importing this package. They are
// re-exported here so repository consumers see the usual names.
var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = repoerr.ErrNotFound

	// ErrConflict is returned when a conditional update loses its
	// compare-and-set (e.g. the confirmation flag was already set)
	ErrConflict = repoerr.ErrConflict

	// ErrDuplicateLeader is returned when the leader already has an active project
	ErrDuplicateLeader = repoerr.ErrDuplicateLeader

	// ErrDuplicateGroup is returned when the group number is held by an active project
	ErrDuplicateGroup = repoerr.ErrDuplicateGroup
)
