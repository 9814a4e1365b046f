package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacityExceeded is returned when a mutation would push the store past its ceiling.
	// The store is left untouched; callers answer with a "busy, try later" reply.
	ErrCapacityExceeded = errors.New("store capacity exceeded")

	// ErrParse marks malformed user input (entry text, uploaded list, index)
	ErrParse = errors.New("parse failure")

	// ErrNotFound marks a missing removal target
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition marks an operation the transition table rejects
	ErrInvalidTransition = errors.New("invalid state transition")
)

// SnapshotError is an IO failure while saving or loading a snapshot
type SnapshotError struct {
	Op   string // "save" or "load"
	Path string
	Err  error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *SnapshotError) Unwrap() error {
	return e.Err
}
