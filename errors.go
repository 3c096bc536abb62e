package aspen

import (
	"errors"
	"fmt"
)

// Package errors.
var (
	// ErrUnknownStrategy is returned by NewStrategy for a name outside the
	// closed strategy set. There is no silent fallback: a misconfigured
	// strategy name is fatal at view construction.
	ErrUnknownStrategy = errors.New("aspen: unknown antialiasing strategy")

	// ErrNoDocument is returned by Partition when no document has been loaded.
	ErrNoDocument = errors.New("aspen: no document loaded")
)

// LoadError reports that document bytes could not be obtained or parsed.
// It aborts the current load cycle and returns the view to StateIdle.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("aspen: load failed: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// PartitionError reports that the geometry source rejected the document.
// It aborts the current load cycle and returns the view to StateIdle.
type PartitionError struct {
	Err error
}

func (e *PartitionError) Error() string {
	return fmt.Sprintf("aspen: partition failed: %v", e.Err)
}

func (e *PartitionError) Unwrap() error { return e.Err }
