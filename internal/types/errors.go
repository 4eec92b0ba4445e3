package types

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownProcedure is returned when a procedure kind is not one of
	// the three supported diagnostic procedures.
	ErrUnknownProcedure = errors.New("unknown diagnostic procedure")

	// ErrUnknownDatabase is returned when a database target id is not
	// registered in the database_target table.
	ErrUnknownDatabase = errors.New("unknown database target")

	// ErrRecordNotFound is returned by point lookups when no current run
	// exists or the ordinal is out of range.
	ErrRecordNotFound = errors.New("diagnostic record not found")

	// ErrInvalidTarget is returned when a recommendation does not reference
	// exactly one diagnostic record.
	ErrInvalidTarget = errors.New("exactly one of finding, index finding or query cache id must be set")
)

// RowMappingError reports a raw row that could not be mapped into a
// canonical record. It aborts the whole StoreRun call; no partial run is
// ever persisted.
type RowMappingError struct {
	Kind    ProcedureKind
	Ordinal int
	Column  string
	Err     error
}

func (e *RowMappingError) Error() string {
	return fmt.Sprintf("mapping row %d for %s (column %q): %v", e.Ordinal, e.Kind, e.Column, e.Err)
}

func (e *RowMappingError) Unwrap() error { return e.Err }

// ExtractionError wraps a failure of the remote follow-up query that
// feeds the secondary extraction pipeline.
type ExtractionError struct {
	Command string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("secondary extraction failed for %q: %v", e.Command, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
