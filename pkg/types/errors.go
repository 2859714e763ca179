// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// NotFoundError reports that a requested run or genome has no data.
type NotFoundError struct {
	// Kind names what was looked up, e.g. "run".
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// DataIntegrityError reports a comparison record that references a genome
// missing from the run's genome index.
type DataIntegrityError struct {
	RunID    int64
	GenomeID int64
	Detail   string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("run %d: genome %d %s", e.RunID, e.GenomeID, e.Detail)
}

// UnsupportedFormatError reports an export format token with no registered
// writer.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported output format %q", e.Format)
}

// WriteError wraps an I/O failure while writing one export format.
type WriteError struct {
	Format string
	Path   string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s output %s: %v", e.Format, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// QueryError wraps a failure of the underlying data source.
type QueryError struct {
	// Op describes the query that failed, e.g. "listing runs".
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
