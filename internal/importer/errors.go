package importer

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a notebook cannot be resolved on the search
// path.
var ErrNotFound = errors.New("notebook not found")

// CellExecutionError wraps the error raised by a cell's source, preserving
// the interpreter's original description and recording where the cell lives.
type CellExecutionError struct {
	Path      string
	CellID    string
	CellIndex int
	Err       error
}

func (e *CellExecutionError) Error() string {
	loc := e.Path
	if e.CellID != "" {
		loc = fmt.Sprintf("%s (cell id: %s)", loc, e.CellID)
	}
	return fmt.Sprintf("cell %d of %s: %v", e.CellIndex, loc, e.Err)
}

func (e *CellExecutionError) Unwrap() error { return e.Err }
