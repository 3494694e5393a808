// Package merge aligns and merges two notebook documents using shared cell
// ids as checkpoints. Merge operates over all cell types so markdown and raw
// structure is preserved; it never touches execution state.
package merge

import (
	"fmt"

	"gonb/internal/notebook"
)

// OrderError reports that two cells shared by both documents appear in a
// different relative order in each, violating the precondition the merge
// alignment relies on. Raised by Check only; Merge never validates.
type OrderError struct {
	// First and Second are the offending ids in their first-document order.
	First  string
	Second string
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("shared cells %q and %q are ordered inconsistently: %q precedes %q in the first document but follows it in the second",
		e.First, e.Second, e.First, e.Second)
}

// Merge combines d2 into d1, producing a new document. Single pass, two read
// pointers, no backtracking:
//
//  1. Walk d1's cells in order. When a not-yet-emitted d2 cell at or after
//     the d2 pointer shares the current cell's id, emit d2 up to and
//     including that cell and advance the pointer past it.
//  2. A d1 cell with no such match is emitted verbatim.
//  3. Remaining d2 cells are emitted at the end.
//
// Wherever the documents agree on an id, d2's content wins for that
// checkpoint and for any unseen d2-only cells before it. Merging a document
// with itself yields an identical document. Cells with empty ids never align.
//
// The result carries d1's notebook metadata and freshly densified indices;
// input documents are not modified.
func Merge(d1, d2 *notebook.Document) *notebook.Document {
	out := &notebook.Document{
		Metadata:      d1.Metadata,
		NBFormat:      d1.NBFormat,
		NBFormatMinor: d1.NBFormatMinor,
	}

	j := 0
	emitted := make([]bool, len(d2.Cells))
	emit := func(c *notebook.Cell) {
		cp := *c
		cp.Index = len(out.Cells)
		out.Cells = append(out.Cells, &cp)
	}

	for _, c := range d1.Cells {
		k := -1
		if c.ID != "" {
			for p := j; p < len(d2.Cells); p++ {
				if !emitted[p] && d2.Cells[p].ID == c.ID {
					k = p
					break
				}
			}
		}
		if k < 0 {
			emit(c)
			continue
		}
		for p := j; p <= k; p++ {
			if !emitted[p] {
				emit(d2.Cells[p])
				emitted[p] = true
			}
		}
		j = k + 1
	}
	for p := j; p < len(d2.Cells); p++ {
		if !emitted[p] {
			emit(d2.Cells[p])
		}
	}
	return out
}

// Check validates that d1 and d2 are mergeable: every id present in both
// documents must appear in the same relative order in each. Documents that
// share no ids at all are mergeable (Merge concatenates them), so Check
// accepts them.
func Check(d1, d2 *notebook.Document) error {
	pos2 := make(map[string]int, len(d2.Cells))
	for i, c := range d2.Cells {
		if c.ID == "" {
			continue
		}
		if _, ok := pos2[c.ID]; !ok {
			pos2[c.ID] = i
		}
	}

	lastPos := -1
	lastID := ""
	for _, c := range d1.Cells {
		if c.ID == "" {
			continue
		}
		p, ok := pos2[c.ID]
		if !ok {
			continue
		}
		if p < lastPos {
			return &OrderError{First: lastID, Second: c.ID}
		}
		lastPos = p
		lastID = c.ID
	}
	return nil
}
