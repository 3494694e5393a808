// Package notebook defines the in-memory document model shared by the
// importer, merger, and test runner: an ordered sequence of identified cells
// parsed from a structured .gonb notebook file.
// Documents are read-only after parsing; execution state lives elsewhere.
package notebook

import (
	"encoding/json"

	"github.com/google/uuid"
)

// CellType identifies the kind of content a cell holds.
type CellType string

const (
	CellCode     CellType = "code"
	CellMarkdown CellType = "markdown"
	CellRaw      CellType = "raw"
)

// valid reports whether t is one of the known cell types.
func (t CellType) valid() bool {
	switch t {
	case CellCode, CellMarkdown, CellRaw:
		return true
	}
	return false
}

// Cell is one unit of a Document. ID may be empty on documents produced by
// tools that predate stable cell ids. Source is normalized to a single string
// at parse time regardless of how the file stored it.
//
// Metadata, Outputs, and ExecutionCount are passthrough: preserved on
// round-trip but never interpreted by this package.
type Cell struct {
	ID             string
	Type           CellType
	Source         string
	Index          int
	Metadata       map[string]any
	Outputs        json.RawMessage
	ExecutionCount *int
}

// Document is an ordered sequence of cells plus passthrough notebook
// metadata. Sequence order is the authoritative execution and merge order;
// Index values are dense and increasing, assigned at parse time.
type Document struct {
	Cells         []*Cell
	Metadata      map[string]any
	NBFormat      int
	NBFormatMinor int
}

// NewDocument builds a document from the given cells, assigning dense
// indices in order. Intended for authoring and tests; parsed documents come
// from Read.
func NewDocument(cells ...*Cell) *Document {
	doc := &Document{
		Cells:         cells,
		Metadata:      map[string]any{},
		NBFormat:      4,
		NBFormatMinor: 5,
	}
	reindex(doc)
	return doc
}

// NewCell creates a cell of the given type. An empty id is allowed and marks
// the cell as unalignable for merge purposes.
func NewCell(typ CellType, id, source string) *Cell {
	return &Cell{ID: id, Type: typ, Source: source, Metadata: map[string]any{}}
}

// CodeCells returns the document's code cells in document order.
// Markdown and raw cells are retained in the document for merge purposes but
// are not runnable.
func CodeCells(doc *Document) []*Cell {
	var cells []*Cell
	for _, c := range doc.Cells {
		if c.Type == CellCode {
			cells = append(cells, c)
		}
	}
	return cells
}

// AssignIDs gives a fresh UUID to every cell that lacks one and returns the
// number of ids assigned. This is an opt-in repair hook for legacy documents;
// parsing never invokes it, and callers relying on merge alignment must
// understand that freshly assigned ids cannot match ids in another document.
func AssignIDs(doc *Document) int {
	n := 0
	for _, c := range doc.Cells {
		if c.ID == "" {
			c.ID = uuid.NewString()
			n++
		}
	}
	return n
}

// reindex rewrites Index values to be dense and increasing.
func reindex(doc *Document) {
	for i, c := range doc.Cells {
		c.Index = i
	}
}
