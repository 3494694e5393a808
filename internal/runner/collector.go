// Package runner partitions a notebook's code cells into discrete test units
// and executes them with per-unit failure isolation. Discovery is a pure scan
// over the document; execution drives cell runs against the loaded module's
// shared namespace.
package runner

import (
	"regexp"
	"strings"

	"gonb/internal/notebook"
)

// testPattern matches the first line of a test cell: a comment marker
// followed by text starting with the case-insensitive token "test". Both #
// and // markers are accepted; cells hold Go source, but #-marked fixtures
// from notebook tooling remain recognized. The captured text names the unit.
var testPattern = regexp.MustCompile(`(?i)^\s*(?:#+|//+)\s*(test.*?)\s*$`)

// TestUnit is a contiguous run of non-test code cells followed by exactly
// one test cell, in document order.
type TestUnit struct {
	Name  string
	Setup []*notebook.Cell
	Test  *notebook.Cell
	Index int // position among the document's discovered units
}

// TestName returns the unit name carried by a test cell's first line, or ""
// if the cell is not a test cell.
func TestName(c *notebook.Cell) string {
	line := c.Source
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	m := testPattern.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return m[1]
}

// IsTestCell reports whether c is a designated test cell.
func IsTestCell(c *notebook.Cell) bool {
	return c.Type == notebook.CellCode && TestName(c) != ""
}

// Collect partitions the document's code cells into test units. Cells
// accumulate as pending setup until a test cell closes the group. Code cells
// after the last test cell belong to no unit and are discarded; they have no
// reportable test identity. Collect performs no execution.
func Collect(doc *notebook.Document) []TestUnit {
	var units []TestUnit
	var setup []*notebook.Cell
	for _, c := range notebook.CodeCells(doc) {
		name := TestName(c)
		if name == "" {
			setup = append(setup, c)
			continue
		}
		units = append(units, TestUnit{
			Name:  name,
			Setup: setup,
			Test:  c,
			Index: len(units),
		})
		setup = nil
	}
	return units
}
