package notebook

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// rawJSON compares passthrough output blobs by value, not byte layout; the
// encoder is free to re-indent them.
var rawJSON = cmp.Transformer("rawjson", func(r json.RawMessage) any {
	if len(r) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(r, &v); err != nil {
		return string(r)
	}
	return v
})

func TestRead_StringSource(t *testing.T) {
	input := `{
  "cells": [
    {"id": "a", "cell_type": "code", "source": "x := 1\n"},
    {"id": "b", "cell_type": "markdown", "source": "# Title"}
  ],
  "metadata": {"kernel": "gonb"},
  "nbformat": 4,
  "nbformat_minor": 5
}`
	doc, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if len(doc.Cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(doc.Cells))
	}
	if doc.Cells[0].Source != "x := 1\n" {
		t.Errorf("unexpected source: %q", doc.Cells[0].Source)
	}
	if doc.Cells[0].Type != CellCode || doc.Cells[1].Type != CellMarkdown {
		t.Errorf("unexpected cell types: %v, %v", doc.Cells[0].Type, doc.Cells[1].Type)
	}
	if doc.NBFormat != 4 || doc.NBFormatMinor != 5 {
		t.Errorf("unexpected format version: %d.%d", doc.NBFormat, doc.NBFormatMinor)
	}
}

func TestRead_LineArraySource(t *testing.T) {
	input := `{"cells": [{"id": "a", "cell_type": "code", "source": ["x := 1\n", "y := 2\n"]}]}`
	doc, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if doc.Cells[0].Source != "x := 1\ny := 2\n" {
		t.Errorf("line array not concatenated: %q", doc.Cells[0].Source)
	}
}

func TestRead_DenseIndices(t *testing.T) {
	input := `{"cells": [
		{"cell_type": "markdown", "source": "a"},
		{"cell_type": "code", "source": "b"},
		{"cell_type": "raw", "source": "c"}
	]}`
	doc, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	for i, c := range doc.Cells {
		if c.Index != i {
			t.Errorf("cell %d has index %d", i, c.Index)
		}
	}
}

func TestRead_FormatErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"invalid json", `{not json`},
		{"missing cells", `{"metadata": {}}`},
		{"missing cell_type", `{"cells": [{"source": "x"}]}`},
		{"missing source", `{"cells": [{"cell_type": "code"}]}`},
		{"unknown cell_type", `{"cells": [{"cell_type": "svg", "source": "x"}]}`},
		{"bad source type", `{"cells": [{"cell_type": "code", "source": 42}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tc.input))
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FormatError, got %v", err)
			}
		})
	}
}

func TestRead_LegacyCellsWithoutIDs(t *testing.T) {
	input := `{"cells": [{"cell_type": "code", "source": "x := 1"}]}`
	doc, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if doc.Cells[0].ID != "" {
		t.Errorf("expected empty id, got %q", doc.Cells[0].ID)
	}
}

func TestRoundTrip_PreservesPassthrough(t *testing.T) {
	input := `{
  "cells": [{
    "id": "a",
    "cell_type": "code",
    "source": "x := 1",
    "metadata": {"gonb": {"skip": true}},
    "outputs": [{"output_type": "stream", "text": "1"}],
    "execution_count": 3
  }],
  "metadata": {"authors": ["someone"]},
  "nbformat": 4,
  "nbformat_minor": 5
}`
	doc, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	doc2, err := Read(&buf)
	if err != nil {
		t.Fatalf("re-Read failed: %v", err)
	}

	if diff := cmp.Diff(doc, doc2, rawJSON); diff != "" {
		t.Errorf("round trip changed document (-orig +reread):\n%s", diff)
	}
	if doc2.Cells[0].ExecutionCount == nil || *doc2.Cells[0].ExecutionCount != 3 {
		t.Error("execution_count not preserved")
	}
}

func TestCodeCells(t *testing.T) {
	doc := NewDocument(
		NewCell(CellMarkdown, "m1", "# heading"),
		NewCell(CellCode, "c1", "x := 1"),
		NewCell(CellRaw, "r1", "raw"),
		NewCell(CellCode, "c2", "y := 2"),
	)
	code := CodeCells(doc)
	if len(code) != 2 {
		t.Fatalf("expected 2 code cells, got %d", len(code))
	}
	if code[0].ID != "c1" || code[1].ID != "c2" {
		t.Errorf("wrong order: %s, %s", code[0].ID, code[1].ID)
	}
	if code[0].Index != 1 || code[1].Index != 3 {
		t.Errorf("document indices not preserved: %d, %d", code[0].Index, code[1].Index)
	}
}

func TestAssignIDs(t *testing.T) {
	doc := NewDocument(
		NewCell(CellCode, "keep", "x := 1"),
		NewCell(CellCode, "", "y := 2"),
		NewCell(CellMarkdown, "", "text"),
	)
	n := AssignIDs(doc)
	if n != 2 {
		t.Errorf("expected 2 ids assigned, got %d", n)
	}
	if doc.Cells[0].ID != "keep" {
		t.Errorf("existing id overwritten: %q", doc.Cells[0].ID)
	}
	if doc.Cells[1].ID == "" || doc.Cells[2].ID == "" {
		t.Error("missing ids not assigned")
	}
	if doc.Cells[1].ID == doc.Cells[2].ID {
		t.Error("assigned ids are not unique")
	}
}

func TestWriteFileReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.gonb")

	doc := NewDocument(
		NewCell(CellCode, "a", "x := 1"),
		NewCell(CellMarkdown, "b", "notes"),
	)
	if err := WriteFile(path, doc); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if diff := cmp.Diff(doc, got); diff != "" {
		t.Errorf("file round trip changed document:\n%s", diff)
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.gonb"))
	if !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
