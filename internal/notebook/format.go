package notebook

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// FormatError reports a malformed or unparseable notebook file. It is always
// propagated to the caller; there is no local recovery.
type FormatError struct {
	Path string // empty when parsing from a reader
	Cell int    // offending cell index, -1 when the document itself is at fault
	Msg  string
	Err  error
}

func (e *FormatError) Error() string {
	loc := "notebook"
	if e.Path != "" {
		loc = e.Path
	}
	if e.Cell >= 0 {
		loc = fmt.Sprintf("%s: cell %d", loc, e.Cell)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", loc, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", loc, e.Msg)
}

func (e *FormatError) Unwrap() error { return e.Err }

// sourceText accepts the two wire encodings of cell source: a single string,
// or an array of line strings that are concatenated.
type sourceText string

func (s *sourceText) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = sourceText(str)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("source must be a string or an array of strings")
	}
	*s = sourceText(strings.Join(lines, ""))
	return nil
}

// rawCell is the wire form of a cell. CellType and Source are pointers so a
// missing field is distinguishable from an empty one.
type rawCell struct {
	ID             string          `json:"id,omitempty"`
	CellType       *string         `json:"cell_type"`
	Source         *sourceText     `json:"source"`
	Metadata       map[string]any  `json:"metadata,omitempty"`
	Outputs        json.RawMessage `json:"outputs,omitempty"`
	ExecutionCount *int            `json:"execution_count,omitempty"`
}

// rawDocument is the wire form of a notebook file.
type rawDocument struct {
	Cells         []rawCell      `json:"cells"`
	Metadata      map[string]any `json:"metadata"`
	NBFormat      int            `json:"nbformat"`
	NBFormatMinor int            `json:"nbformat_minor"`
}

// Read parses a notebook document from r. Parsing does not execute any cell
// source. A *FormatError is returned if the input is not valid notebook JSON
// or a cell lacks the required cell_type or source fields.
func Read(r io.Reader) (*Document, error) {
	return read(r, "")
}

// ReadFile parses the notebook file at path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return read(f, path)
}

func read(r io.Reader, path string) (*Document, error) {
	var raw rawDocument
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, &FormatError{Path: path, Cell: -1, Msg: "invalid notebook JSON", Err: err}
	}
	if raw.Cells == nil {
		return nil, &FormatError{Path: path, Cell: -1, Msg: "missing cells array"}
	}

	doc := &Document{
		Metadata:      raw.Metadata,
		NBFormat:      raw.NBFormat,
		NBFormatMinor: raw.NBFormatMinor,
	}
	if doc.Metadata == nil {
		doc.Metadata = map[string]any{}
	}
	for i, rc := range raw.Cells {
		if rc.CellType == nil {
			return nil, &FormatError{Path: path, Cell: i, Msg: "missing cell_type"}
		}
		if rc.Source == nil {
			return nil, &FormatError{Path: path, Cell: i, Msg: "missing source"}
		}
		typ := CellType(*rc.CellType)
		if !typ.valid() {
			return nil, &FormatError{Path: path, Cell: i, Msg: fmt.Sprintf("unknown cell_type %q", *rc.CellType)}
		}
		meta := rc.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		doc.Cells = append(doc.Cells, &Cell{
			ID:             rc.ID,
			Type:           typ,
			Source:         string(*rc.Source),
			Index:          i,
			Metadata:       meta,
			Outputs:        rc.Outputs,
			ExecutionCount: rc.ExecutionCount,
		})
	}
	return doc, nil
}

// Write serializes doc to w. Cell sources are written as single strings;
// passthrough metadata, outputs, and execution counts survive unchanged.
func Write(w io.Writer, doc *Document) error {
	raw := rawDocument{
		Cells:         make([]rawCell, 0, len(doc.Cells)),
		Metadata:      doc.Metadata,
		NBFormat:      doc.NBFormat,
		NBFormatMinor: doc.NBFormatMinor,
	}
	for _, c := range doc.Cells {
		typ := string(c.Type)
		src := sourceText(c.Source)
		raw.Cells = append(raw.Cells, rawCell{
			ID:             c.ID,
			CellType:       &typ,
			Source:         &src,
			Metadata:       c.Metadata,
			Outputs:        c.Outputs,
			ExecutionCount: c.ExecutionCount,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	return enc.Encode(raw)
}

// WriteFile serializes doc to the file at path.
func WriteFile(path string, doc *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
