// Package importer loads .gonb notebook files as modules: a parsed document
// plus a fresh namespace in which the document's code cells can be executed
// individually or in order. Loading never executes cell source.
//
// Repeated imports of the same resolved target return the cached instance,
// so there is one namespace per unique target per process; Invalidate drops
// a cache entry so a later import sees fresh content and a fresh namespace.
package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"gonb/internal/interpreter"
	"gonb/internal/notebook"
)

// DefaultSuffix is the notebook file suffix handled by the default loader.
const DefaultSuffix = ".gonb"

// Module is a loaded notebook instance: the parsed document, the shared
// namespace, and one runnable wrapper per code cell.
type Module struct {
	Name string
	Path string

	doc     *notebook.Document
	ns      *interpreter.Namespace
	cells   []*CodeCell
	byIndex map[int]*CodeCell

	log  *zap.Logger
	errW io.Writer
}

// Document returns the parsed document. It is read-only.
func (m *Module) Document() *notebook.Document { return m.doc }

// Namespace returns the instance's shared execution scope.
func (m *Module) Namespace() *interpreter.Namespace { return m.ns }

// CellAt returns the runnable wrapper for the code cell at the given
// document index, or false if that index is not a code cell.
func (m *Module) CellAt(docIndex int) (*CodeCell, bool) {
	c, ok := m.byIndex[docIndex]
	return c, ok
}

// CodeCell exposes one code cell as an independently runnable unit bound to
// its module's namespace.
type CodeCell struct {
	cell *notebook.Cell
	mod  *Module
}

// Cell returns the underlying document cell.
func (c *CodeCell) Cell() *notebook.Cell { return c.cell }

// Source returns the cell's source text.
func (c *CodeCell) Source() string { return c.cell.Source }

// Run compiles and executes the cell's source against the owning module's
// namespace, synchronously, exactly as evaluating the text as a top-level
// unit in that scope. Running the same cell again re-executes it. A failure
// is returned as a *CellExecutionError preserving the original description.
func (c *CodeCell) Run() error {
	if err := c.mod.ns.Execute(c.cell.Source); err != nil {
		return &CellExecutionError{
			Path:      c.mod.Path,
			CellID:    c.cell.ID,
			CellIndex: c.cell.Index,
			Err:       err,
		}
	}
	return nil
}

// GetCells returns the module's runnable cells in ascending document order.
// Only code cells are runnable; markdown and raw cells stay in the document.
func GetCells(m *Module) []*CodeCell {
	cells := make([]*CodeCell, len(m.cells))
	copy(cells, m.cells)
	return cells
}

// RunCells executes every runnable cell of the module in document order.
// If a cell fails and raiseOnError is true, the error propagates immediately
// and later cells do not run. Otherwise the error's description is written to
// the module's error writer and execution continues with the next cell.
func RunCells(m *Module, raiseOnError bool) error {
	for _, cell := range m.cells {
		err := cell.Run()
		if err == nil {
			continue
		}
		if raiseOnError {
			return err
		}
		fmt.Fprintf(m.errW, "%v\n\n", err)
		m.log.Error("cell execution failed",
			zap.String("path", m.Path),
			zap.Int("cell", cell.cell.Index),
			zap.Error(err))
	}
	return nil
}

// Loader resolves notebook names to files and loads them as modules, caching
// one instance per resolved path for the lifetime of the process.
type Loader struct {
	mu        sync.Mutex
	instances map[string]*Module

	searchPath []string
	suffix     string
	log        *zap.Logger
	errW       io.Writer
}

// Option configures a Loader.
type Option func(*Loader)

// WithSearchPath sets the directories searched by Import. Defaults to the
// current directory.
func WithSearchPath(dirs ...string) Option {
	return func(l *Loader) { l.searchPath = dirs }
}

// WithSuffix sets the notebook file suffix. Defaults to DefaultSuffix.
func WithSuffix(suffix string) Option {
	return func(l *Loader) { l.suffix = suffix }
}

// WithLogger sets the loader's logger. Defaults to a no-op logger; this
// module never configures a global logging sink.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// WithErrorWriter sets the channel lenient RunCells failures are reported
// on. Defaults to stderr.
func WithErrorWriter(w io.Writer) Option {
	return func(l *Loader) { l.errW = w }
}

// NewLoader creates a Loader and registers its suffix handler in the
// process-wide registry. Registration is idempotent, so constructing loaders
// from multiple entry points is safe.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		instances:  make(map[string]*Module),
		searchPath: []string{"."},
		suffix:     DefaultSuffix,
		log:        zap.NewNop(),
		errW:       os.Stderr,
	}
	for _, opt := range opts {
		opt(l)
	}
	RegisterSuffix(l.suffix, l.load)
	return l
}

var (
	defaultOnce   sync.Once
	defaultLoader *Loader
)

// Default returns the process-wide loader for .gonb files.
func Default() *Loader {
	defaultOnce.Do(func() {
		defaultLoader = NewLoader()
	})
	return defaultLoader
}

// FindNotebook resolves a name to a notebook file on the search path. The
// last dotted component of name is used, and Foo_Bar also finds "Foo
// Bar<suffix>" so names stay valid identifiers.
func FindNotebook(name string, searchPath []string, suffix string) (string, bool) {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if len(searchPath) == 0 {
		searchPath = []string{""}
	}
	for _, dir := range searchPath {
		p := filepath.Join(dir, name+suffix)
		if isFile(p) {
			return p, true
		}
		spaced := filepath.Join(dir, strings.ReplaceAll(name, "_", " ")+suffix)
		if isFile(spaced) {
			return spaced, true
		}
	}
	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Import resolves name on the loader's search path and returns the loaded
// instance, cached per resolved target.
func (l *Loader) Import(name string) (*Module, error) {
	path, ok := FindNotebook(name, l.searchPath, l.suffix)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return l.ImportFromPath(path)
}

// ImportFromPath loads the notebook file at path, returning the cached
// instance when the same target was imported before.
func (l *Loader) ImportFromPath(path string) (*Module, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if m, ok := l.instances[key]; ok {
		return m, nil
	}
	m, err := l.loadLocked(key)
	if err != nil {
		return nil, err
	}
	l.instances[key] = m
	return m, nil
}

// load is the suffix handler registered for the loader.
func (l *Loader) load(path string) (*Module, error) {
	return l.ImportFromPath(path)
}

func (l *Loader) loadLocked(path string) (*Module, error) {
	doc, err := notebook.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ns, err := interpreter.NewNamespace()
	if err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m := &Module{
		Name:    strings.ReplaceAll(base, " ", "_"),
		Path:    path,
		doc:     doc,
		ns:      ns,
		byIndex: make(map[int]*CodeCell),
		log:     l.log,
		errW:    l.errW,
	}
	for _, cell := range notebook.CodeCells(doc) {
		cc := &CodeCell{cell: cell, mod: m}
		m.cells = append(m.cells, cc)
		m.byIndex[cell.Index] = cc
	}

	l.log.Debug("loaded notebook",
		zap.String("path", path),
		zap.Int("cells", len(doc.Cells)),
		zap.Int("code_cells", len(m.cells)))
	return m, nil
}

// Invalidate drops the cached instance for path, if any. The next import of
// the target loads fresh content into a fresh namespace.
func (l *Loader) Invalidate(path string) {
	key, err := filepath.Abs(path)
	if err != nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.instances, key)
}

// InvalidateAll drops every cached instance.
func (l *Loader) InvalidateAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.instances = make(map[string]*Module)
}
