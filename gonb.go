// Package gonb loads structured Go notebooks (.gonb files) as modules whose
// code cells can be executed individually against a shared namespace, merges
// two notebooks using cell ids as alignment anchors, and discovers and runs
// notebook test units with per-unit failure isolation.
package gonb

import (
	"context"

	"gonb/internal/config"
	"gonb/internal/importer"
	"gonb/internal/merge"
	"gonb/internal/notebook"
	"gonb/internal/runner"
)

// Core types, re-exported from the implementation packages.
type (
	Document = notebook.Document
	Cell     = notebook.Cell
	CellType = notebook.CellType

	Module             = importer.Module
	CodeCell           = importer.CodeCell
	Loader             = importer.Loader
	Watcher            = importer.Watcher
	FormatError        = notebook.FormatError
	CellExecutionError = importer.CellExecutionError
	OrderError         = merge.OrderError

	TestUnit     = runner.TestUnit
	Result       = runner.Result
	FileResult   = runner.FileResult
	Runner       = runner.Runner
	RunnerOption = runner.RunnerOption
	Reporter     = runner.Reporter
	Outcome      = runner.Outcome

	Config = config.Config
)

// Cell types.
const (
	CellCode     = notebook.CellCode
	CellMarkdown = notebook.CellMarkdown
	CellRaw      = notebook.CellRaw
)

// Test unit outcomes.
const (
	Pass = runner.Pass
	Fail = runner.Fail
)

// Constructors and options.
var (
	NewLoader  = importer.NewLoader
	NewWatcher = importer.NewWatcher
	NewRunner  = runner.New
	FromConfig = runner.FromConfig

	WithSearchPath  = importer.WithSearchPath
	WithSuffix      = importer.WithSuffix
	WithLogger      = importer.WithLogger
	WithErrorWriter = importer.WithErrorWriter

	WithLoader       = runner.WithLoader
	WithReporter     = runner.WithReporter
	WithParallelism  = runner.WithParallelism
	WithSkipKey      = runner.WithSkipKey
	WithRunnerLogger = runner.WithRunnerLogger

	NewCollectingReporter = runner.NewCollectingReporter
)

// ReadNotebook parses the notebook file at path without executing anything.
func ReadNotebook(path string) (*Document, error) {
	return notebook.ReadFile(path)
}

// WriteNotebook serializes doc to the file at path, preserving passthrough
// metadata.
func WriteNotebook(path string, doc *Document) error {
	return notebook.WriteFile(path, doc)
}

// Import resolves and loads a notebook by name using the process-wide
// loader. Repeated imports of the same target share one instance and one
// namespace.
func Import(name string) (*Module, error) {
	return importer.Default().Import(name)
}

// ImportFromPath loads the notebook file at path using the process-wide
// loader.
func ImportFromPath(path string) (*Module, error) {
	return importer.Default().ImportFromPath(path)
}

// GetCells returns the module's runnable code cells in document order.
func GetCells(m *Module) []*CodeCell {
	return importer.GetCells(m)
}

// RunCells executes every runnable cell of the module in document order,
// stopping at the first failure when raiseOnError is true and reporting and
// continuing otherwise.
func RunCells(m *Module, raiseOnError bool) error {
	return importer.RunCells(m, raiseOnError)
}

// Merge combines d2 into d1 using shared cell ids as checkpoints.
func Merge(d1, d2 *Document) *Document {
	return merge.Merge(d1, d2)
}

// Check validates that d1 and d2 are mergeable: ids shared by both documents
// must appear in the same relative order in each.
func Check(d1, d2 *Document) error {
	return merge.Check(d1, d2)
}

// Collect partitions the document's code cells into test units without
// executing anything.
func Collect(doc *Document) []TestUnit {
	return runner.Collect(doc)
}

// FormatFailure renders a failed result for human consumption.
func FormatFailure(res Result) string {
	return runner.FormatFailure(res)
}

// LoadConfig reads gonb configuration from a YAML file, falling back to
// defaults when the file is absent.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// RunFiles discovers and executes the test units of several notebook files
// with the default runner.
func RunFiles(ctx context.Context, paths []string) ([]FileResult, error) {
	return runner.New().RunFiles(ctx, paths)
}
