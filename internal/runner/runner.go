package runner

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gonb/internal/config"
	"gonb/internal/importer"
	"gonb/internal/notebook"
)

// Outcome is the result kind of one executed test unit.
type Outcome int

const (
	Pass Outcome = iota
	Fail
)

// Result is the outcome of executing one test unit. On failure, Err is the
// captured cell error and FailedCell the cell that raised it.
type Result struct {
	Unit       TestUnit
	Outcome    Outcome
	Err        error
	FailedCell *notebook.Cell
}

// FileResult aggregates the unit results of one notebook file. Err is set
// when the file could not be loaded or collected at all.
type FileResult struct {
	Path    string
	Results []Result
	Err     error
}

// Reporter receives per-unit outcomes as they are produced.
type Reporter interface {
	Pass(unit TestUnit)
	Fail(unit TestUnit, err error)
}

// Runner executes discovered test units against loaded notebook modules.
// Units of one module run strictly in order on its shared namespace; state
// from earlier units and earlier setup cells stays visible to later ones.
type Runner struct {
	loader      *importer.Loader
	reporter    Reporter
	skipKey     string
	parallelism int
	log         *zap.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLoader sets the loader used to resolve notebook files.
func WithLoader(l *importer.Loader) RunnerOption {
	return func(r *Runner) { r.loader = l }
}

// WithReporter sets the reporter notified of each unit outcome.
func WithReporter(rep Reporter) RunnerOption {
	return func(r *Runner) { r.reporter = rep }
}

// WithRunnerLogger sets the runner's logger. Defaults to a no-op logger.
func WithRunnerLogger(log *zap.Logger) RunnerOption {
	return func(r *Runner) { r.log = log }
}

// WithParallelism bounds how many files run concurrently in RunFiles.
// Units within one file always run sequentially.
func WithParallelism(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.parallelism = n
		}
	}
}

// WithSkipKey sets the cell metadata key consulted for skipping setup cells.
func WithSkipKey(key string) RunnerOption {
	return func(r *Runner) { r.skipKey = key }
}

// New creates a Runner with the default loader.
func New(opts ...RunnerOption) *Runner {
	r := &Runner{
		loader:      importer.Default(),
		skipKey:     config.DefaultSkipKey,
		parallelism: 1,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FromConfig creates a Runner whose loader and execution settings come from
// cfg. Additional options are applied on top.
func FromConfig(cfg config.Config, opts ...RunnerOption) *Runner {
	loader := importer.NewLoader(
		importer.WithSearchPath(cfg.SearchPath...),
		importer.WithSuffix(cfg.Suffix),
	)
	base := []RunnerOption{
		WithLoader(loader),
		WithParallelism(cfg.Parallelism),
		WithSkipKey(cfg.SkipKey),
	}
	return New(append(base, opts...)...)
}

// RunUnit executes one test unit: setup cells in order, then the test cell,
// all against the module's shared namespace. The first failing cell fails
// the unit and stops it; other units are unaffected. Setup cells whose
// metadata requests a skip are not executed.
func (r *Runner) RunUnit(mod *importer.Module, unit TestUnit) Result {
	res := Result{Unit: unit, Outcome: Pass}

	run := func(cell *notebook.Cell) error {
		cc, ok := mod.CellAt(cell.Index)
		if !ok {
			// Collect only emits code cells, so this means the unit and
			// module come from different documents.
			return &importer.CellExecutionError{
				Path:      mod.Path,
				CellID:    cell.ID,
				CellIndex: cell.Index,
				Err:       errUnitMismatch,
			}
		}
		return cc.Run()
	}

	for _, cell := range unit.Setup {
		if r.skipCell(cell) {
			r.log.Debug("skipping setup cell",
				zap.String("path", mod.Path), zap.Int("cell", cell.Index))
			continue
		}
		if err := run(cell); err != nil {
			res.Outcome = Fail
			res.Err = err
			res.FailedCell = cell
			r.report(res)
			return res
		}
	}
	if err := run(unit.Test); err != nil {
		res.Outcome = Fail
		res.Err = err
		res.FailedCell = unit.Test
	}
	r.report(res)
	return res
}

func (r *Runner) report(res Result) {
	if r.reporter == nil {
		return
	}
	if res.Outcome == Pass {
		r.reporter.Pass(res.Unit)
	} else {
		r.reporter.Fail(res.Unit, res.Err)
	}
}

// skipCell reports whether a setup cell's metadata marks it skipped, e.g.
// {"gonb": {"skip": true}}.
func (r *Runner) skipCell(c *notebook.Cell) bool {
	v, ok := c.Metadata[r.skipKey]
	if !ok {
		return false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	skip, ok := m["skip"].(bool)
	return ok && skip
}

// RunFile loads the notebook at path, discovers its test units, and runs
// them in order. A unit failure is recorded in its Result and does not stop
// the remaining units. A load failure is recorded in FileResult.Err.
func (r *Runner) RunFile(path string) FileResult {
	fr := FileResult{Path: path}
	mod, err := r.loader.ImportFromPath(path)
	if err != nil {
		fr.Err = err
		return fr
	}
	units := Collect(mod.Document())
	r.log.Debug("collected test units",
		zap.String("path", path), zap.Int("units", len(units)))
	for _, unit := range units {
		fr.Results = append(fr.Results, r.RunUnit(mod, unit))
	}
	return fr
}

// RunFiles runs several notebook files, up to the configured parallelism at
// a time. Files own disjoint namespaces so they may run concurrently; units
// within one file keep their document order. Results are returned in input
// order. The only error returned is context cancellation.
func (r *Runner) RunFiles(ctx context.Context, paths []string) ([]FileResult, error) {
	results := make([]FileResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = r.RunFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
