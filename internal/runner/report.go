package runner

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var errUnitMismatch = errors.New("test unit does not belong to this module")

// yaegi errors are prefixed with the position of the failing token, e.g.
// "2:9: undefined: foo".
var errLinePattern = regexp.MustCompile(`^(\d+):\d+`)

// FormatFailure renders a failed result the way a test report reads best:
// the source of the cell that raised, with the failing line marked when the
// error names one, under a header saying whether the test cell itself failed
// or never ran.
func FormatFailure(res Result) string {
	if res.Outcome == Pass || res.FailedCell == nil {
		return ""
	}

	header := "Error in test cell:"
	if res.FailedCell != res.Unit.Test {
		header = "Test cell was not executed because an earlier cell raised an error:"
	}

	errLine := -1
	cause := res.Err
	for unwrapped := errors.Unwrap(cause); unwrapped != nil; unwrapped = errors.Unwrap(cause) {
		cause = unwrapped
	}
	if m := errLinePattern.FindStringSubmatch(cause.Error()); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			errLine = n
		}
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	for i, line := range strings.Split(res.FailedCell.Source, "\n") {
		if i+1 == errLine {
			fmt.Fprintf(&b, "-> %s\n", line)
		} else {
			fmt.Fprintf(&b, "   %s\n", line)
		}
	}
	b.WriteString("\n")
	b.WriteString(res.Err.Error())
	return b.String()
}

// CollectingReporter accumulates outcomes for later inspection. Safe for
// concurrent use across files.
type CollectingReporter struct {
	mu     sync.Mutex
	passed []string
	failed map[string]error
}

// NewCollectingReporter creates an empty CollectingReporter.
func NewCollectingReporter() *CollectingReporter {
	return &CollectingReporter{failed: make(map[string]error)}
}

func (r *CollectingReporter) Pass(unit TestUnit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.passed = append(r.passed, unit.Name)
}

func (r *CollectingReporter) Fail(unit TestUnit, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[unit.Name] = err
}

// Passed returns the names of units that passed, in report order.
func (r *CollectingReporter) Passed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.passed))
	copy(out, r.passed)
	return out
}

// Failed returns failed unit names mapped to their captured errors.
func (r *CollectingReporter) Failed() map[string]error {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]error, len(r.failed))
	for k, v := range r.failed {
		out[k] = v
	}
	return out
}

// LogReporter emits one log event per unit outcome.
type LogReporter struct {
	Log *zap.Logger
}

func (r *LogReporter) Pass(unit TestUnit) {
	r.Log.Info("test passed", zap.String("name", unit.Name))
}

func (r *LogReporter) Fail(unit TestUnit, err error) {
	r.Log.Error("test failed", zap.String("name", unit.Name), zap.Error(err))
}
