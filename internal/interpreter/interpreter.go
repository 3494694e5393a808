// Package interpreter is the narrow execution boundary for notebook code
// cells. A Namespace owns one persistent yaegi interpreter: evaluation state
// survives across Execute calls, so a cell that defines a name makes it
// visible to every later cell executed against the same Namespace.
package interpreter

import (
	"fmt"
	"reflect"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// Namespace is the mutable execution scope shared by all code cells of one
// loaded notebook instance. It is created once per instance and lives until
// the instance is discarded; there is no explicit teardown.
//
// Execution is single-threaded and synchronous. Callers must not invoke
// Execute concurrently on the same Namespace.
type Namespace struct {
	interp *interp.Interpreter
}

// NewNamespace creates a fresh Namespace with the Go standard library
// available to cell code.
func NewNamespace() (*Namespace, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("load stdlib symbols: %w", err)
	}
	return &Namespace{interp: i}, nil
}

// Execute compiles and runs source as a top-level unit in the shared scope,
// blocking until it completes or fails. The returned error carries the
// interpreter's original description unchanged.
func (ns *Namespace) Execute(source string) error {
	if _, err := ns.interp.Eval(source); err != nil {
		return err
	}
	return nil
}

// Lookup evaluates an expression in the shared scope and returns its value.
// Useful for observing names defined by earlier cells.
func (ns *Namespace) Lookup(expr string) (reflect.Value, error) {
	return ns.interp.Eval(expr)
}
