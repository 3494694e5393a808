package importer

import (
	"fmt"
	"path/filepath"
	"sync"
)

// Handler loads the notebook file at path as a Module.
type Handler func(path string) (*Module, error)

// Process-wide registry of suffix handlers. Initialization may be triggered
// from multiple entry points, so registration is idempotent.
var (
	registryMu sync.RWMutex
	handlers   = make(map[string]Handler)
)

// RegisterSuffix binds a handler to a file suffix (e.g. ".gonb"). If the
// suffix already has a handler the call is a no-op, not an error.
func RegisterSuffix(suffix string, h Handler) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := handlers[suffix]; ok {
		return
	}
	handlers[suffix] = h
}

// LookupSuffix returns the handler registered for a suffix.
func LookupSuffix(suffix string) (Handler, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	h, ok := handlers[suffix]
	return h, ok
}

// RegisteredSuffix reports whether any handler is bound to the suffix.
func RegisteredSuffix(suffix string) bool {
	_, ok := LookupSuffix(suffix)
	return ok
}

// ImportFile dispatches on the file's suffix through the registry.
func ImportFile(path string) (*Module, error) {
	ext := filepath.Ext(path)
	h, ok := LookupSuffix(ext)
	if !ok {
		return nil, fmt.Errorf("no handler registered for suffix %q", ext)
	}
	return h(path)
}
