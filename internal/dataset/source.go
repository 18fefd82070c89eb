package dataset

import (
	"context"
	"fmt"
)

// Source provides tabular training data to the engine.
type Source interface {
	// Load reads the full training table.
	Load(ctx context.Context) (*Table, error)
}

// Constructor is a function that creates a new Source for a location
// (a file path, DSN, or URL, depending on the provider).
type Constructor func(location string) Source

var registry = map[string]Constructor{}

// Register adds a source constructor under the given provider name.
func Register(name string, ctor Constructor) {
	registry[name] = ctor
}

// Get returns the source constructor for the given provider name.
func Get(name string) (Constructor, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown dataset provider: %s", name)
	}
	return ctor, nil
}

// Providers returns the names of all registered source providers.
func Providers() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
