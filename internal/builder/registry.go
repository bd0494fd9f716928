package builder

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// Options configures a builder created through the Registry.
type Options struct {
	URL       string
	Namespace string
	Timeout   time.Duration
}

// Factory creates a builder. The returned close function releases whatever
// the builder holds and may be nil.
type Factory func(ctx context.Context, opts Options) (Applier, func() error, error)

// Registry maps builder names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory. Registering a name twice is a programming error.
func (r *Registry) Register(name string, f Factory) {
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("builder with name '%s' already registered", name))
	}
	slog.Debug("Registering builder.", "name", name)
	r.factories[name] = f
}

// Names lists the registered builders in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the builder registered under name.
func (r *Registry) New(ctx context.Context, name string, opts Options) (Applier, func() error, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, nil, fmt.Errorf("unknown builder %q (available: %v)", name, r.Names())
	}
	return f(ctx, opts)
}

// MemoryFactory creates a fresh Memory builder.
func MemoryFactory(context.Context, Options) (Applier, func() error, error) {
	return NewMemory(), nil, nil
}
