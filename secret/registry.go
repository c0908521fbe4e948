package secret

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Factory builds a Provider from its block in the secrets configuration.
type Factory func(cfg map[string]any) (Provider, error)

// Registry maps provider names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry holds the built-in env and file providers.
var DefaultRegistry = NewRegistry()

// Register adds a factory under name. Names are unique.
func (r *Registry) Register(name string, factory Factory) error {
	name = strings.TrimSpace(name)
	if name == "" || factory == nil {
		return ErrInvalidRegistration
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.factories[name]; dup {
		return fmt.Errorf("%w: %q already registered", ErrInvalidRegistration, name)
	}
	r.factories[name] = factory
	return nil
}

// Create builds the provider registered under name. The provider must report
// the same name it was registered with, since references are routed by it.
func (r *Registry) Create(name string, cfg map[string]any) (Provider, error) {
	name = strings.TrimSpace(name)

	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotRegistered, name)
	}

	p, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("secret: create %s: %w", name, err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %q built a nil provider", ErrInvalidRegistration, name)
	}
	if p.Name() != name {
		err := fmt.Errorf("%w: %q built provider %q", ErrInvalidRegistration, name, p.Name())
		return nil, errors.Join(err, p.Close())
	}
	return p, nil
}

// Open creates one provider per entry in cfg, in name order. If any fails,
// the providers already created are closed.
func (r *Registry) Open(cfg map[string]map[string]any) ([]Provider, error) {
	out := make([]Provider, 0, len(cfg))
	for _, name := range slices.Sorted(maps.Keys(cfg)) {
		p, err := r.Create(name, cfg[name])
		if err != nil {
			for _, opened := range out {
				err = errors.Join(err, opened.Close())
			}
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}
