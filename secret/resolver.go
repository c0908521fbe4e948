package secret

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
)

// Resolver expands environment variables in configuration values and then
// replaces secret references through its providers.
//
// A value that is entirely a reference is replaced by the secret. A reference
// embedded in a longer value, such as "Bearer secretref:file:token", is
// replaced in place.
//
// A nil *Resolver performs environment expansion only.
type Resolver struct {
	providers map[string]Provider
	strict    bool
}

// NewResolver returns a Resolver over providers. When strict is set an empty
// secret is an error.
func NewResolver(strict bool, providers ...Provider) *Resolver {
	r := &Resolver{providers: make(map[string]Provider, len(providers)), strict: strict}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// NewResolverFromRegistry opens every provider named in cfg from reg.
func NewResolverFromRegistry(reg *Registry, strict bool, cfg map[string]map[string]any) (*Resolver, error) {
	providers, err := reg.Open(cfg)
	if err != nil {
		return nil, err
	}
	return NewResolver(strict, providers...), nil
}

// Register adds or replaces the provider for p.Name().
func (r *Resolver) Register(p Provider) {
	if r == nil || p == nil {
		return
	}
	if r.providers == nil {
		r.providers = make(map[string]Provider)
	}
	r.providers[p.Name()] = p
}

// Close closes every provider, in name order.
func (r *Resolver) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(r.providers)) {
		if err := r.providers[name].Close(); err != nil {
			errs = append(errs, fmt.Errorf("secret: close %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// ResolveValue resolves one configuration value.
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	expanded, err := ExpandEnvStrict(value)
	if err != nil || r == nil {
		return expanded, err
	}
	if ref, ok := ParseRef(expanded); ok {
		return r.lookup(ctx, ref)
	}
	return r.replaceEmbedded(ctx, expanded)
}

// ResolveAll resolves each non-empty field in place. Fields are left untouched
// when any of them fails.
func (r *Resolver) ResolveAll(ctx context.Context, fields ...*string) error {
	resolved := make([]string, len(fields))
	for i, f := range fields {
		if f == nil || *f == "" {
			continue
		}
		v, err := r.ResolveValue(ctx, *f)
		if err != nil {
			return err
		}
		resolved[i] = v
	}
	for i, f := range fields {
		if f != nil && *f != "" {
			*f = resolved[i]
		}
	}
	return nil
}

func (r *Resolver) lookup(ctx context.Context, ref Ref) (string, error) {
	p, ok := r.providers[ref.Provider]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrProviderNotRegistered, ref.Provider)
	}
	v, err := p.Resolve(ctx, ref.Key)
	if err != nil {
		return "", fmt.Errorf("secret: %s: %w", ref.Provider, err)
	}
	if r.strict && v == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptySecret, ref)
	}
	return v, nil
}

var embeddedRef = regexp.MustCompile(`secretref:[^:\s]+:\S+`)

func (r *Resolver) replaceEmbedded(ctx context.Context, value string) (string, error) {
	var firstErr error
	out := embeddedRef.ReplaceAllStringFunc(value, func(m string) string {
		if firstErr != nil {
			return m
		}
		ref, _ := ParseRef(m)
		v, err := r.lookup(ctx, ref)
		if err != nil {
			firstErr = err
			return m
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}
