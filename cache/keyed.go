package cache

import (
	"context"
	"errors"
	"fmt"
	"hash/maphash"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// KeyedOptions configures a Keyed cache.
type KeyedOptions struct {
	// BuildTimeout bounds a single construction.
	// Default: 1 minute
	BuildTimeout time.Duration

	// Shards is the number of independently locked partitions.
	// Default: 16
	Shards int

	// OnBuild is called after every construction attempt, successful or not.
	OnBuild func(key string, duration time.Duration, err error)
}

// Keyed is a single-flight cache of lazily constructed values.
//
// Contract:
// - Concurrency: safe for concurrent use; at most one construction per key is in flight.
// - Context: GetOrCreate stops waiting when ctx is done; the construction itself continues.
// - Errors: factory errors reach every waiter of that construction and are never cached.
// - Ownership: the cache owns every stored value until Close.
type Keyed[V any] struct {
	opts   KeyedOptions
	seed   maphash.Seed
	shards []*keyedShard[V]
	closed atomic.Bool

	life context.Context
	stop context.CancelFunc
}

type keyedShard[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
	flight  singleflight.Group
}

// NewKeyed creates an empty keyed cache.
func NewKeyed[V any](opts ...KeyedOptions) *Keyed[V] {
	cfg := KeyedOptions{}
	if len(opts) > 0 {
		cfg = opts[0]
	}
	if cfg.BuildTimeout <= 0 {
		cfg.BuildTimeout = time.Minute
	}
	if cfg.Shards <= 0 {
		cfg.Shards = 16
	}

	life, stop := context.WithCancel(context.Background())
	c := &Keyed[V]{
		opts:   cfg,
		seed:   maphash.MakeSeed(),
		shards: make([]*keyedShard[V], cfg.Shards),
		life:   life,
		stop:   stop,
	}
	for i := range c.shards {
		c.shards[i] = &keyedShard[V]{entries: make(map[string]V)}
	}
	return c
}

// GetOrCreate returns the value stored under key, constructing it with
// factory on a miss.
//
// Concurrent callers for the same key attach to the construction already in
// flight instead of starting their own. If ctx is done before the value is
// available, GetOrCreate returns ctx.Err() for this caller only.
func (c *Keyed[V]) GetOrCreate(ctx context.Context, key string, factory Factory[V]) (V, error) {
	var zero V
	if err := ValidateKey(key); err != nil {
		return zero, err
	}
	if factory == nil {
		return zero, ErrNilFactory
	}
	if c.closed.Load() {
		return zero, ErrClosed
	}

	s := c.shardFor(key)
	if v, ok := s.load(key); ok {
		return v, nil
	}

	ch := s.flight.DoChan(key, func() (any, error) {
		// A previous flight may have stored the value after our miss above.
		if v, ok := s.load(key); ok {
			return v, nil
		}
		return c.build(ctx, s, key, factory)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(V)
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Get returns the value stored under key without constructing it.
func (c *Keyed[V]) Get(key string) (V, bool) {
	return c.shardFor(key).load(key)
}

// Len returns the number of stored values.
func (c *Keyed[V]) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}

// Keys returns the stored keys in sorted order.
func (c *Keyed[V]) Keys() []string {
	keys := make([]string, 0)
	for _, s := range c.shards {
		s.mu.RLock()
		for k := range s.entries {
			keys = append(keys, k)
		}
		s.mu.RUnlock()
	}
	sort.Strings(keys)
	return keys
}

// Close releases every stored value implementing Closer and rejects further
// lookups with ErrClosed. Constructions still in flight are cancelled; any
// value they produce anyway is released instead of stored.
// Close is idempotent and returns the joined release errors.
func (c *Keyed[V]) Close(ctx context.Context) error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.stop()

	var errs []error
	for _, s := range c.shards {
		s.mu.Lock()
		entries := s.entries
		s.entries = make(map[string]V)
		s.mu.Unlock()

		for key, v := range entries {
			if err := closeValue(ctx, v); err != nil {
				errs = append(errs, fmt.Errorf("cache: close %q: %w", key, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (c *Keyed[V]) build(ctx context.Context, s *keyedShard[V], key string, factory Factory[V]) (v V, err error) {
	bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.BuildTimeout)
	defer cancel()
	stop := context.AfterFunc(c.life, cancel)
	defer stop()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			var zero V
			v, err = zero, fmt.Errorf("cache: factory for %q panicked: %v", key, r)
		}
		if c.opts.OnBuild != nil {
			c.opts.OnBuild(key, time.Since(start), err)
		}
	}()

	v, err = factory(bctx)
	if err != nil {
		var zero V
		return zero, err
	}

	if !s.store(key, v, &c.closed) {
		_ = closeValue(context.Background(), v)
		var zero V
		return zero, ErrClosed
	}
	return v, nil
}

func (c *Keyed[V]) shardFor(key string) *keyedShard[V] {
	return c.shards[maphash.String(c.seed, key)%uint64(len(c.shards))]
}

func (s *keyedShard[V]) load(key string) (V, bool) {
	s.mu.RLock()
	v, ok := s.entries[key]
	s.mu.RUnlock()
	return v, ok
}

// store keeps v unless the cache was closed; closed is checked under the shard
// lock so Close either drains v or the caller releases it.
func (s *keyedShard[V]) store(key string, v V, closed *atomic.Bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if closed.Load() {
		return false
	}
	s.entries[key] = v
	return true
}
