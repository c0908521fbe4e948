package resilience

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// BulkheadConfig configures the bulkhead.
type BulkheadConfig struct {
	// MaxConcurrent is the number of probes allowed in flight.
	// Default: 10
	MaxConcurrent int

	// MaxWait is how long a probe may queue for a slot.
	// Default: 0 (reject at once)
	MaxWait time.Duration
}

// Bulkhead caps the number of probes in flight so a burst of health requests
// cannot fan out into unbounded round-trips against one namespace.
type Bulkhead struct {
	capacity int64
	maxWait  time.Duration
	sem      *semaphore.Weighted

	active   atomic.Int64
	peak     atomic.Int64
	waiting  atomic.Int64
	admitted atomic.Int64
	rejected atomic.Int64
}

// NewBulkhead creates a bulkhead.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}
	return &Bulkhead{
		capacity: int64(config.MaxConcurrent),
		maxWait:  config.MaxWait,
		sem:      semaphore.NewWeighted(int64(config.MaxConcurrent)),
	}
}

// Acquire takes a slot. It fails with ErrBulkheadFull when no slot frees up
// within MaxWait, or with ctx's error when ctx ends first.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.sem.TryAcquire(1) {
		b.admit()
		return nil
	}
	if b.maxWait <= 0 {
		b.rejected.Add(1)
		return ErrBulkheadFull
	}

	wctx, cancel := context.WithTimeout(ctx, b.maxWait)
	defer cancel()

	b.waiting.Add(1)
	err := b.sem.Acquire(wctx, 1)
	b.waiting.Add(-1)
	if err == nil {
		b.admit()
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	b.rejected.Add(1)
	return fmt.Errorf("%w after waiting %s", ErrBulkheadFull, b.maxWait)
}

// Release frees a slot taken by Acquire. A Release without a matching
// Acquire is ignored.
func (b *Bulkhead) Release() {
	for {
		n := b.active.Load()
		if n <= 0 {
			return
		}
		if b.active.CompareAndSwap(n, n-1) {
			b.sem.Release(1)
			return
		}
	}
}

// Execute runs op while holding a slot.
func (b *Bulkhead) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.Acquire(ctx); err != nil {
		return err
	}
	defer b.Release()
	return op(ctx)
}

func (b *Bulkhead) admit() {
	b.admitted.Add(1)
	n := b.active.Add(1)
	for {
		p := b.peak.Load()
		if n <= p || b.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

// Stats returns a snapshot of the bulkhead's counters.
func (b *Bulkhead) Stats() BulkheadStats {
	active := b.active.Load()
	return BulkheadStats{
		Capacity:  b.capacity,
		Active:    active,
		Available: b.capacity - active,
		Peak:      b.peak.Load(),
		Waiting:   b.waiting.Load(),
		Admitted:  b.admitted.Load(),
		Rejected:  b.rejected.Load(),
	}
}

// BulkheadStats is a point-in-time view of a Bulkhead.
type BulkheadStats struct {
	Capacity  int64 `json:"capacity"`
	Active    int64 `json:"active"`
	Available int64 `json:"available"`
	Peak      int64 `json:"peak"`
	Waiting   int64 `json:"waiting"`
	Admitted  int64 `json:"admitted"`
	Rejected  int64 `json:"rejected"`
}
