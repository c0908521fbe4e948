package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewBulkhead_DefaultCapacity(t *testing.T) {
	if got := NewBulkhead(BulkheadConfig{}).Stats().Capacity; got != 10 {
		t.Errorf("Capacity = %d, want 10", got)
	}
}

func TestBulkhead_RejectsWhenFull(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := b.Acquire(ctx); err != nil {
			t.Fatalf("Acquire() #%d error = %v", i+1, err)
		}
	}
	if err := b.Acquire(ctx); !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("Acquire() on full bulkhead error = %v, want %v", err, ErrBulkheadFull)
	}

	b.Release()
	if err := b.Acquire(ctx); err != nil {
		t.Errorf("Acquire() after Release error = %v", err)
	}

	got := b.Stats()
	want := BulkheadStats{Capacity: 2, Active: 2, Available: 0, Peak: 2, Admitted: 3, Rejected: 1}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestBulkhead_WaitsForSlot(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: time.Second})
	if err := b.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		b.Release()
	}()

	if err := b.Acquire(context.Background()); err != nil {
		t.Errorf("Acquire() error = %v, want slot after release", err)
	}
	if b.Stats().Waiting != 0 {
		t.Errorf("Waiting = %d, want 0 after admission", b.Stats().Waiting)
	}
}

func TestBulkhead_WaitExpires(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: 10 * time.Millisecond})
	_ = b.Acquire(context.Background())

	err := b.Acquire(context.Background())
	if !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("Acquire() error = %v, want %v", err, ErrBulkheadFull)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() error = %v, wait expiry leaked as a context error", err)
	}
}

func TestBulkhead_CallerCancelledWhileWaiting(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: time.Second})
	_ = b.Acquire(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	if err := b.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire() error = %v, want context.Canceled", err)
	}
	if b.Stats().Rejected != 0 {
		t.Errorf("Rejected = %d, want 0 for a cancelled caller", b.Stats().Rejected)
	}
}

func TestBulkhead_CancelledBeforeAcquire(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := b.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire() error = %v, want context.Canceled", err)
	}
	if b.Stats().Active != 0 {
		t.Errorf("Active = %d, want 0", b.Stats().Active)
	}
}

func TestBulkhead_UnbalancedRelease(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1})
	b.Release()

	if got := b.Stats(); got.Active != 0 || got.Available != 1 {
		t.Errorf("Stats() = %+v, want untouched bulkhead", got)
	}
	if err := b.Acquire(context.Background()); err != nil {
		t.Errorf("Acquire() error = %v", err)
	}
}

func TestBulkhead_ExecuteCapsConcurrency(t *testing.T) {
	const limit = 3
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: limit, MaxWait: 5 * time.Second})

	var running, peak atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := b.Execute(context.Background(), func(context.Context) error {
				n := running.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				running.Add(-1)
				return nil
			})
			if err != nil {
				t.Errorf("Execute() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if peak.Load() > limit {
		t.Errorf("peak concurrency = %d, want <= %d", peak.Load(), limit)
	}
	stats := b.Stats()
	if stats.Admitted != 20 || stats.Active != 0 || stats.Peak > limit {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestBulkhead_ExecuteReleasesOnError(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1})
	opErr := errors.New("batch failed")

	if err := b.Execute(context.Background(), func(context.Context) error { return opErr }); err != opErr {
		t.Errorf("Execute() error = %v, want %v", err, opErr)
	}
	if b.Stats().Active != 0 {
		t.Errorf("Active = %d, want 0 after a failed operation", b.Stats().Active)
	}
}
