package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// DefaultBudget is the time budget used when none is given.
const DefaultBudget = 30 * time.Second

// Timeout gives every probe a fixed time budget.
type Timeout struct {
	budget  time.Duration
	expired atomic.Int64
}

// NewTimeout creates a Timeout. A non-positive budget selects DefaultBudget.
func NewTimeout(budget time.Duration) *Timeout {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Timeout{budget: budget}
}

// Budget returns the configured budget.
func (t *Timeout) Budget() time.Duration { return t.budget }

// Expired returns how many probes ran out of budget.
func (t *Timeout) Expired() int64 { return t.expired.Load() }

// Execute runs op under the budget and returns as soon as the budget or ctx
// ends, even when op ignores its context.
//
// A spent budget yields an error matching both ErrTimeout and
// context.DeadlineExceeded. When ctx ends first its error is returned as is,
// so a caller's own deadline is never reported as ErrTimeout.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	opCtx, cancel := context.WithTimeout(ctx, t.budget)
	defer cancel()

	result := make(chan error, 1)
	go func() { result <- op(opCtx) }()

	select {
	case err := <-result:
		return err
	case <-opCtx.Done():
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if !errors.Is(opCtx.Err(), context.DeadlineExceeded) {
		return opCtx.Err()
	}
	t.expired.Add(1)
	return fmt.Errorf("%w after %s: %w", ErrTimeout, t.budget, context.DeadlineExceeded)
}
