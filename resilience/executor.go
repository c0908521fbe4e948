package resilience

import (
	"context"
	"time"
)

// Executor runs a probe inside an optional bulkhead and an optional time
// budget. The slot is taken first, so time spent queueing for a slot does not
// count against the budget.
type Executor struct {
	bulkhead *Bulkhead
	timeout  *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates an Executor. With no options it runs op directly.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithBulkhead caps concurrent probes with b.
func WithBulkhead(b *Bulkhead) ExecutorOption {
	return func(e *Executor) { e.bulkhead = b }
}

// WithTimeout bounds every probe to budget.
func WithTimeout(budget time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = NewTimeout(budget) }
}

// Execute runs op.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	run := op
	if e.timeout != nil {
		run = func(ctx context.Context) error { return e.timeout.Execute(ctx, op) }
	}
	if e.bulkhead == nil {
		return run(ctx)
	}
	return e.bulkhead.Execute(ctx, run)
}

// Stats summarizes the executor's limits and counters.
type Stats struct {
	Budget   time.Duration  `json:"budget,omitempty"`
	Expired  int64          `json:"expired"`
	Bulkhead *BulkheadStats `json:"bulkhead,omitempty"`
}

// Stats returns a snapshot of the executor's counters.
func (e *Executor) Stats() Stats {
	var s Stats
	if e.timeout != nil {
		s.Budget = e.timeout.Budget()
		s.Expired = e.timeout.Expired()
	}
	if e.bulkhead != nil {
		bs := e.bulkhead.Stats()
		s.Bulkhead = &bs
	}
	return s
}
