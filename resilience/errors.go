package resilience

import "errors"

var (
	// ErrBulkheadFull means every probe slot stayed taken for longer than
	// the bulkhead's MaxWait.
	ErrBulkheadFull = errors.New("resilience: no probe slot available")

	// ErrTimeout means a probe outlived its time budget. It is always joined
	// with context.DeadlineExceeded.
	ErrTimeout = errors.New("resilience: probe exceeded its time budget")
)
