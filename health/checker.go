package health

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// Status is the outcome of a check. Larger values are worse, so the status of
// a group of checks is the maximum of its members.
type Status int

const (
	StatusHealthy Status = iota
	StatusDegraded
	StatusUnhealthy
)

var statusNames = [...]string{
	StatusHealthy:   "healthy",
	StatusDegraded:  "degraded",
	StatusUnhealthy: "unhealthy",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(s string) (Status, error) {
	for i, name := range statusNames {
		if name == s {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("health: unknown status %q", s)
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	v, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Result is what a Checker reports. Error carries the cause of a failed
// check and is never rendered to clients that did not ask for detail.
type Result struct {
	Status    Status
	Message   string
	Details   map[string]any
	Duration  time.Duration
	Timestamp time.Time
	Error     error
}

func newResult(status Status, message string, err error) Result {
	return Result{Status: status, Message: message, Error: err, Timestamp: time.Now()}
}

// Healthy returns a passing result.
func Healthy(message string) Result { return newResult(StatusHealthy, message, nil) }

// Degraded returns a result for a dependency that works but not fully.
func Degraded(message string) Result { return newResult(StatusDegraded, message, nil) }

// Unhealthy returns a failing result caused by err.
func Unhealthy(message string, err error) Result {
	return newResult(StatusUnhealthy, message, err)
}

// WithDetails returns r carrying details.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// WithDuration returns r carrying d.
func (r Result) WithDuration(d time.Duration) Result {
	r.Duration = d
	return r
}

// Failed reports whether the result is anything other than healthy.
func (r Result) Failed() bool { return r.Status != StatusHealthy }

// Checker is one named health check.
//
// Contract:
//   - Concurrency: Check may be called concurrently.
//   - Context: Check returns promptly once ctx is done.
//   - Errors: failures are reported through Result, never by panicking.
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}

// CheckerFunc turns a function into a Checker.
type CheckerFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckerFunc returns a Checker called name that runs fn.
func NewCheckerFunc(name string, fn func(context.Context) Result) *CheckerFunc {
	return &CheckerFunc{name: name, fn: fn}
}

func (f *CheckerFunc) Name() string { return f.name }

func (f *CheckerFunc) Check(ctx context.Context) Result { return f.fn(ctx) }

// Registration describes how a checker is run and reported.
type Registration struct {
	// Name identifies the check in results and in /health/{name}.
	// Default: the checker's Name()
	Name string

	// FailureStatus replaces StatusUnhealthy in this check's results, so a
	// non-critical dependency can report degraded instead.
	// Default: StatusUnhealthy (the zero value StatusHealthy is treated as unset)
	FailureStatus Status

	// Timeout bounds this check on top of the aggregator timeout.
	// Default: 0 (aggregator timeout only)
	Timeout time.Duration

	// Tags select subsets of checks, for example "ready".
	Tags []string
}

func (r Registration) failureStatus() Status {
	if r.FailureStatus == StatusHealthy {
		return StatusUnhealthy
	}
	return r.FailureStatus
}

// HasTag reports whether the registration carries tag.
func (r Registration) HasTag(tag string) bool {
	return slices.Contains(r.Tags, tag)
}
