package servicebus

import (
	"context"
	"fmt"

	"github.com/jonwraymond/busprobe/health"
)

// Checker adapts one probe target to health.Checker.
//
// Checker reports only healthy or unhealthy; the aggregator maps unhealthy to
// the registration's failure status.
type Checker struct {
	name   string
	prober *Prober
	target Target
	id     ConnectionIdentity
}

// NewQueueChecker returns a checker probing the queue described by opts.
func NewQueueChecker(name string, prober *Prober, opts QueueOptions) (*Checker, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("queue check %q: %w", name, err)
	}
	return newChecker(name, prober, opts.Target(), opts.Identity())
}

// NewTopicChecker returns a checker probing the topic described by opts.
func NewTopicChecker(name string, prober *Prober, opts TopicOptions) (*Checker, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("topic check %q: %w", name, err)
	}
	return newChecker(name, prober, opts.Target(), opts.Identity())
}

func newChecker(name string, prober *Prober, target Target, id ConnectionIdentity) (*Checker, error) {
	if prober == nil {
		return nil, fmt.Errorf("check %q: prober is required", name)
	}
	if name == "" {
		name = string(target.Kind()) + ":" + target.Name()
	}
	return &Checker{name: name, prober: prober, target: target, id: id}, nil
}

// Name returns the check name.
func (c *Checker) Name() string { return c.name }

// Target returns the probe target.
func (c *Checker) Target() Target { return c.target }

// Check runs one probe.
func (c *Checker) Check(ctx context.Context) health.Result {
	v := c.prober.run(ctx, c.name, c.target, c.id)

	details := map[string]any{
		"kind":     string(c.target.Kind()),
		"resource": c.target.Name(),
		"mode":     string(c.target.Mode()),
	}
	if ns := c.id.Namespace(); ns != "" {
		details["namespace"] = ns
	}
	if p := v.Properties; p != nil {
		details["size_bytes"] = p.SizeInBytes
		if c.target.Kind() == KindQueue {
			details["active_messages"] = p.ActiveMessageCount
		} else {
			details["subscriptions"] = p.SubscriptionCount
		}
	}

	var res health.Result
	if v.Healthy {
		res = health.Healthy(c.target.String() + " reachable")
	} else {
		res = health.Unhealthy(c.target.String()+" unreachable", v.Err)
	}
	return res.WithDetails(details).WithDuration(v.Duration)
}

var _ health.Checker = (*Checker)(nil)
