package servicebus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/busprobe/cache"
	"github.com/jonwraymond/busprobe/observe"
	"github.com/jonwraymond/busprobe/resilience"
)

// ProberOptions configures a Prober.
type ProberOptions struct {
	// Provider constructs messaging and management clients. Required.
	Provider ClientProvider

	// Timeout bounds one probe, including any handle construction it waits on.
	// Default: 0 (bounded by the caller's context only)
	Timeout time.Duration

	// BuildTimeout bounds one handle construction, independently of the
	// probe that triggered it.
	// Default: 1 minute
	BuildTimeout time.Duration

	// MaxConcurrent caps concurrently running probes.
	// Default: 0 (unlimited)
	MaxConcurrent int

	// MaxWait is how long a probe waits for a slot when MaxConcurrent is reached.
	// Default: 0 (fail immediately with resilience.ErrBulkheadFull)
	MaxWait time.Duration

	// Middleware records probe telemetry.
	// Default: observe.NopMiddleware()
	Middleware *observe.Middleware
}

// Prober runs liveness probes against Service Bus queues and topics.
//
// Every handle it opens is cached for the Prober's lifetime: one client and one
// admin client per ConnectionKey, one receiver or sender per resource key.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Context: ctx bounds only the calling probe; handles being built for it
//     are still cached for later probes.
//   - Errors: Probe never panics and never returns an error; failures are
//     reported in the Verdict.
//   - Ownership: Close releases every cached handle.
type Prober struct {
	provider ClientProvider
	exec     *resilience.Executor
	mw       *observe.Middleware

	clients   *cache.Keyed[Client]
	admins    *cache.Keyed[AdminClient]
	receivers *cache.Keyed[Receiver]
	senders   *cache.Keyed[Sender]
}

// NewProber creates a Prober.
func NewProber(opts ProberOptions) (*Prober, error) {
	if opts.Provider == nil {
		return nil, ErrNilProvider
	}
	if opts.Middleware == nil {
		opts.Middleware = observe.NopMiddleware()
	}

	var execOpts []resilience.ExecutorOption
	if opts.Timeout > 0 {
		execOpts = append(execOpts, resilience.WithTimeout(opts.Timeout))
	}
	if opts.MaxConcurrent > 0 {
		execOpts = append(execOpts, resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
			MaxConcurrent: opts.MaxConcurrent,
			MaxWait:       opts.MaxWait,
		})))
	}

	p := &Prober{
		provider: opts.Provider,
		exec:     resilience.NewExecutor(execOpts...),
		mw:       opts.Middleware,
	}
	p.clients = cache.NewKeyed[Client](p.cacheOptions("client", opts.BuildTimeout))
	p.admins = cache.NewKeyed[AdminClient](p.cacheOptions("admin", opts.BuildTimeout))
	p.receivers = cache.NewKeyed[Receiver](p.cacheOptions("receiver", opts.BuildTimeout))
	p.senders = cache.NewKeyed[Sender](p.cacheOptions("sender", opts.BuildTimeout))
	return p, nil
}

func (p *Prober) cacheOptions(handle string, buildTimeout time.Duration) cache.KeyedOptions {
	return cache.KeyedOptions{
		BuildTimeout: buildTimeout,
		OnBuild: func(_ string, d time.Duration, err error) {
			p.mw.RecordBuild(context.Background(), handle, d, err)
		},
	}
}

// Probe runs one probe of target over the connection named by id.
//
// Exactly one operation runs, selected by the target's mode. No retries are
// attempted.
func (p *Prober) Probe(ctx context.Context, target Target, id ConnectionIdentity) Verdict {
	return p.run(ctx, "", target, id)
}

func (p *Prober) run(ctx context.Context, check string, target Target, id ConnectionIdentity) Verdict {
	start := time.Now()
	meta := observe.ProbeMeta{
		Check:     check,
		Kind:      string(target.Kind()),
		Resource:  target.Name(),
		Mode:      string(target.Mode()),
		Namespace: id.Namespace(),
	}

	var props *RuntimeProperties
	err := p.mw.Wrap(func(ctx context.Context, _ observe.ProbeMeta) error {
		return p.exec.Execute(ctx, func(ctx context.Context) error {
			var err error
			props, err = p.probe(ctx, target, id)
			return err
		})
	})(ctx, meta)

	v := Verdict{
		Healthy:  err == nil,
		Err:      err,
		Target:   target,
		Duration: time.Since(start),
	}
	if err == nil {
		v.Properties = props
	}
	return v
}

func (p *Prober) probe(ctx context.Context, target Target, id ConnectionIdentity) (props *RuntimeProperties, err error) {
	defer func() {
		if r := recover(); r != nil {
			props, err = nil, fmt.Errorf("%w: %s: %v", ErrProbePanic, target, r)
		}
	}()

	if err := target.Validate(); err != nil {
		return nil, err
	}
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ck := id.Key()
	if target.Mode() == ModeManagement {
		return p.management(ctx, target, id, ck)
	}

	client, err := p.clients.GetOrCreate(ctx, string(ck), func(ctx context.Context) (Client, error) {
		return nonNil(p.provider.NewClient(ctx, id))
	})
	if err != nil {
		return nil, fmt.Errorf("servicebus: client: %w", err)
	}

	rk := target.ResourceKey(ck)
	switch target.Mode() {
	case ModePeek:
		receiver, err := p.receivers.GetOrCreate(ctx, rk, func(ctx context.Context) (Receiver, error) {
			return nonNil(client.NewReceiver(ctx, target.Name()))
		})
		if err != nil {
			return nil, fmt.Errorf("servicebus: receiver for %s: %w", target, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, receiver.PeekMessage(ctx)

	default:
		sender, err := p.senders.GetOrCreate(ctx, rk, func(ctx context.Context) (Sender, error) {
			return nonNil(client.NewSender(ctx, target.Name()))
		})
		if err != nil {
			return nil, fmt.Errorf("servicebus: sender for %s: %w", target, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, sender.CreateMessageBatch(ctx)
	}
}

// management runs a runtime-properties lookup. One admin client serves every
// resource on a connection, so it is keyed by the ConnectionKey alone.
func (p *Prober) management(ctx context.Context, target Target, id ConnectionIdentity, ck ConnectionKey) (*RuntimeProperties, error) {
	admin, err := p.admins.GetOrCreate(ctx, string(ck), func(ctx context.Context) (AdminClient, error) {
		return nonNil(p.provider.NewAdminClient(ctx, id))
	})
	if err != nil {
		return nil, fmt.Errorf("servicebus: admin client: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var props *RuntimeProperties
	if target.Kind() == KindQueue {
		props, err = admin.GetQueueRuntimeProperties(ctx, target.Name())
	} else {
		props, err = admin.GetTopicRuntimeProperties(ctx, target.Name())
	}
	if err != nil {
		return nil, err
	}
	if props == nil {
		return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, target)
	}
	return props, nil
}

// Stats reports the number of cached handles by type and the probe limits.
type Stats struct {
	Clients   int              `json:"clients"`
	Admins    int              `json:"admins"`
	Receivers int              `json:"receivers"`
	Senders   int              `json:"senders"`
	Limits    resilience.Stats `json:"limits"`
}

// Stats returns the current cache sizes and limiter counters.
func (p *Prober) Stats() Stats {
	return Stats{
		Clients:   p.clients.Len(),
		Admins:    p.admins.Len(),
		Receivers: p.receivers.Len(),
		Senders:   p.senders.Len(),
		Limits:    p.exec.Stats(),
	}
}

// Close releases every cached handle. Receivers and senders are closed before
// the clients that own them. Close is idempotent.
func (p *Prober) Close(ctx context.Context) error {
	return errors.Join(
		p.receivers.Close(ctx),
		p.senders.Close(ctx),
		p.admins.Close(ctx),
		p.clients.Close(ctx),
	)
}

func nonNil[V comparable](v V, err error) (V, error) {
	var zero V
	if err == nil && v == zero {
		return zero, ErrNilHandle
	}
	return v, err
}
