package servicebus

import (
	"context"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

// fakeProvider records every construction and operation and lets tests inject
// failures. All counters are guarded by mu.
type fakeProvider struct {
	mu sync.Mutex

	clientKeys     []ConnectionKey
	adminKeys      []ConnectionKey
	receiverBuilds map[string]int
	senderBuilds   map[string]int
	peeks          map[string]int
	batches        map[string]int
	lookups        map[string]int
	closed         int

	clientErrs []error // consumed one per client build
	peekErr    error
	batchErr   error
	lookupErr  error
	missing    map[string]bool
	panicPeek  bool
	nilClient  bool

	// buildGate, when set, holds client construction until closed.
	buildGate chan struct{}
	// block, when set, holds peek and batch operations until ctx is done.
	block bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		receiverBuilds: make(map[string]int),
		senderBuilds:   make(map[string]int),
		peeks:          make(map[string]int),
		batches:        make(map[string]int),
		lookups:        make(map[string]int),
		missing:        make(map[string]bool),
	}
}

func (f *fakeProvider) set(fn func(f *fakeProvider)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeProvider) read(fn func(f *fakeProvider)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeProvider) NewClient(ctx context.Context, id ConnectionIdentity) (Client, error) {
	f.mu.Lock()
	gate := f.buildGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.clientKeys = append(f.clientKeys, id.Key())
	if len(f.clientErrs) > 0 {
		err := f.clientErrs[0]
		f.clientErrs = f.clientErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if f.nilClient {
		return nil, nil
	}
	return &fakeClient{p: f}, nil
}

func (f *fakeProvider) NewAdminClient(_ context.Context, id ConnectionIdentity) (AdminClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adminKeys = append(f.adminKeys, id.Key())
	return &fakeAdmin{p: f}, nil
}

type fakeClient struct{ p *fakeProvider }

func (c *fakeClient) NewReceiver(_ context.Context, queue string) (Receiver, error) {
	c.p.set(func(f *fakeProvider) { f.receiverBuilds[queue]++ })
	return &fakeReceiver{p: c.p, name: queue}, nil
}

func (c *fakeClient) NewSender(_ context.Context, entity string) (Sender, error) {
	c.p.set(func(f *fakeProvider) { f.senderBuilds[entity]++ })
	return &fakeSender{p: c.p, name: entity}, nil
}

func (c *fakeClient) Close(context.Context) error {
	c.p.set(func(f *fakeProvider) { f.closed++ })
	return nil
}

type fakeReceiver struct {
	p    *fakeProvider
	name string
}

func (r *fakeReceiver) PeekMessage(ctx context.Context) error {
	var err error
	var block, panicPeek bool
	r.p.set(func(f *fakeProvider) {
		f.peeks[r.name]++
		err, block, panicPeek = f.peekErr, f.block, f.panicPeek
	})
	if panicPeek {
		panic("amqp: link detached")
	}
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (r *fakeReceiver) Close(context.Context) error {
	r.p.set(func(f *fakeProvider) { f.closed++ })
	return nil
}

type fakeSender struct {
	p    *fakeProvider
	name string
}

func (s *fakeSender) CreateMessageBatch(ctx context.Context) error {
	var err error
	var block bool
	s.p.set(func(f *fakeProvider) {
		f.batches[s.name]++
		err, block = f.batchErr, f.block
	})
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (s *fakeSender) Close(context.Context) error {
	s.p.set(func(f *fakeProvider) { f.closed++ })
	return nil
}

type fakeAdmin struct{ p *fakeProvider }

func (a *fakeAdmin) lookup(name string, props *RuntimeProperties) (*RuntimeProperties, error) {
	var err error
	var missing bool
	a.p.set(func(f *fakeProvider) {
		f.lookups[name]++
		err, missing = f.lookupErr, f.missing[name]
	})
	if err != nil {
		return nil, err
	}
	if missing {
		return nil, nil
	}
	return props, nil
}

func (a *fakeAdmin) GetQueueRuntimeProperties(_ context.Context, queue string) (*RuntimeProperties, error) {
	return a.lookup(queue, &RuntimeProperties{Name: queue, SizeInBytes: 1024, ActiveMessageCount: 3})
}

func (a *fakeAdmin) GetTopicRuntimeProperties(_ context.Context, topic string) (*RuntimeProperties, error) {
	return a.lookup(topic, &RuntimeProperties{Name: topic, SizeInBytes: 2048, SubscriptionCount: 2})
}

type fakeCredential struct{}

func (fakeCredential) GetToken(context.Context, policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: "token", ExpiresOn: time.Now().Add(time.Hour)}, nil
}
