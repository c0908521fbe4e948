// Package azure implements servicebus.ClientProvider on top of the Azure SDK
// for Go (azservicebus and its admin package).
package azure

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus/admin"

	"github.com/jonwraymond/busprobe/servicebus"
)

// Options passes SDK options through to the constructed clients.
type Options struct {
	Client *azservicebus.ClientOptions
	Admin  *admin.ClientOptions
}

// Provider builds Azure SDK clients for a ConnectionIdentity.
// It holds no state and is safe for concurrent use.
type Provider struct {
	opts Options
}

var _ servicebus.ClientProvider = (*Provider)(nil)

// NewProvider returns a Provider using opts for every client it builds.
func NewProvider(opts Options) *Provider {
	return &Provider{opts: opts}
}

// NewClient constructs the AMQP client. The SDK connects lazily, so ctx is
// only checked before construction.
func (p *Provider) NewClient(ctx context.Context, id servicebus.ConnectionIdentity) (servicebus.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		c   *azservicebus.Client
		err error
	)
	if id.UsesConnectionString() {
		c, err = azservicebus.NewClientFromConnectionString(id.ConnectionString(), p.opts.Client)
	} else {
		c, err = azservicebus.NewClient(id.Namespace(), id.Credential(), p.opts.Client)
	}
	if err != nil {
		return nil, classify(err)
	}
	return &client{c: c}, nil
}

// NewAdminClient constructs the management-plane client.
func (p *Provider) NewAdminClient(ctx context.Context, id servicebus.ConnectionIdentity) (servicebus.AdminClient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		c   *admin.Client
		err error
	)
	if id.UsesConnectionString() {
		c, err = admin.NewClientFromConnectionString(id.ConnectionString(), p.opts.Admin)
	} else {
		c, err = admin.NewClient(id.Namespace(), id.Credential(), p.opts.Admin)
	}
	if err != nil {
		return nil, classify(err)
	}
	return &adminClient{c: c}, nil
}

type client struct {
	c *azservicebus.Client
}

func (c *client) NewReceiver(_ context.Context, queue string) (servicebus.Receiver, error) {
	r, err := c.c.NewReceiverForQueue(queue, nil)
	if err != nil {
		return nil, classify(err)
	}
	return &receiver{r: r}, nil
}

func (c *client) NewSender(_ context.Context, entity string) (servicebus.Sender, error) {
	s, err := c.c.NewSender(entity, nil)
	if err != nil {
		return nil, classify(err)
	}
	return &sender{s: s}, nil
}

func (c *client) Close(ctx context.Context) error {
	return c.c.Close(ctx)
}

type receiver struct {
	r *azservicebus.Receiver
}

// PeekMessage peeks one message; an empty queue yields no messages and no error.
func (r *receiver) PeekMessage(ctx context.Context) error {
	_, err := r.r.PeekMessages(ctx, 1, nil)
	return classify(err)
}

func (r *receiver) Close(ctx context.Context) error {
	return r.r.Close(ctx)
}

type sender struct {
	s *azservicebus.Sender
}

// CreateMessageBatch opens a batch, which negotiates the link and its
// maximum message size, and discards it unsent.
func (s *sender) CreateMessageBatch(ctx context.Context) error {
	_, err := s.s.NewMessageBatch(ctx, nil)
	return classify(err)
}

func (s *sender) Close(ctx context.Context) error {
	return s.s.Close(ctx)
}

type adminClient struct {
	c *admin.Client
}

func (a *adminClient) GetQueueRuntimeProperties(ctx context.Context, queue string) (*servicebus.RuntimeProperties, error) {
	resp, err := a.c.GetQueueRuntimeProperties(ctx, queue, nil)
	if err != nil {
		return nil, classify(err)
	}
	if resp == nil {
		return nil, nil
	}
	return &servicebus.RuntimeProperties{
		Name:               queue,
		SizeInBytes:        resp.SizeInBytes,
		ActiveMessageCount: int64(resp.ActiveMessageCount),
	}, nil
}

func (a *adminClient) GetTopicRuntimeProperties(ctx context.Context, topic string) (*servicebus.RuntimeProperties, error) {
	resp, err := a.c.GetTopicRuntimeProperties(ctx, topic, nil)
	if err != nil {
		return nil, classify(err)
	}
	if resp == nil {
		return nil, nil
	}
	return &servicebus.RuntimeProperties{
		Name:              topic,
		SizeInBytes:       resp.SizeInBytes,
		SubscriptionCount: int64(resp.SubscriptionCount),
	}, nil
}

// classify tags SDK errors with servicebus sentinels while keeping the SDK
// error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var sbErr *azservicebus.Error
	if errors.As(err, &sbErr) {
		switch sbErr.Code {
		case azservicebus.CodeUnauthorizedAccess:
			return fmt.Errorf("%w: %w", servicebus.ErrUnauthorized, err)
		case azservicebus.CodeNotFound:
			return fmt.Errorf("%w: %w", servicebus.ErrEntityNotFound, err)
		}
		return err
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %w", servicebus.ErrUnauthorized, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", servicebus.ErrEntityNotFound, err)
		}
	}
	return err
}
