package servicebus

import "context"

// ClientProvider constructs connection-level clients. The servicebus/azure
// package provides the implementation backed by the Azure SDK; tests use fakes.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Context: constructors honor ctx for any network handshake.
//   - Errors: a nil error implies a non-nil handle.
type ClientProvider interface {
	// NewClient constructs the messaging client for id, using the connection
	// string constructor or the namespace and credential constructor.
	NewClient(ctx context.Context, id ConnectionIdentity) (Client, error)

	// NewAdminClient constructs the management-plane client for id.
	NewAdminClient(ctx context.Context, id ConnectionIdentity) (AdminClient, error)
}

// Client is a connection-level messaging client.
type Client interface {
	// NewReceiver returns a receiver for queue.
	NewReceiver(ctx context.Context, queue string) (Receiver, error)

	// NewSender returns a sender for a queue or topic.
	NewSender(ctx context.Context, entity string) (Sender, error)

	Close(ctx context.Context) error
}

// Receiver reads from a queue.
type Receiver interface {
	// PeekMessage peeks at most one message. An empty queue is not an error.
	PeekMessage(ctx context.Context) error

	Close(ctx context.Context) error
}

// Sender writes to a queue or topic.
type Sender interface {
	// CreateMessageBatch opens a message batch without sending it.
	CreateMessageBatch(ctx context.Context) error

	Close(ctx context.Context) error
}

// AdminClient reads management-plane metadata.
//
// A nil result with a nil error means the entity does not exist.
type AdminClient interface {
	GetQueueRuntimeProperties(ctx context.Context, queue string) (*RuntimeProperties, error)
	GetTopicRuntimeProperties(ctx context.Context, topic string) (*RuntimeProperties, error)
}

// RuntimeProperties is the subset of entity runtime metadata surfaced in
// check details.
type RuntimeProperties struct {
	Name               string
	SizeInBytes        int64
	ActiveMessageCount int64 // queues only
	SubscriptionCount  int64 // topics only
}
