package servicebus

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
)

// QueueOptions configures a queue health check.
type QueueOptions struct {
	// QueueName is the queue to probe. Required.
	QueueName string

	// ConnectionString selects connection string authentication.
	// Mutually exclusive with FullyQualifiedNamespace.
	ConnectionString string

	// FullyQualifiedNamespace and Credential select token authentication.
	FullyQualifiedNamespace string
	Credential              azcore.TokenCredential

	// UsePeekMode probes by peeking one message. Requires Listen rights.
	UsePeekMode bool

	// UseCreateMessageBatchMode probes by opening a send batch. Requires Send rights.
	// Default: true
	UseCreateMessageBatchMode bool
}

// DefaultQueueOptions returns options with batch mode enabled.
func DefaultQueueOptions() QueueOptions {
	return QueueOptions{UseCreateMessageBatchMode: true}
}

// Identity returns the connection identity the options select.
func (o QueueOptions) Identity() ConnectionIdentity {
	return identityOf(o.ConnectionString, o.FullyQualifiedNamespace, o.Credential)
}

// Mode resolves the probe mode. Exactly one probe runs per check:
// peek wins over batch, and management is used when neither is enabled.
func (o QueueOptions) Mode() QueueMode {
	switch {
	case o.UsePeekMode:
		return QueuePeek
	case o.UseCreateMessageBatchMode:
		return QueueSendBatch
	default:
		return QueueManagement
	}
}

// Target returns the probe target the options select.
func (o QueueOptions) Target() Target {
	return QueueTarget(o.QueueName, o.Mode())
}

// Validate checks the options.
func (o QueueOptions) Validate() error {
	if o.QueueName == "" {
		return ErrInvalidName
	}
	return validateIdentity(o.ConnectionString, o.FullyQualifiedNamespace, o.Credential)
}

// TopicOptions configures a topic health check.
type TopicOptions struct {
	// TopicName is the topic to probe. Required.
	TopicName string

	ConnectionString        string
	FullyQualifiedNamespace string
	Credential              azcore.TokenCredential

	// UseCreateMessageBatchMode probes by opening a send batch; otherwise the
	// management plane is queried.
	// Default: true
	UseCreateMessageBatchMode bool
}

// DefaultTopicOptions returns options with batch mode enabled.
func DefaultTopicOptions() TopicOptions {
	return TopicOptions{UseCreateMessageBatchMode: true}
}

func (o TopicOptions) Identity() ConnectionIdentity {
	return identityOf(o.ConnectionString, o.FullyQualifiedNamespace, o.Credential)
}

func (o TopicOptions) Mode() TopicMode {
	if o.UseCreateMessageBatchMode {
		return TopicSendBatch
	}
	return TopicManagement
}

func (o TopicOptions) Target() Target {
	return TopicTarget(o.TopicName, o.Mode())
}

// Validate checks the options.
func (o TopicOptions) Validate() error {
	if o.TopicName == "" {
		return ErrInvalidName
	}
	return validateIdentity(o.ConnectionString, o.FullyQualifiedNamespace, o.Credential)
}

func identityOf(cs, ns string, cred azcore.TokenCredential) ConnectionIdentity {
	if cs != "" {
		return FromConnectionString(cs)
	}
	return FromCredential(ns, cred)
}

func validateIdentity(cs, ns string, cred azcore.TokenCredential) error {
	if cs != "" && ns != "" {
		return ErrAmbiguousIdentity
	}
	return identityOf(cs, ns, cred).Validate()
}
