package servicebus

import "errors"

// Configuration errors.
var (
	// ErrNoIdentity indicates neither a connection string nor a namespace
	// with credential was supplied.
	ErrNoIdentity = errors.New("servicebus: connection string or namespace with credential is required")

	// ErrAmbiguousIdentity indicates both identity forms were supplied.
	ErrAmbiguousIdentity = errors.New("servicebus: connection string and namespace are mutually exclusive")

	// ErrNilCredential indicates a namespace was supplied without a credential.
	ErrNilCredential = errors.New("servicebus: credential is required with a namespace")

	// ErrInvalidName indicates an empty queue or topic name.
	ErrInvalidName = errors.New("servicebus: resource name is required")

	// ErrInvalidMode indicates a probe mode that is not valid for the resource kind.
	ErrInvalidMode = errors.New("servicebus: invalid probe mode")

	// ErrNilProvider indicates a Prober was created without a ClientProvider.
	ErrNilProvider = errors.New("servicebus: client provider is required")
)

// Probe errors.
var (
	// ErrEntityNotFound indicates a management lookup found no such queue or topic.
	ErrEntityNotFound = errors.New("servicebus: entity not found")

	// ErrUnauthorized indicates the identity lacks the claims the probe needs
	// (Listen for peek, Send for batch, Manage for management).
	ErrUnauthorized = errors.New("servicebus: unauthorized")

	// ErrProbePanic indicates the messaging client panicked during a probe.
	ErrProbePanic = errors.New("servicebus: probe panicked")

	// ErrNilHandle indicates a ClientProvider returned a nil handle without an error.
	ErrNilHandle = errors.New("servicebus: provider returned nil handle")
)
