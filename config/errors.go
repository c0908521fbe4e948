package config

import "errors"

var (
	// ErrNoChecks indicates the configuration declares no checks.
	ErrNoChecks = errors.New("config: at least one check is required")

	// ErrDuplicateCheck indicates two checks share a name.
	ErrDuplicateCheck = errors.New("config: duplicate check name")

	// ErrInvalidKind indicates a check kind other than queue or topic.
	ErrInvalidKind = errors.New("config: kind must be queue or topic")

	// ErrInvalidCheck indicates a malformed check entry.
	ErrInvalidCheck = errors.New("config: invalid check")

	// ErrInvalidFailureStatus indicates a failure_status other than unhealthy or degraded.
	ErrInvalidFailureStatus = errors.New("config: failure_status must be unhealthy or degraded")
)
