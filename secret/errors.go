package secret

import "errors"

var (
	// ErrMissingEnv indicates a ${VAR} reference to an unset variable.
	ErrMissingEnv = errors.New("secret: missing required environment variables")

	// ErrProviderNotRegistered indicates a secretref names an unknown provider.
	ErrProviderNotRegistered = errors.New("secret: provider not registered")

	// ErrEmptySecret indicates a strict resolver received an empty value.
	ErrEmptySecret = errors.New("secret: provider returned empty value")

	// ErrSecretNotFound indicates the provider has no value for the ref.
	ErrSecretNotFound = errors.New("secret: not found")

	// ErrInvalidRegistration indicates a blank provider name or nil factory.
	ErrInvalidRegistration = errors.New("secret: invalid provider registration")
)
