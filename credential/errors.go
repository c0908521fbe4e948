package credential

import "errors"

var (
	// ErrInvalidToken indicates the token is not a parseable JWT or lacks an exp claim.
	ErrInvalidToken = errors.New("credential: invalid token")

	// ErrTokenExpired indicates the token's exp claim has passed.
	ErrTokenExpired = errors.New("credential: token expired")

	// ErrAudienceMismatch indicates the token was issued for a different audience.
	ErrAudienceMismatch = errors.New("credential: audience mismatch")

	// ErrUnknownSource indicates an unsupported credential source name.
	ErrUnknownSource = errors.New("credential: unknown source")
)
