package credential

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/golang-jwt/jwt/v5"
)

// ServiceBusAudience is the audience of tokens accepted by Service Bus.
const ServiceBusAudience = "https://servicebus.azure.net"

// StaticTokenOptions configures a StaticToken.
type StaticTokenOptions struct {
	// Audience, when set, must appear in the token's aud claim.
	// Default: "" (not checked)
	Audience string

	// Leeway treats the token as expired this long before exp.
	// Default: 0
	Leeway time.Duration

	// Now overrides the clock.
	Now func() time.Time
}

// StaticToken is a TokenCredential that always returns the same pre-issued
// JWT. The signature is not verified: the token is opaque to this process
// and only its exp and aud claims are read. There is no refresh; once the
// token expires every GetToken call fails with ErrTokenExpired.
type StaticToken struct {
	raw       string
	expiresOn time.Time
	leeway    time.Duration
	now       func() time.Time
}

var _ azcore.TokenCredential = (*StaticToken)(nil)

// NewStaticToken parses raw and returns a StaticToken. A surrounding
// "Bearer " prefix is accepted.
func NewStaticToken(raw string, opts StaticTokenOptions) (*StaticToken, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "Bearer "))
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidToken)
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp claim", ErrInvalidToken)
	}
	if opts.Audience != "" && !audienceMatches(claims.Audience, opts.Audience) {
		return nil, fmt.Errorf("%w: want %s, got %v", ErrAudienceMismatch, opts.Audience, []string(claims.Audience))
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	t := &StaticToken{
		raw:       raw,
		expiresOn: claims.ExpiresAt.Time,
		leeway:    opts.Leeway,
		now:       now,
	}
	if t.Expired() {
		return nil, fmt.Errorf("%w at %s", ErrTokenExpired, t.expiresOn.UTC().Format(time.RFC3339))
	}
	return t, nil
}

// ExpiresOn returns the token's exp claim.
func (t *StaticToken) ExpiresOn() time.Time { return t.expiresOn }

// Expired reports whether the token is past exp minus leeway.
func (t *StaticToken) Expired() bool {
	return !t.now().Before(t.expiresOn.Add(-t.leeway))
}

// GetToken returns the static token. Requested scopes are ignored.
func (t *StaticToken) GetToken(ctx context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	if err := ctx.Err(); err != nil {
		return azcore.AccessToken{}, err
	}
	if t.Expired() {
		return azcore.AccessToken{}, fmt.Errorf("%w at %s", ErrTokenExpired, t.expiresOn.UTC().Format(time.RFC3339))
	}
	return azcore.AccessToken{Token: t.raw, ExpiresOn: t.expiresOn}, nil
}

// String never reveals the token.
func (t *StaticToken) String() string {
	return "StaticToken(expires " + t.expiresOn.UTC().Format(time.RFC3339) + ")"
}

func audienceMatches(aud jwt.ClaimStrings, want string) bool {
	want = strings.TrimSuffix(want, "/")
	return slices.ContainsFunc(aud, func(a string) bool {
		return strings.TrimSuffix(a, "/") == want
	})
}
