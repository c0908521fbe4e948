package secret

import (
	"context"
	"io"
	"strings"
	"unicode"
)

// Provider looks up secret values. Name is the provider segment of a
// reference, as in secretref:<name>:<key>.
//
// Resolve is called concurrently. Implementations never log the values they
// return.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, key string) (string, error)
	io.Closer
}

const refPrefix = "secretref:"

// Ref is a parsed secret reference.
type Ref struct {
	Provider string
	Key      string
}

// ParseRef parses a whole value of the form secretref:<provider>:<key>.
// The key may contain colons but no whitespace.
func ParseRef(value string) (Ref, bool) {
	rest, ok := strings.CutPrefix(value, refPrefix)
	if !ok {
		return Ref{}, false
	}
	provider, key, ok := strings.Cut(rest, ":")
	if !ok || provider == "" || key == "" || strings.ContainsFunc(rest, unicode.IsSpace) {
		return Ref{}, false
	}
	return Ref{Provider: provider, Key: key}, true
}

// String returns the reference in secretref form. It never contains the
// secret itself.
func (r Ref) String() string {
	return refPrefix + r.Provider + ":" + r.Key
}
