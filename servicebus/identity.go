package servicebus

import (
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	"github.com/jonwraymond/busprobe/cache"
)

// ConnectionKey identifies one namespace connection. It never contains
// secret material and is safe to log.
type ConnectionKey string

// ConnectionIdentity names the namespace to connect to, either through a
// connection string or through a namespace and token credential. Exactly one
// form is populated and the value is immutable.
type ConnectionIdentity struct {
	connectionString string
	namespace        string
	credential       azcore.TokenCredential
}

// FromConnectionString returns an identity backed by a connection string.
func FromConnectionString(connectionString string) ConnectionIdentity {
	return ConnectionIdentity{connectionString: strings.TrimSpace(connectionString)}
}

// FromCredential returns an identity backed by a fully qualified namespace
// (for example contoso.servicebus.windows.net) and a token credential.
func FromCredential(namespace string, credential azcore.TokenCredential) ConnectionIdentity {
	return ConnectionIdentity{
		namespace:  normalizeNamespace(namespace),
		credential: credential,
	}
}

// ConnectionString returns the connection string, or "" for credential identities.
func (id ConnectionIdentity) ConnectionString() string { return id.connectionString }

// Credential returns the token credential, or nil for connection string identities.
func (id ConnectionIdentity) Credential() azcore.TokenCredential { return id.credential }

// Namespace returns the namespace host. For connection string identities it is
// taken from the Endpoint entry; it is "" when the string has none.
func (id ConnectionIdentity) Namespace() string {
	if id.connectionString == "" {
		return id.namespace
	}
	for _, part := range strings.Split(id.connectionString, ";") {
		k, v, ok := strings.Cut(part, "=")
		if ok && strings.EqualFold(strings.TrimSpace(k), "Endpoint") {
			return normalizeNamespace(v)
		}
	}
	return ""
}

// UsesConnectionString reports which constructor the identity selects.
func (id ConnectionIdentity) UsesConnectionString() bool { return id.connectionString != "" }

// Validate checks that exactly one identity form is populated.
func (id ConnectionIdentity) Validate() error {
	switch {
	case id.connectionString != "" && id.namespace != "":
		return ErrAmbiguousIdentity
	case id.connectionString != "":
		return nil
	case id.namespace == "":
		return ErrNoIdentity
	case id.credential == nil:
		return ErrNilCredential
	}
	return nil
}

// Key derives the ConnectionKey. Connection strings are fingerprinted so the
// shared access key never reaches cache keys, logs or metrics. Credentials are
// not comparable, so namespace identities key on the namespace alone.
func (id ConnectionIdentity) Key() ConnectionKey {
	if id.connectionString != "" {
		return ConnectionKey("cs:" + cache.Fingerprint(id.connectionString))
	}
	return ConnectionKey("ns:" + id.namespace)
}

func normalizeNamespace(ns string) string {
	ns = strings.ToLower(strings.TrimSpace(ns))
	for _, scheme := range []string{"sb://", "https://", "amqps://"} {
		ns = strings.TrimPrefix(ns, scheme)
	}
	return strings.TrimSuffix(ns, "/")
}
