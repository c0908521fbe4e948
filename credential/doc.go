// Package credential supplies azcore.TokenCredential values for namespace
// identities: the azidentity default chain, or a static bearer token issued
// out of band (for example by a sidecar) and read from configuration.
package credential
