package credential

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// Source selects how a namespace identity obtains tokens.
type Source string

const (
	// SourceDefault uses the azidentity default credential chain
	// (environment, workload identity, managed identity, Azure CLI).
	SourceDefault Source = "default"

	// SourceToken uses a StaticToken.
	SourceToken Source = "token"
)

// New returns the credential for source. token is only used by SourceToken;
// an empty source means SourceDefault.
func New(source Source, token string, opts StaticTokenOptions) (azcore.TokenCredential, error) {
	switch source {
	case SourceDefault, "":
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("credential: default chain: %w", err)
		}
		return cred, nil
	case SourceToken:
		return NewStaticToken(token, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
}
