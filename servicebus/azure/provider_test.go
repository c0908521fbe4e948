package azure

import (
	"context"
	"errors"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/jonwraymond/busprobe/servicebus"
)

const testConnectionString = "Endpoint=sb://contoso.servicebus.windows.net/;SharedAccessKeyName=root;SharedAccessKey=c2VjcmV0"

type staticCredential struct{}

func (staticCredential) GetToken(context.Context, policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: "token"}, nil
}

func TestProvider_NewClient(t *testing.T) {
	p := NewProvider(Options{})
	ctx := context.Background()

	tests := []struct {
		name    string
		id      servicebus.ConnectionIdentity
		wantErr bool
	}{
		{"connection string", servicebus.FromConnectionString(testConnectionString), false},
		{"namespace and credential", servicebus.FromCredential("contoso.servicebus.windows.net", staticCredential{}), false},
		{"malformed connection string", servicebus.FromConnectionString("not-a-connection-string"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := p.NewClient(ctx, tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewClient() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				if c == nil {
					t.Fatal("NewClient() returned nil client")
				}
				_ = c.Close(ctx)
			}

			a, err := p.NewAdminClient(ctx, tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewAdminClient() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && a == nil {
				t.Fatal("NewAdminClient() returned nil client")
			}
		})
	}
}

func TestProvider_CancelledContext(t *testing.T) {
	p := NewProvider(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	id := servicebus.FromConnectionString(testConnectionString)
	if _, err := p.NewClient(ctx, id); !errors.Is(err, context.Canceled) {
		t.Errorf("NewClient() error = %v, want %v", err, context.Canceled)
	}
	if _, err := p.NewAdminClient(ctx, id); !errors.Is(err, context.Canceled) {
		t.Errorf("NewAdminClient() error = %v, want %v", err, context.Canceled)
	}
}

func TestClassify_Passthrough(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) != nil")
	}
	plain := errors.New("amqp: link detached")
	if got := classify(plain); got != plain {
		t.Errorf("classify() = %v, want unchanged error", got)
	}
}
