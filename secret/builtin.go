package secret

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvProvider resolves keys as environment variable names:
//
//	secretref:env:SERVICEBUS_CONNECTION_STRING
type EnvProvider struct{}

func (EnvProvider) Name() string { return "env" }

func (EnvProvider) Resolve(_ context.Context, key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", fmt.Errorf("%w: env %s", ErrSecretNotFound, key)
	}
	return v, nil
}

func (EnvProvider) Close() error { return nil }

// FileProvider resolves keys as file paths, for secrets mounted by an
// orchestrator. Relative keys are joined to Dir. Trailing newlines are trimmed.
//
//	secretref:file:/var/run/secrets/servicebus/orders
type FileProvider struct {
	Dir string
}

func (p FileProvider) Name() string { return "file" }

func (p FileProvider) Resolve(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := key
	if !filepath.IsAbs(path) && p.Dir != "" {
		path = filepath.Join(p.Dir, path)
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: file %s", ErrSecretNotFound, path)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

func (p FileProvider) Close() error { return nil }

// RegisterBuiltins registers the env and file providers on reg. The file
// factory reads an optional "dir" string from its config.
func RegisterBuiltins(reg *Registry) error {
	if err := reg.Register("env", func(map[string]any) (Provider, error) {
		return EnvProvider{}, nil
	}); err != nil {
		return err
	}
	return reg.Register("file", func(cfg map[string]any) (Provider, error) {
		dir, _ := cfg["dir"].(string)
		return FileProvider{Dir: dir}, nil
	})
}

func init() {
	if err := RegisterBuiltins(DefaultRegistry); err != nil {
		panic(err)
	}
}
