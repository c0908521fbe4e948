package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/busprobe/credential"
	"github.com/jonwraymond/busprobe/health"
	"github.com/jonwraymond/busprobe/observe"
	"github.com/jonwraymond/busprobe/secret"
	"github.com/jonwraymond/busprobe/servicebus"
)

// Config is the root of the busprobe configuration file.
type Config struct {
	Server  ServerConfig              `yaml:"server"`
	Observe observe.Config            `yaml:"observe"`
	Probe   ProbeConfig               `yaml:"probe"`
	Secrets map[string]map[string]any `yaml:"secrets"` // provider name -> provider config
	Checks  []CheckConfig             `yaml:"checks"`
}

// ServerConfig configures the HTTP host.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	CheckTimeout    Duration `yaml:"check_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	MaxConcurrent   int      `yaml:"max_concurrent"` // checks run at once per request
	ReadyTags       []string `yaml:"ready_tags"`
}

// ProbeConfig configures the shared prober.
type ProbeConfig struct {
	Timeout       Duration `yaml:"timeout"`
	BuildTimeout  Duration `yaml:"build_timeout"`
	MaxConcurrent int      `yaml:"max_concurrent"`
	MaxWait       Duration `yaml:"max_wait"`
}

// CheckConfig declares one queue or topic check. Exactly one of
// ConnectionString or Namespace is set.
type CheckConfig struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"` // queue|topic
	Resource string `yaml:"resource"`

	ConnectionString string            `yaml:"connection_string"`
	Namespace        string            `yaml:"namespace"`
	Credential       credential.Source `yaml:"credential"` // default|token
	Token            string            `yaml:"token"`
	Audience         string            `yaml:"audience"`

	UsePeekMode               bool  `yaml:"use_peek_mode"`
	UseCreateMessageBatchMode *bool `yaml:"use_create_message_batch_mode"` // default true

	FailureStatus string   `yaml:"failure_status"` // unhealthy|degraded
	Timeout       Duration `yaml:"timeout"`
	Tags          []string `yaml:"tags"`
}

// Load reads and decodes the configuration file at path, then applies defaults.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a YAML document and applies defaults.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadEnvFile loads KEY=value pairs from paths into the process environment
// without overriding variables that are already set. With no paths it loads
// ./.env when present.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.CheckTimeout.Duration <= 0 {
		c.Server.CheckTimeout.Duration = 10 * time.Second
	}
	if c.Server.ShutdownTimeout.Duration <= 0 {
		c.Server.ShutdownTimeout.Duration = 5 * time.Second
	}
	if c.Observe.ServiceName == "" {
		c.Observe.ServiceName = "busprobe"
	}
	if c.Probe.BuildTimeout.Duration <= 0 {
		c.Probe.BuildTimeout.Duration = time.Minute
	}
	if c.Secrets == nil {
		c.Secrets = map[string]map[string]any{"env": nil, "file": nil}
	}
	for i := range c.Checks {
		ch := &c.Checks[i]
		if ch.Name == "" {
			ch.Name = ch.Kind + ":" + ch.Resource
		}
		if ch.UseCreateMessageBatchMode == nil {
			batch := true
			ch.UseCreateMessageBatchMode = &batch
		}
		if ch.Namespace != "" && ch.Credential == "" {
			ch.Credential = credential.SourceDefault
		}
	}
}

// Validate checks the configuration. It does not resolve secrets.
func (c *Config) Validate() error {
	if err := c.Observe.Validate(); err != nil {
		return fmt.Errorf("observe: %w", err)
	}
	if len(c.Checks) == 0 {
		return ErrNoChecks
	}

	seen := make(map[string]struct{}, len(c.Checks))
	for i, ch := range c.Checks {
		if err := ch.Validate(); err != nil {
			return fmt.Errorf("checks[%d]: %w", i, err)
		}
		if _, dup := seen[ch.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateCheck, ch.Name)
		}
		seen[ch.Name] = struct{}{}
	}
	return nil
}

// Validate checks one check entry.
func (ch CheckConfig) Validate() error {
	switch servicebus.Kind(ch.Kind) {
	case servicebus.KindQueue:
	case servicebus.KindTopic:
		if ch.UsePeekMode {
			return fmt.Errorf("%w: %s: use_peek_mode is not supported for topics", ErrInvalidCheck, ch.Name)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKind, ch.Kind)
	}
	if ch.Resource == "" {
		return fmt.Errorf("%w: %s: resource is required", ErrInvalidCheck, ch.Name)
	}

	switch {
	case ch.ConnectionString != "" && ch.Namespace != "":
		return fmt.Errorf("%w: %s: connection_string and namespace are mutually exclusive", ErrInvalidCheck, ch.Name)
	case ch.ConnectionString == "" && ch.Namespace == "":
		return fmt.Errorf("%w: %s: connection_string or namespace is required", ErrInvalidCheck, ch.Name)
	}

	if ch.Namespace != "" {
		switch ch.Credential {
		case credential.SourceDefault:
		case credential.SourceToken:
			if ch.Token == "" {
				return fmt.Errorf("%w: %s: token is required with credential: token", ErrInvalidCheck, ch.Name)
			}
		default:
			return fmt.Errorf("%w: %s: %w: %q", ErrInvalidCheck, ch.Name, credential.ErrUnknownSource, ch.Credential)
		}
	}

	if _, err := ch.HealthFailureStatus(); err != nil {
		return err
	}
	return nil
}

// Resolve replaces environment references and secretrefs in every check's
// connection string, namespace and token.
func (c *Config) Resolve(ctx context.Context, r *secret.Resolver) error {
	for i := range c.Checks {
		ch := &c.Checks[i]
		if err := r.ResolveAll(ctx, &ch.ConnectionString, &ch.Namespace, &ch.Token); err != nil {
			return fmt.Errorf("check %q: %w", ch.Name, err)
		}
	}
	return nil
}

// HealthFailureStatus maps failure_status to a health.Status. Only unhealthy
// and degraded are accepted; empty means unhealthy.
func (ch CheckConfig) HealthFailureStatus() (health.Status, error) {
	if ch.FailureStatus == "" {
		return health.StatusUnhealthy, nil
	}
	status, err := health.ParseStatus(ch.FailureStatus)
	if err != nil || status == health.StatusHealthy {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFailureStatus, ch.FailureStatus)
	}
	return status, nil
}

// Registration returns the aggregator registration for the check.
func (ch CheckConfig) Registration() health.Registration {
	status, _ := ch.HealthFailureStatus()
	return health.Registration{
		Name:          ch.Name,
		FailureStatus: status,
		Timeout:       ch.Timeout.Duration,
		Tags:          ch.Tags,
	}
}

func (ch CheckConfig) batchMode() bool {
	return ch.UseCreateMessageBatchMode == nil || *ch.UseCreateMessageBatchMode
}

// QueueOptions converts a queue check. cred is used only for namespace checks.
func (ch CheckConfig) QueueOptions(cred azcore.TokenCredential) servicebus.QueueOptions {
	opts := servicebus.QueueOptions{
		QueueName:                 ch.Resource,
		ConnectionString:          ch.ConnectionString,
		UsePeekMode:               ch.UsePeekMode,
		UseCreateMessageBatchMode: ch.batchMode(),
	}
	if ch.Namespace != "" {
		opts.FullyQualifiedNamespace = ch.Namespace
		opts.Credential = cred
	}
	return opts
}

// TopicOptions converts a topic check. cred is used only for namespace checks.
func (ch CheckConfig) TopicOptions(cred azcore.TokenCredential) servicebus.TopicOptions {
	opts := servicebus.TopicOptions{
		TopicName:                 ch.Resource,
		ConnectionString:          ch.ConnectionString,
		UseCreateMessageBatchMode: ch.batchMode(),
	}
	if ch.Namespace != "" {
		opts.FullyQualifiedNamespace = ch.Namespace
		opts.Credential = cred
	}
	return opts
}

// StaticTokenOptions returns the options for a token credential.
func (ch CheckConfig) StaticTokenOptions() credential.StaticTokenOptions {
	return credential.StaticTokenOptions{Audience: ch.Audience}
}
