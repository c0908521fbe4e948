package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/busprobe/config"
	"github.com/jonwraymond/busprobe/credential"
	"github.com/jonwraymond/busprobe/health"
	"github.com/jonwraymond/busprobe/observe"
	"github.com/jonwraymond/busprobe/secret"
	"github.com/jonwraymond/busprobe/servicebus"
)

var errUnhealthy = errors.New("one or more checks are unhealthy")

type runOptions struct {
	configPath string
	envFile    string
	once       bool
	provider   servicebus.ClientProvider
	stdout     io.Writer
	stderr     io.Writer
}

func run(ctx context.Context, opts runOptions) error {
	var envFiles []string
	if opts.envFile != "" {
		envFiles = append(envFiles, opts.envFile)
	}
	if err := config.LoadEnvFile(envFiles...); err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, opts.provider, opts.stderr)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout.Duration)
		defer cancel()
		if err := a.close(sctx); err != nil {
			a.logger.Warn(sctx, "shutdown incomplete", observe.Field{Key: "error", Value: err})
		}
	}()

	if opts.once {
		return a.runOnce(ctx, opts.stdout)
	}
	return a.serve(ctx)
}

// app owns everything built from one configuration.
type app struct {
	cfg      *config.Config
	obs      observe.Observer
	logger   observe.Logger
	registry *prometheus.Registry
	resolver *secret.Resolver
	prober   *servicebus.Prober
	agg      *health.Aggregator

	defaultOnce sync.Once
	defaultCred azcore.TokenCredential
	defaultErr  error
}

func newApp(ctx context.Context, cfg *config.Config, provider servicebus.ClientProvider, logWriter io.Writer) (_ *app, err error) {
	a := &app{cfg: cfg, registry: prometheus.NewRegistry()}
	defer func() {
		if err != nil {
			_ = a.close(context.WithoutCancel(ctx))
		}
	}()

	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a.obs, err = observe.NewObserver(ctx, cfg.Observe,
		observe.WithRegisterer(a.registry),
		observe.WithLogWriter(logWriter),
	)
	if err != nil {
		return nil, fmt.Errorf("observer: %w", err)
	}
	a.logger = a.obs.Logger().With(observe.Field{Key: "component", Value: "busprobe"})

	a.resolver, err = secret.NewResolverFromRegistry(secret.DefaultRegistry, true, cfg.Secrets)
	if err != nil {
		return nil, err
	}
	if err := cfg.Resolve(ctx, a.resolver); err != nil {
		return nil, err
	}

	mw, err := observe.MiddlewareFromObserver(a.obs)
	if err != nil {
		return nil, fmt.Errorf("observe middleware: %w", err)
	}
	a.prober, err = servicebus.NewProber(servicebus.ProberOptions{
		Provider:      provider,
		Timeout:       cfg.Probe.Timeout.Duration,
		BuildTimeout:  cfg.Probe.BuildTimeout.Duration,
		MaxConcurrent: cfg.Probe.MaxConcurrent,
		MaxWait:       cfg.Probe.MaxWait.Duration,
		Middleware:    mw,
	})
	if err != nil {
		return nil, err
	}

	a.agg = health.NewAggregator(health.AggregatorConfig{
		Timeout:       cfg.Server.CheckTimeout.Duration,
		MaxConcurrent: cfg.Server.MaxConcurrent,
	})
	for _, ch := range cfg.Checks {
		checker, err := a.newChecker(ch)
		if err != nil {
			return nil, err
		}
		a.agg.Register(ch.Registration(), checker)
	}

	a.logger.Info(ctx, "configuration loaded",
		observe.Field{Key: "checks", Value: len(cfg.Checks)},
		observe.Field{Key: "addr", Value: cfg.Server.Addr},
	)
	return a, nil
}

func (a *app) newChecker(ch config.CheckConfig) (*servicebus.Checker, error) {
	cred, err := a.credentialFor(ch)
	if err != nil {
		return nil, fmt.Errorf("check %q: %w", ch.Name, err)
	}
	if servicebus.Kind(ch.Kind) == servicebus.KindTopic {
		return servicebus.NewTopicChecker(ch.Name, a.prober, ch.TopicOptions(cred))
	}
	return servicebus.NewQueueChecker(ch.Name, a.prober, ch.QueueOptions(cred))
}

// credentialFor returns nil for connection string checks. The default chain
// is built once and shared by every check that uses it.
func (a *app) credentialFor(ch config.CheckConfig) (azcore.TokenCredential, error) {
	if ch.Namespace == "" {
		return nil, nil
	}
	if ch.Credential == credential.SourceToken {
		return credential.New(credential.SourceToken, ch.Token, ch.StaticTokenOptions())
	}
	a.defaultOnce.Do(func() {
		a.defaultCred, a.defaultErr = credential.New(credential.SourceDefault, "", credential.StaticTokenOptions{})
	})
	return a.defaultCred, a.defaultErr
}

func (a *app) handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	health.RegisterHandlers(r, a.agg, health.HandlerConfig{
		Timeout:   a.cfg.Server.CheckTimeout.Duration,
		ReadyTags: a.cfg.Server.ReadyTags,
	})
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{Registry: a.registry}))
	r.Get("/debug/prober", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(a.prober.Stats())
	})
	return r
}

func (a *app) serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      a.cfg.Server.CheckTimeout.Duration + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info(ctx, "http server listening", observe.Field{Key: "addr", Value: ln.Addr().String()})
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info(ctx, "http server shutting down")
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout.Duration)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *app) runOnce(ctx context.Context, w io.Writer) error {
	results := a.agg.CheckAll(ctx)
	for _, name := range a.agg.CheckerNames() {
		res := results[name]
		line := fmt.Sprintf("%-24s %-9s %s", name, res.Status, res.Message)
		if res.Error != nil {
			line += ": " + res.Error.Error()
		}
		fmt.Fprintln(w, line)
	}

	overall := a.agg.OverallStatus(results)
	fmt.Fprintf(w, "overall: %s\n", overall)
	if overall == health.StatusUnhealthy {
		return errUnhealthy
	}
	return nil
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.prober != nil {
		errs = append(errs, a.prober.Close(ctx))
	}
	if a.resolver != nil {
		errs = append(errs, a.resolver.Close())
	}
	if a.obs != nil {
		errs = append(errs, a.obs.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
