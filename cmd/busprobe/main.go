// Command busprobe probes Azure Service Bus queues and topics and serves the
// results as health endpoints.
//
// Usage:
//
//	busprobe -config busprobe.yaml [-env-file .env] [-once]
//
// With -once every check runs a single time, results are printed, and the
// exit status is non-zero when the overall status is unhealthy.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonwraymond/busprobe/servicebus/azure"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		configPath string
		envFile    string
		once       bool
	)
	flag.StringVar(&configPath, "config", "busprobe.yaml", "Path to the YAML configuration file")
	flag.StringVar(&envFile, "env-file", "", "Optional .env file loaded before the configuration is resolved")
	flag.BoolVar(&once, "once", false, "Run every check once, print the results and exit")
	flag.Parse()

	if err := run(ctx, runOptions{
		configPath: configPath,
		envFile:    envFile,
		once:       once,
		provider:   azure.NewProvider(azure.Options{}),
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "busprobe:", err)
		os.Exit(1)
	}
}
