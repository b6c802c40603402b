// Command promptly runs chat-completion workflows against the configured
// provider.
//
// Configuration is read from promptly.yaml (or --config) and PROMPTLY_*
// environment variables, see pkg/config. Subcommands:
//
//	plan [topic]         plan one topic, fan out the steps, print the aggregate
//	ask <text>           submit a single prompt
//	chain <text>         feed each answer back as the next prompt
//	probe                time a fixed prompt against stub and the configured provider
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "promptly:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}
