package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/desertthunder/mixradio/internal/api"
	"github.com/desertthunder/mixradio/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	runner := NewRunner(RunnerOpts{Logger: logger, ConfigPath: "config.toml"})

	if err := runner.app().Run(ctx, os.Args); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			os.Exit(130)
		case errors.Is(err, shared.ErrNotAuthenticated), api.IsAuthError(err):
			logger.Error("authentication required, run 'mixradio auth login'", "error", err)
		case errors.Is(err, shared.ErrMissingCredentials):
			logger.Error("missing credentials, run 'mixradio setup config' and set client_id", "error", err)
		case errors.Is(err, api.ErrAPINotAvailable):
			logger.Error("the service is not available in this territory", "error", err)
		default:
			logger.Fatalf("application error: %v", err)
		}
		os.Exit(1)
	}
}
