package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rhuss/promptly/pkg/api"
	"github.com/rhuss/promptly/pkg/config"
	"github.com/rhuss/promptly/pkg/debug"
	"github.com/rhuss/promptly/pkg/engine"
	"github.com/rhuss/promptly/pkg/observability"
	"github.com/rhuss/promptly/pkg/provider"
	"github.com/rhuss/promptly/pkg/provider/openai"
	"github.com/rhuss/promptly/pkg/provider/stub"
)

const shutdownTimeout = 5 * time.Second

// app bundles everything a subcommand needs for one invocation.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	provider provider.Provider
	engine   *engine.Engine

	closers []func(context.Context) error
}

// withApp builds the app from configuration, runs fn, and releases every
// resource afterwards.
func withApp(cmd *cobra.Command, configPath string, fn func(context.Context, *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.close()

	return fn(ctx, a)
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := debug.Init(cfg.Logging.Debug, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}

	if err := a.startObservability(ctx); err != nil {
		a.close()
		return nil, err
	}

	a.provider, err = newProvider(cfg, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("creating provider: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return a.provider.Close() })

	a.engine, err = engine.New(a.provider, engine.Config{
		Logger:       logger,
		StrictFanOut: cfg.Workflow.StrictFanOut,
	})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("creating engine: %w", err)
	}

	logger.Debug("promptly ready",
		zap.String("provider", a.provider.Name()),
		zap.String("model", cfg.Provider.Model),
		zap.String("failure_policy", cfg.Provider.FailurePolicy),
		zap.Bool("strict_fan_out", cfg.Workflow.StrictFanOut),
		zap.Strings("debug_categories", debug.Categories()))
	return a, nil
}

func (a *app) startObservability(ctx context.Context) error {
	tp, err := observability.InitTracing(ctx, &observability.TracingConfig{
		ServiceName:    a.cfg.Observability.Tracing.ServiceName,
		ServiceVersion: version,
		OTLPEndpoint:   a.cfg.Observability.Tracing.OTLPEndpoint,
		SampleRate:     a.cfg.Observability.Tracing.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	a.closers = append(a.closers, tp.Shutdown)

	if !a.cfg.Observability.Metrics.Enabled {
		return nil
	}

	srv := observability.NewMetricsServer(a.cfg.Observability.Metrics.Addr, a.logger)
	errCh, err := srv.Start()
	if err != nil {
		return fmt.Errorf("starting metrics server: %w", err)
	}
	go func() {
		if err, ok := <-errCh; ok {
			a.logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	a.closers = append(a.closers, srv.Shutdown)
	return nil
}

// close runs the registered closers in reverse order.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("shutdown incomplete", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// newProvider creates the provider selected by cfg.Provider.Type.
func newProvider(cfg *config.Config, logger *zap.Logger) (provider.Provider, error) {
	switch cfg.Provider.Type {
	case "stub":
		return stub.New(stub.WithDelay(cfg.Stub.Delay), stub.WithLogger(logger)), nil

	case "openai":
		policy, err := provider.ParseFailurePolicy(cfg.Provider.FailurePolicy)
		if err != nil {
			return nil, api.NewConfigurationError(err.Error())
		}
		return openai.New(openai.Config{
			APIKey: cfg.Provider.APIKey,
			Model:  cfg.Provider.Model,
			Policy: policy,
		}, logger)

	default:
		return nil, api.NewConfigurationError(fmt.Sprintf("unknown provider type %q", cfg.Provider.Type))
	}
}
