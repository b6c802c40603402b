package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/rhuss/promptly/pkg/api"
	"github.com/rhuss/promptly/pkg/provider"
)

// Engine runs workflows against a provider. It is safe for concurrent use
// when the provider is.
type Engine struct {
	provider provider.Provider
	cfg      Config
	logger   *zap.Logger
}

// New creates a new Engine. A nil provider is a configuration error.
func New(p provider.Provider, cfg Config) (*Engine, error) {
	if p == nil {
		return nil, api.NewConfigurationError("engine: provider must not be nil")
	}
	return &Engine{
		provider: p,
		cfg:      cfg,
		logger:   cfg.logger(),
	}, nil
}

// Provider returns the provider the engine submits prompts to.
func (e *Engine) Provider() provider.Provider {
	return e.provider
}

// Config returns the configuration the engine was created with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Prompt submits a single prompt built from user and system text.
func (e *Engine) Prompt(ctx context.Context, user, system string) (string, error) {
	return e.provider.Complete(ctx, api.NewPrompt(user, system))
}
