// Package stub provides a deterministic in-process provider for tests and
// offline demos. It waits for a fixed delay and then echoes the prompt, or
// synthesizes a placeholder object for structured calls.
package stub

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rhuss/promptly/pkg/api"
	"github.com/rhuss/promptly/pkg/debug"
	"github.com/rhuss/promptly/pkg/observability"
	"github.com/rhuss/promptly/pkg/provider"
)

const (
	// DefaultDelay is the simulated latency of every call.
	DefaultDelay = 500 * time.Millisecond

	// ResponsePrefix precedes the echoed user text in every plain answer.
	ResponsePrefix = "This is a simulated response to: "

	providerName = "stub"
	modelName    = "stub"
)

// Provider implements provider.Provider without any network I/O.
type Provider struct {
	delay  time.Duration
	logger *zap.Logger
}

// Ensure Provider implements provider.Provider at compile time.
var _ provider.Provider = (*Provider)(nil)

// Option configures a stub Provider.
type Option func(*Provider)

// WithDelay sets the simulated latency. Zero disables the delay.
func WithDelay(d time.Duration) Option {
	return func(p *Provider) {
		p.delay = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a stub Provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		delay:  DefaultDelay,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return providerName
}

// Complete waits for the configured delay and returns ResponsePrefix
// followed by the prompt's user text.
func (p *Provider) Complete(ctx context.Context, prompt *api.Prompt) (string, error) {
	if prompt == nil {
		return "", api.NewCallerContractError("prompt must not be nil")
	}

	if err := p.wait(ctx); err != nil {
		return "", err
	}

	debug.Log("providers", "stub completion", zap.String("user", debug.Truncate(prompt.User(), 80)))
	return ResponsePrefix + prompt.User(), nil
}

// CompleteStructured waits for the configured delay and returns a JSON
// object in which every string field holds "Sample <Name>" and every
// integer field holds 42.
func (p *Provider) CompleteStructured(ctx context.Context, prompt *api.Prompt, schema provider.Schema) (string, error) {
	if prompt == nil {
		return "", api.NewCallerContractError("prompt must not be nil")
	}

	if err := p.wait(ctx); err != nil {
		return "", err
	}

	text, err := schema.PlaceholderJSON()
	if err != nil {
		return "", api.NewDecodeError("failed to encode placeholder object", err)
	}
	return text, nil
}

// Close is a no-op.
func (p *Provider) Close() error {
	return nil
}

func (p *Provider) wait(ctx context.Context) error {
	start := time.Now()
	defer func() {
		observability.ProviderLatency.WithLabelValues(providerName, modelName).Observe(time.Since(start).Seconds())
	}()

	if p.delay <= 0 {
		observability.ProviderRequestsTotal.WithLabelValues(providerName, modelName, observability.StatusOK).Inc()
		return nil
	}

	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		observability.ProviderRequestsTotal.WithLabelValues(providerName, modelName, observability.StatusOK).Inc()
		return nil
	case <-ctx.Done():
		p.logger.Debug("stub call cancelled", zap.Error(ctx.Err()))
		observability.ProviderRequestsTotal.WithLabelValues(providerName, modelName, "cancelled").Inc()
		return ctx.Err()
	}
}
