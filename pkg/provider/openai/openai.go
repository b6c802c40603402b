// Package openai provides the production provider adapter for the hosted
// OpenAI Chat Completions endpoint. It wraps an openaicompat.Client and
// adds the failure policy, logging, metrics, and tracing around each call.
package openai

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/rhuss/promptly/pkg/api"
	"github.com/rhuss/promptly/pkg/debug"
	"github.com/rhuss/promptly/pkg/observability"
	"github.com/rhuss/promptly/pkg/provider"
	"github.com/rhuss/promptly/pkg/provider/openaicompat"
)

// Endpoint is the chat-completions URL every request is posted to.
const Endpoint = "https://api.openai.com/v1/chat/completions"

// Timeout bounds each request/response exchange.
const Timeout = openaicompat.DefaultTimeout

const providerName = "openai"

// Provider implements provider.Provider for OpenAI.
type Provider struct {
	cfg    Config
	client *openaicompat.Client
	logger *zap.Logger
}

// Ensure Provider implements provider.Provider at compile time.
var _ provider.Provider = (*Provider)(nil)

// New creates a Provider. A missing API key or model is a configuration
// error. A nil logger discards log output.
func New(cfg Config, logger *zap.Logger) (*Provider, error) {
	return newWithEndpoint(cfg, Endpoint, logger)
}

func newWithEndpoint(cfg Config, endpoint string, logger *zap.Logger) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, api.NewConfigurationError("openai: api key is required")
	}
	if cfg.Model == "" {
		return nil, api.NewConfigurationError("openai: model is required")
	}
	if cfg.Policy == "" {
		cfg.Policy = provider.DefaultFailurePolicy
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		cfg: cfg,
		client: openaicompat.NewClient(endpoint, cfg.APIKey, cfg.Model, Timeout,
			openaicompat.WithTransport(observability.InstrumentTransport(nil))),
		logger: logger.With(zap.String("provider", providerName), zap.String("model", cfg.Model)),
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return providerName
}

// Policy returns the active failure policy.
func (p *Provider) Policy() provider.FailurePolicy {
	return p.cfg.Policy
}

// Complete posts prompt to the endpoint and returns the content of the
// first choice. An answer with no usable choice is "" and not an error.
// Transport and decode failures are handled per the configured policy,
// unless ctx carries one from provider.WithFailurePolicy.
// Cancellation of ctx is always returned to the caller.
func (p *Provider) Complete(ctx context.Context, prompt *api.Prompt) (string, error) {
	if prompt == nil {
		return "", api.NewCallerContractError("prompt must not be nil")
	}

	ctx, span := observability.StartLLMSpan(ctx, providerName, p.cfg.Model)
	defer span.End()

	debug.Log("providers", "chat completion request",
		zap.String("model", p.cfg.Model),
		zap.String("system", debug.Truncate(prompt.System(), 120)),
		zap.String("user", debug.Truncate(prompt.User(), 120)))

	start := time.Now()
	resp, err := p.client.Do(ctx, prompt)
	observability.ProviderLatency.WithLabelValues(providerName, p.cfg.Model).Observe(time.Since(start).Seconds())

	if err != nil {
		observability.RecordError(span, err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			observability.ProviderRequestsTotal.WithLabelValues(providerName, p.cfg.Model, "cancelled").Inc()
			return "", ctxErr
		}
		return p.fail(ctx, err)
	}

	p.recordUsage(span, resp.Usage)

	text := openaicompat.ExtractContent(resp)
	status := observability.StatusOK
	if text == "" {
		status = observability.StatusEmpty
		if refusal := openaicompat.Refusal(resp); refusal != "" {
			p.logger.Info("model refused prompt", zap.String("refusal", debug.Truncate(refusal, 200)))
		}
	}
	observability.ProviderRequestsTotal.WithLabelValues(providerName, p.cfg.Model, status).Inc()
	span.SetAttributes(
		attribute.String("llm.finish_reason", openaicompat.FinishReason(resp)),
		attribute.Int("llm.choices", len(resp.Choices)),
	)

	debug.Log("providers", "chat completion response",
		zap.String("id", resp.ID),
		zap.String("finish_reason", openaicompat.FinishReason(resp)),
		zap.Int("content_length", len(text)))
	debug.Raw("providers", text)

	return text, nil
}

// CompleteStructured asks for a JSON object shaped like schema by appending
// a format instruction to the system text, then behaves like Complete.
func (p *Provider) CompleteStructured(ctx context.Context, prompt *api.Prompt, schema provider.Schema) (string, error) {
	if prompt == nil {
		return "", api.NewCallerContractError("prompt must not be nil")
	}
	return p.Complete(ctx, structuredPrompt(prompt, schema))
}

// Close releases the HTTP client's idle connections.
func (p *Provider) Close() error {
	return p.client.Close()
}

func structuredPrompt(prompt *api.Prompt, schema provider.Schema) *api.Prompt {
	if len(schema) == 0 {
		return prompt
	}
	instruction := "Respond only with a JSON object of the form " + schema.Describe() + "."
	system := prompt.System()
	if system != "" {
		system += "\n\n"
	}
	return api.NewPrompt(prompt.User(), system+instruction)
}

// fail applies the failure policy to a transport or decode error. A policy
// carried by ctx takes precedence over the configured one.
func (p *Provider) fail(ctx context.Context, err error) (string, error) {
	kind := api.KindOf(err)
	if kind == "" {
		kind = api.ErrorKindTransport
	}
	observability.ProviderRequestsTotal.WithLabelValues(providerName, p.cfg.Model, string(kind)).Inc()

	if provider.FailurePolicyFrom(ctx, p.cfg.Policy) == provider.PolicyStrict {
		return "", err
	}

	p.logger.Warn("provider call degraded to empty answer",
		zap.String("kind", string(kind)),
		zap.Error(err))
	observability.ProviderDegradedTotal.WithLabelValues(providerName, string(kind)).Inc()
	return "", nil
}

func (p *Provider) recordUsage(span trace.Span, usage *openaicompat.ChatUsage) {
	if usage == nil {
		return
	}

	observability.RecordUsage(span, usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens)

	p.addTokens("input", usage.PromptTokens)
	p.addTokens("output", usage.CompletionTokens)
	if d := usage.PromptTokensDetails; d != nil {
		p.addTokens("cached", d.CachedTokens)
	}
	if d := usage.CompletionTokensDetails; d != nil {
		p.addTokens("reasoning", d.ReasoningTokens)
	}
}

// addTokens ignores non-positive counts; a counter cannot decrease.
func (p *Provider) addTokens(direction string, n int) {
	if n > 0 {
		observability.ProviderTokensTotal.WithLabelValues(providerName, p.cfg.Model, direction).Add(float64(n))
	}
}
