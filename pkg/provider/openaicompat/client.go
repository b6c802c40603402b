package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rhuss/promptly/pkg/api"
	"github.com/rhuss/promptly/pkg/debug"
)

// DefaultTimeout bounds one request/response exchange.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a success body is read.
const maxResponseBytes = 8 << 20

// Client performs HTTP requests against an OpenAI-compatible Chat
// Completions endpoint. Its configuration is fixed at construction, so one
// Client may be shared by any number of concurrent calls.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
}

// ClientOption configures optional Client settings.
type ClientOption func(*Client)

// WithTransport sets the RoundTripper used for outbound requests.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

// NewClient creates a new Client that posts to endpoint (the full
// chat-completions URL) with the given bearer credential and model
// identifier. A zero timeout selects DefaultTimeout.
func NewClient(endpoint, apiKey, model string, timeout time.Duration, opts ...ClientOption) *Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Do performs one chat-completion round trip for prompt and returns the
// decoded response. Network failures and non-2xx statuses yield transport
// errors; an unparseable body yields a decode error.
func (c *Client) Do(ctx context.Context, prompt *api.Prompt) (*ChatCompletionResponse, error) {
	if prompt == nil {
		return nil, api.NewCallerContractError("prompt must not be nil")
	}

	body, err := json.Marshal(BuildRequest(c.model, prompt))
	if err != nil {
		return nil, api.NewCallerContractError(fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, api.NewConfigurationError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}

	debug.Trace("providers", "chat completion request body",
		zap.String("endpoint", c.endpoint),
		zap.ByteString("body", body))

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, MapNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, MapHTTPError(httpResp)
	}

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, MapNetworkError(err)
	}

	debug.Trace("providers", "chat completion response body",
		zap.Int("status", httpResp.StatusCode),
		zap.ByteString("body", data))

	// encoding/json matches object keys to field tags case-insensitively.
	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(data, &chatResp); err != nil {
		return nil, MapDecodeError(err)
	}

	return &chatResp, nil
}

// Complete performs one round trip and reduces the response to its answer
// text.
func (c *Client) Complete(ctx context.Context, prompt *api.Prompt) (string, error) {
	resp, err := c.Do(ctx, prompt)
	if err != nil {
		return "", err
	}
	return ExtractContent(resp), nil
}

// Close releases client resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
