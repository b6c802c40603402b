package provider

import (
	"context"

	"github.com/rhuss/promptly/pkg/api"
)

// Provider abstracts a chat-completion backend.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Provider interface {
	// Name returns the provider identifier (e.g., "openai", "stub").
	Name() string

	// Complete submits one prompt and returns the reduced textual answer.
	// A nil prompt yields a caller contract error. An empty answer is not
	// an error.
	Complete(ctx context.Context, prompt *api.Prompt) (string, error)

	// CompleteStructured submits one prompt whose answer is expected to be
	// a JSON object matching schema, and returns the raw answer text.
	// Backends that cannot constrain their output simply return the text
	// they produced; decoding is left to the caller.
	CompleteStructured(ctx context.Context, prompt *api.Prompt, schema Schema) (string, error)

	// Close releases provider resources (HTTP clients, connections).
	Close() error
}
