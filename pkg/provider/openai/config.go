package openai

import (
	"github.com/rhuss/promptly/pkg/provider"
)

// Config holds configuration for the OpenAI provider adapter. The endpoint
// and request timeout are fixed and not configurable.
type Config struct {
	// APIKey is the bearer credential (required).
	APIKey string

	// Model is the model identifier (required), e.g. "gpt-4o-mini".
	Model string

	// Policy selects how transport and decode failures are reported.
	// Defaults to provider.DefaultFailurePolicy.
	Policy provider.FailurePolicy
}
