package config

import (
	"errors"
	"fmt"

	"github.com/rhuss/promptly/pkg/api"
	"github.com/rhuss/promptly/pkg/provider"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure. Missing
// provider credentials or model identifiers are reported as configuration
// errors.
func (c *Config) Validate() error {
	var errs []error

	switch c.Provider.Type {
	case "openai":
		if c.Provider.APIKey == "" {
			errs = append(errs, api.NewConfigurationError("provider.api_key (or provider.api_key_file, PROMPTLY_API_KEY, OPENAI_API_KEY) is required when provider.type is \"openai\""))
		}
		if c.Provider.Model == "" {
			errs = append(errs, api.NewConfigurationError("provider.model is required when provider.type is \"openai\""))
		}
	case "stub":
		// valid
	default:
		errs = append(errs, fmt.Errorf("provider.type must be \"openai\" or \"stub\", got %q", c.Provider.Type))
	}

	if _, err := provider.ParseFailurePolicy(c.Provider.FailurePolicy); err != nil {
		errs = append(errs, fmt.Errorf("provider.failure_policy: %w", err))
	}

	if c.Stub.Delay < 0 {
		errs = append(errs, fmt.Errorf("stub.delay must be >= 0, got %s", c.Stub.Delay))
	}

	if c.Workflow.ChainIterations <= 0 {
		errs = append(errs, fmt.Errorf("workflow.chain_iterations must be > 0, got %d", c.Workflow.ChainIterations))
	}

	switch c.Logging.Format {
	case "console", "json", "":
		// valid
	default:
		errs = append(errs, fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format))
	}

	if c.Observability.Metrics.Enabled && c.Observability.Metrics.Addr == "" {
		errs = append(errs, fmt.Errorf("observability.metrics.addr is required when metrics are enabled"))
	}

	if r := c.Observability.Tracing.SampleRate; r < 0 || r > 1 {
		errs = append(errs, fmt.Errorf("observability.tracing.sample_rate must be between 0 and 1, got %g", r))
	}

	return errors.Join(errs...)
}
