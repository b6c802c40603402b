// Package config provides unified configuration for promptly.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (PROMPTLY_ prefix, plus OPENAI_API_KEY)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for promptly.
type Config struct {
	Provider      ProviderConfig      `yaml:"provider"`
	Stub          StubConfig          `yaml:"stub"`
	Workflow      WorkflowConfig      `yaml:"workflow"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ProviderConfig selects and configures the model provider.
type ProviderConfig struct {
	Type          string `yaml:"type"`           // "openai" or "stub", default: "openai"
	APIKey        string `yaml:"api_key"`        // required for openai
	APIKeyFile    string `yaml:"api_key_file"`   // _file variant for api_key
	Model         string `yaml:"model"`          // default: "gpt-4o-mini"
	FailurePolicy string `yaml:"failure_policy"` // "degrade" or "strict", default: "degrade"
}

// StubConfig holds settings for the in-process stub provider.
type StubConfig struct {
	Delay time.Duration `yaml:"delay"` // default: 500ms
}

// WorkflowConfig holds defaults for the CLI workflows.
type WorkflowConfig struct {
	Topic           string `yaml:"topic"`            // default: "disturbed band"
	ChainIterations int    `yaml:"chain_iterations"` // default: 3
	StrictFanOut    bool   `yaml:"strict_fan_out"`   // abort the plan run on a failed step, default: false
}

// LoggingConfig holds process logger settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // default: "info"
	Format string `yaml:"format"` // "console" or "json", default: "console"
	Debug  string `yaml:"debug"`  // comma-separated debug categories
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: false
	Addr    string `yaml:"addr"`    // default: ":9090"
}

// TracingConfig holds OpenTelemetry export settings.
type TracingConfig struct {
	OTLPEndpoint string  `yaml:"otlp_endpoint"` // empty disables export
	ServiceName  string  `yaml:"service_name"`  // default: "promptly"
	SampleRate   float64 `yaml:"sample_rate"`   // default: 1.0
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Provider: ProviderConfig{
			Type:          "openai",
			Model:         "gpt-4o-mini",
			FailurePolicy: "degrade",
		},
		Stub: StubConfig{
			Delay: 500 * time.Millisecond,
		},
		Workflow: WorkflowConfig{
			Topic:           "disturbed band",
			ChainIterations: 3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Addr: ":9090",
			},
			Tracing: TracingConfig{
				ServiceName: "promptly",
				SampleRate:  1.0,
			},
		},
	}
}
