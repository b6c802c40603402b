package config

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rhuss/promptly/pkg/api"
)

// clearEnv blanks every variable Load consults so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PROMPTLY_CONFIG", "PROMPTLY_PROVIDER", "PROMPTLY_API_KEY", "OPENAI_API_KEY",
		"PROMPTLY_MODEL", "PROMPTLY_FAILURE_POLICY", "PROMPTLY_STUB_DELAY", "PROMPTLY_TOPIC",
		"PROMPTLY_CHAIN_ITERATIONS", "PROMPTLY_STRICT_FAN_OUT", "PROMPTLY_LOG_LEVEL", "PROMPTLY_LOG_FORMAT", "PROMPTLY_DEBUG",
		"PROMPTLY_METRICS_ADDR", "PROMPTLY_OTLP_ENDPOINT", "PROMPTLY_TRACE_SAMPLE_RATE",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Provider.Type != "openai" {
		t.Errorf("default provider.type = %q, want \"openai\"", cfg.Provider.Type)
	}
	if cfg.Provider.Model != "gpt-4o-mini" {
		t.Errorf("default provider.model = %q, want \"gpt-4o-mini\"", cfg.Provider.Model)
	}
	if cfg.Provider.FailurePolicy != "degrade" {
		t.Errorf("default provider.failure_policy = %q, want \"degrade\"", cfg.Provider.FailurePolicy)
	}
	if cfg.Stub.Delay != 500*time.Millisecond {
		t.Errorf("default stub.delay = %v, want 500ms", cfg.Stub.Delay)
	}
	if cfg.Workflow.Topic != "disturbed band" {
		t.Errorf("default workflow.topic = %q", cfg.Workflow.Topic)
	}
	if cfg.Workflow.ChainIterations != 3 {
		t.Errorf("default workflow.chain_iterations = %d, want 3", cfg.Workflow.ChainIterations)
	}
	if cfg.Observability.Metrics.Enabled {
		t.Error("default observability.metrics.enabled = true, want false")
	}
	if cfg.Observability.Tracing.SampleRate != 1.0 {
		t.Errorf("default observability.tracing.sample_rate = %v, want 1.0", cfg.Observability.Tracing.SampleRate)
	}
}

func TestLoadFromYAML(t *testing.T) {
	clearEnv(t)
	yamlContent := `
provider:
  type: openai
  api_key: sk-test-key
  model: gpt-4o
  failure_policy: strict
stub:
  delay: 50ms
workflow:
  topic: distributed systems
  chain_iterations: 5
logging:
  level: debug
  format: json
  debug: providers,engine
observability:
  metrics:
    enabled: true
    addr: 127.0.0.1:9100
  tracing:
    otlp_endpoint: localhost:4317
    service_name: promptly-test
    sample_rate: 0.5
`
	tmpFile := writeTemp(t, "config-*.yaml", yamlContent)

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Provider.APIKey != "sk-test-key" {
		t.Errorf("provider.api_key = %q", cfg.Provider.APIKey)
	}
	if cfg.Provider.Model != "gpt-4o" {
		t.Errorf("provider.model = %q", cfg.Provider.Model)
	}
	if cfg.Provider.FailurePolicy != "strict" {
		t.Errorf("provider.failure_policy = %q", cfg.Provider.FailurePolicy)
	}
	if cfg.Stub.Delay != 50*time.Millisecond {
		t.Errorf("stub.delay = %v, want 50ms", cfg.Stub.Delay)
	}
	if cfg.Workflow.Topic != "distributed systems" || cfg.Workflow.ChainIterations != 5 {
		t.Errorf("workflow = %+v", cfg.Workflow)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" || cfg.Logging.Debug != "providers,engine" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if !cfg.Observability.Metrics.Enabled || cfg.Observability.Metrics.Addr != "127.0.0.1:9100" {
		t.Errorf("observability.metrics = %+v", cfg.Observability.Metrics)
	}
	if cfg.Observability.Tracing.OTLPEndpoint != "localhost:4317" ||
		cfg.Observability.Tracing.ServiceName != "promptly-test" ||
		cfg.Observability.Tracing.SampleRate != 0.5 {
		t.Errorf("observability.tracing = %+v", cfg.Observability.Tracing)
	}
}

func TestEnvOverride(t *testing.T) {
	clearEnv(t)
	yamlContent := `
provider:
  type: openai
  api_key: sk-yaml
  model: gpt-4o
`
	tmpFile := writeTemp(t, "config-*.yaml", yamlContent)

	t.Setenv("PROMPTLY_API_KEY", "sk-env")
	t.Setenv("PROMPTLY_MODEL", "gpt-4o-mini")
	t.Setenv("PROMPTLY_FAILURE_POLICY", "strict")
	t.Setenv("PROMPTLY_STUB_DELAY", "2s")
	t.Setenv("PROMPTLY_TOPIC", "jazz")
	t.Setenv("PROMPTLY_CHAIN_ITERATIONS", "7")
	t.Setenv("PROMPTLY_METRICS_ADDR", ":9999")
	t.Setenv("PROMPTLY_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("PROMPTLY_TRACE_SAMPLE_RATE", "0.1")

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Provider.APIKey != "sk-env" {
		t.Errorf("provider.api_key = %q, want env override", cfg.Provider.APIKey)
	}
	if cfg.Provider.Model != "gpt-4o-mini" {
		t.Errorf("provider.model = %q, want env override", cfg.Provider.Model)
	}
	if cfg.Provider.FailurePolicy != "strict" {
		t.Errorf("provider.failure_policy = %q", cfg.Provider.FailurePolicy)
	}
	if cfg.Stub.Delay != 2*time.Second {
		t.Errorf("stub.delay = %v", cfg.Stub.Delay)
	}
	if cfg.Workflow.Topic != "jazz" || cfg.Workflow.ChainIterations != 7 {
		t.Errorf("workflow = %+v", cfg.Workflow)
	}
	if !cfg.Observability.Metrics.Enabled || cfg.Observability.Metrics.Addr != ":9999" {
		t.Errorf("PROMPTLY_METRICS_ADDR should enable metrics, got %+v", cfg.Observability.Metrics)
	}
	if cfg.Observability.Tracing.OTLPEndpoint != "collector:4317" || cfg.Observability.Tracing.SampleRate != 0.1 {
		t.Errorf("observability.tracing = %+v", cfg.Observability.Tracing)
	}
}

func TestEnvOverrideMalformed(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PROMPTLY_STUB_DELAY", "soon"},
		{"PROMPTLY_CHAIN_ITERATIONS", "three"},
		{"PROMPTLY_STRICT_FAN_OUT", "maybe"},
		{"PROMPTLY_TRACE_SAMPLE_RATE", "most"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("PROMPTLY_PROVIDER", "stub")
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			if err == nil || !strings.Contains(err.Error(), tt.key) {
				t.Errorf("Load() error = %v, want mention of %s", err, tt.key)
			}
		})
	}
}

func TestOpenAIKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai-env")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Provider.APIKey != "sk-openai-env" {
		t.Errorf("provider.api_key = %q, want OPENAI_API_KEY fallback", cfg.Provider.APIKey)
	}

	// PROMPTLY_API_KEY wins over the fallback.
	t.Setenv("PROMPTLY_API_KEY", "sk-promptly-env")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Provider.APIKey != "sk-promptly-env" {
		t.Errorf("provider.api_key = %q, want PROMPTLY_API_KEY", cfg.Provider.APIKey)
	}
}

func TestOpenAIKeyFallbackDoesNotOverrideYAML(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai-env")
	tmpFile := writeTemp(t, "config-*.yaml", `
provider:
  api_key: sk-yaml
`)

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Provider.APIKey != "sk-yaml" {
		t.Errorf("provider.api_key = %q, want YAML value", cfg.Provider.APIKey)
	}
}

func TestFileReference(t *testing.T) {
	clearEnv(t)
	secretFile := writeTemp(t, "secret-*.txt", "  sk-from-file-123  \n")

	yamlContent := `
provider:
  api_key_file: ` + secretFile + `
`
	tmpFile := writeTemp(t, "config-*.yaml", yamlContent)

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Provider.APIKey != "sk-from-file-123" {
		t.Errorf("provider.api_key = %q, want trimmed file contents", cfg.Provider.APIKey)
	}
}

func TestFileReferenceMissingFile(t *testing.T) {
	clearEnv(t)
	tmpFile := writeTemp(t, "config-*.yaml", `
provider:
  api_key_file: /nonexistent/promptly/secret
`)

	_, err := Load(tmpFile)
	if err == nil || !strings.Contains(err.Error(), "provider.api_key_file") {
		t.Errorf("Load() error = %v, want provider.api_key_file failure", err)
	}
}

func TestFileReferenceDoesNotOverrideExplicitValue(t *testing.T) {
	clearEnv(t)
	secretFile := writeTemp(t, "secret-*.txt", "sk-from-file")

	yamlContent := `
provider:
  api_key: sk-explicit
  api_key_file: ` + secretFile + `
`
	tmpFile := writeTemp(t, "config-*.yaml", yamlContent)

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// When both api_key and api_key_file are set, the explicit value takes precedence.
	if cfg.Provider.APIKey != "sk-explicit" {
		t.Errorf("provider.api_key = %q, want \"sk-explicit\"", cfg.Provider.APIKey)
	}
}

func TestFileDiscovery(t *testing.T) {
	clearEnv(t)

	// Explicit path.
	tmpFile := writeTemp(t, "config-*.yaml", `
provider:
  type: stub
`)
	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load(explicit) error: %v", err)
	}
	if cfg.Provider.Type != "stub" {
		t.Errorf("explicit path: provider.type = %q, want stub", cfg.Provider.Type)
	}

	// PROMPTLY_CONFIG env var.
	envFile := writeTemp(t, "envconfig-*.yaml", `
provider:
  type: stub
workflow:
  topic: from env config
`)
	t.Setenv("PROMPTLY_CONFIG", envFile)

	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load(PROMPTLY_CONFIG) error: %v", err)
	}
	if cfg.Workflow.Topic != "from env config" {
		t.Errorf("PROMPTLY_CONFIG: workflow.topic = %q", cfg.Workflow.Topic)
	}

	// No file, defaults plus env overrides.
	t.Setenv("PROMPTLY_CONFIG", "")
	t.Setenv("PROMPTLY_PROVIDER", "stub")

	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load(no file) error: %v", err)
	}
	if cfg.Workflow.Topic != "disturbed band" {
		t.Errorf("no file: workflow.topic = %q, want default", cfg.Workflow.Topic)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load("/nonexistent/promptly.yaml"); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantErr   string
		wantConfg bool
	}{
		{
			name:      "missing api key",
			modify:    func(c *Config) {},
			wantErr:   "provider.api_key",
			wantConfg: true,
		},
		{
			name: "missing model",
			modify: func(c *Config) {
				c.Provider.APIKey = "sk"
				c.Provider.Model = ""
			},
			wantErr:   "provider.model is required",
			wantConfg: true,
		},
		{
			name: "invalid provider type",
			modify: func(c *Config) {
				c.Provider.Type = "anthropic"
			},
			wantErr: "provider.type must be",
		},
		{
			name: "invalid failure policy",
			modify: func(c *Config) {
				c.Provider.Type = "stub"
				c.Provider.FailurePolicy = "ignore"
			},
			wantErr: "provider.failure_policy",
		},
		{
			name: "negative stub delay",
			modify: func(c *Config) {
				c.Provider.Type = "stub"
				c.Stub.Delay = -time.Second
			},
			wantErr: "stub.delay must be >= 0",
		},
		{
			name: "zero chain iterations",
			modify: func(c *Config) {
				c.Provider.Type = "stub"
				c.Workflow.ChainIterations = 0
			},
			wantErr: "workflow.chain_iterations must be > 0",
		},
		{
			name: "invalid log format",
			modify: func(c *Config) {
				c.Provider.Type = "stub"
				c.Logging.Format = "xml"
			},
			wantErr: "logging.format must be",
		},
		{
			name: "metrics without addr",
			modify: func(c *Config) {
				c.Provider.Type = "stub"
				c.Observability.Metrics.Enabled = true
				c.Observability.Metrics.Addr = ""
			},
			wantErr: "observability.metrics.addr is required",
		},
		{
			name: "sample rate out of range",
			modify: func(c *Config) {
				c.Provider.Type = "stub"
				c.Observability.Tracing.SampleRate = 1.5
			},
			wantErr: "observability.tracing.sample_rate",
		},
		{
			name: "valid openai config",
			modify: func(c *Config) {
				c.Provider.APIKey = "sk"
			},
		},
		{
			name: "valid stub config without key",
			modify: func(c *Config) {
				c.Provider.Type = "stub"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
			if tt.wantConfg && !api.IsConfigurationError(err) {
				t.Errorf("Validate() error should classify as a configuration error: %v", err)
			}
		})
	}
}

func TestValidationJoinsErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Provider.Model = ""
	cfg.Stub.Delay = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	var pe *api.ProviderError
	if !errors.As(err, &pe) {
		t.Error("joined error should still expose the configuration error")
	}
	for _, want := range []string{"provider.api_key", "provider.model", "stub.delay"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err.Error(), want)
		}
	}
}

func TestYAMLDefaultsMerge(t *testing.T) {
	clearEnv(t)
	// A minimal YAML that only sets the provider type.
	// All other fields should retain defaults.
	tmpFile := writeTemp(t, "config-*.yaml", `
provider:
  type: stub
`)

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Provider.Model != "gpt-4o-mini" {
		t.Errorf("provider.model = %q, want default", cfg.Provider.Model)
	}
	if cfg.Stub.Delay != 500*time.Millisecond {
		t.Errorf("stub.delay = %v, want default 500ms", cfg.Stub.Delay)
	}
	if cfg.Observability.Metrics.Addr != ":9090" {
		t.Errorf("observability.metrics.addr = %q, want default", cfg.Observability.Metrics.Addr)
	}
}

func TestStrictFanOut(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROMPTLY_PROVIDER", "stub")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Workflow.StrictFanOut {
		t.Error("default workflow.strict_fan_out = true, want false")
	}

	tmpFile := writeTemp(t, "config-*.yaml", "workflow:\n  strict_fan_out: true\n")
	cfg, err = Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.Workflow.StrictFanOut {
		t.Error("workflow.strict_fan_out from YAML = false, want true")
	}

	t.Setenv("PROMPTLY_STRICT_FAN_OUT", "false")
	cfg, err = Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Workflow.StrictFanOut {
		t.Error("PROMPTLY_STRICT_FAN_OUT=false should override YAML")
	}
}

// writeTemp creates a temporary file with the given content and returns its path.
// The file is automatically cleaned up when the test finishes.
func writeTemp(t *testing.T, pattern, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), pattern)
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return f.Name()
}
