package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, PROMPTLY_CONFIG env, ./promptly.yaml, /etc/promptly/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. PROMPTLY_CONFIG environment variable
// 3. ./promptly.yaml in the current directory
// 4. /etc/promptly/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("PROMPTLY_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"promptly.yaml",
		"/etc/promptly/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields.
// Malformed numeric or duration values are reported rather than ignored.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PROMPTLY_PROVIDER"); v != "" {
		cfg.Provider.Type = v
	}
	if v := os.Getenv("PROMPTLY_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	} else if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.Provider.APIKey == "" && cfg.Provider.APIKeyFile == "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("PROMPTLY_MODEL"); v != "" {
		cfg.Provider.Model = v
	}
	if v := os.Getenv("PROMPTLY_FAILURE_POLICY"); v != "" {
		cfg.Provider.FailurePolicy = v
	}
	if v := os.Getenv("PROMPTLY_STUB_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PROMPTLY_STUB_DELAY: %w", err)
		}
		cfg.Stub.Delay = d
	}
	if v := os.Getenv("PROMPTLY_TOPIC"); v != "" {
		cfg.Workflow.Topic = v
	}
	if v := os.Getenv("PROMPTLY_CHAIN_ITERATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PROMPTLY_CHAIN_ITERATIONS: %w", err)
		}
		cfg.Workflow.ChainIterations = n
	}
	if v := os.Getenv("PROMPTLY_STRICT_FAN_OUT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PROMPTLY_STRICT_FAN_OUT: %w", err)
		}
		cfg.Workflow.StrictFanOut = b
	}
	if v := os.Getenv("PROMPTLY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PROMPTLY_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("PROMPTLY_DEBUG"); v != "" {
		cfg.Logging.Debug = v
	}

	// Setting an address implies the endpoint should be served.
	if v := os.Getenv("PROMPTLY_METRICS_ADDR"); v != "" {
		cfg.Observability.Metrics.Addr = v
		cfg.Observability.Metrics.Enabled = true
	}
	if v := os.Getenv("PROMPTLY_OTLP_ENDPOINT"); v != "" {
		cfg.Observability.Tracing.OTLPEndpoint = v
	}
	if v := os.Getenv("PROMPTLY_TRACE_SAMPLE_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("PROMPTLY_TRACE_SAMPLE_RATE: %w", err)
		}
		cfg.Observability.Tracing.SampleRate = rate
	}

	return nil
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// If the value field is empty and the file field is set, the file is read,
// whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// provider.api_key_file -> provider.api_key
	if cfg.Provider.APIKeyFile != "" && cfg.Provider.APIKey == "" {
		val, err := readSecretFile(cfg.Provider.APIKeyFile)
		if err != nil {
			return fmt.Errorf("provider.api_key_file: %w", err)
		}
		cfg.Provider.APIKey = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
