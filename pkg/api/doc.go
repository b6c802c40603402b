// Package api defines the core value types shared by every Promptly package.
//
// This package provides the immutable [Prompt] submitted to a model provider,
// the error taxonomy used across provider and workflow code, and run
// identifiers for correlating workflow executions in logs, metrics, and
// traces.
//
// Core types:
//   - [Prompt]: Immutable pair of user text and system instruction text
//   - [ProviderError]: Typed error carrying an [ErrorKind] and optional HTTP status
//
// Error kinds:
//
// Configuration errors are raised at construction time (missing credential,
// missing model, nil provider). Transport errors cover network failures and
// non-2xx HTTP statuses. Decode errors cover malformed response bodies and
// typed-decode failures. Caller contract errors mark invalid arguments such
// as a nil prompt. Use the Is* helpers to classify a wrapped error.
package api
