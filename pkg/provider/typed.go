package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rhuss/promptly/pkg/api"
)

// CompleteTyped submits prompt through p and decodes the answer into T.
//
// Decode failures never surface: an empty, malformed, or unrelated answer
// yields the zero value of T. Errors returned by the provider itself are
// passed through unchanged, so a caller contract error, or a transport
// failure under PolicyStrict, still reaches the caller. T should be a
// value type (a struct or map); a pointer type decodes to nil on failure.
func CompleteTyped[T any](ctx context.Context, p Provider, prompt *api.Prompt, schema Schema) (T, error) {
	var zero T
	if prompt == nil {
		return zero, api.NewCallerContractError("prompt must not be nil")
	}

	text, err := p.CompleteStructured(ctx, prompt, schema)
	if err != nil {
		return zero, err
	}
	return Decode[T](text), nil
}

// Decode materializes text as a T, returning the zero value of T on any
// failure.
func Decode[T any](text string) T {
	v, _ := DecodeStrict[T](text)
	return v
}

// DecodeStrict materializes text as a T. Field names are matched
// case-insensitively and unknown fields are ignored; fields absent from text
// keep their zero value. A surrounding Markdown code fence is removed before
// decoding. On failure it returns the zero value of T and a decode error.
func DecodeStrict[T any](text string) (T, error) {
	var zero T

	body := StripCodeFence(text)
	if strings.TrimSpace(body) == "" {
		return zero, api.NewDecodeError("empty response text", nil)
	}

	var v T
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return zero, api.NewDecodeError("response text is not a valid object of the requested shape", err)
	}
	return v, nil
}

// StripCodeFence removes one Markdown code fence (with optional language
// tag) wrapping the whole of s. Text without an outer fence is returned
// unchanged.
func StripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") || len(trimmed) < 6 {
		return s
	}

	inner := strings.TrimSuffix(trimmed, "```")
	nl := strings.IndexByte(inner, '\n')
	if nl < 0 {
		return s
	}
	return strings.TrimSpace(inner[nl+1:])
}
