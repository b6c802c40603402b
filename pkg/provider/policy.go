package provider

import (
	"context"
	"fmt"
	"strings"
)

// FailurePolicy controls how a provider reports transport and decode
// failures of an individual call.
type FailurePolicy string

const (
	// PolicyDegrade turns transport and decode failures into an empty
	// answer with a nil error. The failure is still logged and counted.
	PolicyDegrade FailurePolicy = "degrade"

	// PolicyStrict returns transport and decode failures to the caller as
	// typed errors.
	PolicyStrict FailurePolicy = "strict"
)

// DefaultFailurePolicy is used when no policy is configured.
const DefaultFailurePolicy = PolicyDegrade

// ParseFailurePolicy converts a configuration string into a FailurePolicy.
// The empty string maps to DefaultFailurePolicy.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultFailurePolicy, nil
	case PolicyDegrade:
		return PolicyDegrade, nil
	case PolicyStrict:
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q (valid: degrade, strict)", s)
	}
}

type policyKey struct{}

// WithFailurePolicy returns a context that overrides the configured failure
// policy of providers called with it. Workflows use it to receive typed
// errors and decide per phase whether a failure aborts or degrades.
func WithFailurePolicy(ctx context.Context, policy FailurePolicy) context.Context {
	return context.WithValue(ctx, policyKey{}, policy)
}

// FailurePolicyFrom returns the policy carried by ctx, or fallback when ctx
// carries none.
func FailurePolicyFrom(ctx context.Context, fallback FailurePolicy) FailurePolicy {
	if policy, ok := ctx.Value(policyKey{}).(FailurePolicy); ok && policy != "" {
		return policy
	}
	return fallback
}
