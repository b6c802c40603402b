package api

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of a provider or workflow error.
type ErrorKind string

const (
	ErrorKindConfiguration  ErrorKind = "configuration_error"
	ErrorKindTransport      ErrorKind = "transport_error"
	ErrorKindDecode         ErrorKind = "decode_error"
	ErrorKindCallerContract ErrorKind = "caller_contract_error"
)

// ProviderError represents a structured error with a kind, a message, an
// optional HTTP status code, and an optional wrapped cause.
type ProviderError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewConfigurationError creates a ProviderError for invalid construction
// parameters such as a missing credential or model identifier.
func NewConfigurationError(message string) *ProviderError {
	return &ProviderError{
		Kind:    ErrorKindConfiguration,
		Message: message,
	}
}

// NewTransportError creates a ProviderError for network failures and
// non-success HTTP statuses. statusCode is 0 when no response was received.
func NewTransportError(message string, statusCode int, err error) *ProviderError {
	return &ProviderError{
		Kind:       ErrorKindTransport,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

// NewDecodeError creates a ProviderError for response bodies that cannot be
// decoded into the expected shape.
func NewDecodeError(message string, err error) *ProviderError {
	return &ProviderError{
		Kind:    ErrorKindDecode,
		Message: message,
		Err:     err,
	}
}

// NewCallerContractError creates a ProviderError for invalid arguments
// supplied by the caller.
func NewCallerContractError(message string) *ProviderError {
	return &ProviderError{
		Kind:    ErrorKindCallerContract,
		Message: message,
	}
}

// KindOf returns the kind of the first ProviderError in err's chain, or ""
// when there is none.
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

func hasKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// IsConfigurationError reports whether err is a configuration error.
func IsConfigurationError(err error) bool { return hasKind(err, ErrorKindConfiguration) }

// IsTransportError reports whether err is a transport error.
func IsTransportError(err error) bool { return hasKind(err, ErrorKindTransport) }

// IsDecodeError reports whether err is a decode error.
func IsDecodeError(err error) bool { return hasKind(err, ErrorKindDecode) }

// IsCallerContractError reports whether err is a caller contract error.
func IsCallerContractError(err error) bool { return hasKind(err, ErrorKindCallerContract) }
