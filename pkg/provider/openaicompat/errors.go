package openaicompat

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rhuss/promptly/pkg/api"
)

// MapHTTPError converts an HTTP response with a non-2xx status code into a
// transport error. It attempts to parse the response body as a
// ChatErrorResponse to extract a descriptive message.
func MapHTTPError(resp *http.Response) *api.ProviderError {
	message := ExtractErrorMessage(resp.Body)

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		if message == "" {
			message = "invalid request to backend"
		}

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if message == "" {
			message = "backend authentication failed"
		}

	case resp.StatusCode == http.StatusNotFound:
		if message == "" {
			message = "backend resource not found"
		}

	case resp.StatusCode == http.StatusTooManyRequests:
		if message == "" {
			message = "backend rate limit exceeded"
		}

	case resp.StatusCode >= http.StatusInternalServerError:
		if message == "" {
			message = "backend server error"
		}

	default:
		if message == "" {
			message = "unexpected backend status"
		}
	}

	return api.NewTransportError(message, resp.StatusCode, nil)
}

// MapNetworkError converts a network-level error (connection refused, timeout,
// DNS resolution failure) into a transport error.
func MapNetworkError(err error) *api.ProviderError {
	return api.NewTransportError("backend connection error", 0, err)
}

// MapDecodeError converts a response body parse failure into a decode error.
func MapDecodeError(err error) *api.ProviderError {
	return api.NewDecodeError("failed to parse backend response", err)
}

// ExtractErrorMessage tries to parse the response body as a ChatErrorResponse
// and returns the error message if found.
func ExtractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var errResp ChatErrorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}

	return ""
}
