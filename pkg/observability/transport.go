package observability

import (
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// InstrumentTransport wraps an http.RoundTripper to record outbound request
// metrics and to propagate the active trace context in request headers.
//
// It captures:
//   - promptly_http_client_requests_total (counter): per request with method and status class labels
//   - promptly_http_client_request_duration_seconds (histogram): round trip duration with method label
//
// A nil next selects http.DefaultTransport.
func InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &instrumentedTransport{next: next}
}

type instrumentedTransport struct {
	next http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	// RoundTrip must not modify the caller's request.
	out := req.Clone(req.Context())
	otel.GetTextMapPropagator().Inject(req.Context(), propagation.HeaderCarrier(out.Header))

	resp, err := t.next.RoundTrip(out)

	HTTPRequestDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
	HTTPRequestsTotal.WithLabelValues(req.Method, statusClass(resp, err)).Inc()

	return resp, err
}

// statusClass builds a status class label like "2xx", "4xx", "5xx".
func statusClass(resp *http.Response, err error) string {
	if err != nil || resp == nil {
		return "error"
	}
	return strconv.Itoa(resp.StatusCode/100) + "xx"
}
