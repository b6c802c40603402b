package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// TestMetricsRegistered verifies that all metrics are registered in the
// default registry without panicking.
func TestMetricsRegistered(t *testing.T) {
	expected := map[string]bool{
		"promptly_provider_requests_total":              false,
		"promptly_provider_latency_seconds":             false,
		"promptly_provider_tokens_total":                false,
		"promptly_provider_degraded_total":              false,
		"promptly_http_client_requests_total":           false,
		"promptly_http_client_request_duration_seconds": false,
		"promptly_workflow_runs_total":                  false,
		"promptly_workflow_phase_duration_seconds":      false,
		"promptly_fanout_calls_in_flight":               false,
	}

	// Vectors only appear after first observation, so seed them.
	ProviderRequestsTotal.WithLabelValues("stub", "test", StatusOK).Inc()
	ProviderLatency.WithLabelValues("stub", "test").Observe(0.1)
	ProviderTokensTotal.WithLabelValues("stub", "test", "input").Add(10)
	ProviderDegradedTotal.WithLabelValues("stub", "transport_error").Inc()
	HTTPRequestsTotal.WithLabelValues("POST", "2xx").Inc()
	HTTPRequestDuration.WithLabelValues("POST").Observe(0.1)
	WorkflowRunsTotal.WithLabelValues("plan", "completed").Inc()
	WorkflowPhaseDuration.WithLabelValues("plan", "fan_out").Observe(0.1)

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("unexpected gather error: %v", err)
	}

	for _, mf := range families {
		if _, ok := expected[mf.GetName()]; ok {
			expected[mf.GetName()] = true
		}
	}

	for name, found := range expected {
		if !found {
			t.Errorf("metric %q not found in default registry", name)
		}
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// TestTransportRecordsRequestCount verifies that the transport increments
// the request counter with the response status class.
func TestTransportRecordsRequestCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := &http.Client{Transport: InstrumentTransport(nil)}

	before2xx := counterValue(t, HTTPRequestsTotal, "GET", "2xx")
	before4xx := counterValue(t, HTTPRequestsTotal, "GET", "4xx")

	for _, path := range []string{"/ok", "/missing"} {
		resp, err := client.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
	}

	if d := counterValue(t, HTTPRequestsTotal, "GET", "2xx") - before2xx; d != 1 {
		t.Errorf("expected 2xx count to increase by 1, got delta=%f", d)
	}
	if d := counterValue(t, HTTPRequestsTotal, "GET", "4xx") - before4xx; d != 1 {
		t.Errorf("expected 4xx count to increase by 1, got delta=%f", d)
	}
}

// TestTransportRecordsDuration verifies that the transport records a
// duration observation per round trip.
func TestTransportRecordsDuration(t *testing.T) {
	before := histogramCount(t, HTTPRequestDuration, "PUT")

	rt := InstrumentTransport(roundTripFunc(func(r *http.Request) (*http.Response, error) {
		time.Sleep(5 * time.Millisecond)
		return &http.Response{StatusCode: http.StatusNoContent, Body: http.NoBody, Request: r}, nil
	}))
	req := httptest.NewRequest(http.MethodPut, "http://backend.invalid/x", nil)
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}

	after := histogramCount(t, HTTPRequestDuration, "PUT")
	if after-before != 1 {
		t.Errorf("expected histogram sample count to increase by 1, got delta=%d", after-before)
	}
}

// TestTransportRecordsNetworkError verifies that failed round trips are
// labelled "error".
func TestTransportRecordsNetworkError(t *testing.T) {
	before := counterValue(t, HTTPRequestsTotal, "DELETE", "error")

	wantErr := errors.New("connection reset")
	rt := InstrumentTransport(roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, wantErr
	}))
	req := httptest.NewRequest(http.MethodDelete, "http://backend.invalid/x", nil)
	if _, err := rt.RoundTrip(req); !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}

	after := counterValue(t, HTTPRequestsTotal, "DELETE", "error")
	if after-before != 1 {
		t.Errorf("expected error count to increase by 1, got delta=%f", after-before)
	}
}

// TestTransportDoesNotMutateRequest verifies that header injection happens
// on a clone.
func TestTransportDoesNotMutateRequest(t *testing.T) {
	rt := InstrumentTransport(roundTripFunc(func(r *http.Request) (*http.Response, error) {
		r.Header.Set("X-Seen", "1")
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: r}, nil
	}))
	req := httptest.NewRequest(http.MethodGet, "http://backend.invalid/x", nil)
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	if req.Header.Get("X-Seen") != "" {
		t.Error("original request headers were modified")
	}
}

// TestFanOutGauge verifies the in-flight gauge moves symmetrically.
func TestFanOutGauge(t *testing.T) {
	baseline := gaugeValue(t, FanOutInFlight)
	FanOutInFlight.Inc()
	if got := gaugeValue(t, FanOutInFlight); got != baseline+1 {
		t.Errorf("expected gauge=%f, got %f", baseline+1, got)
	}
	FanOutInFlight.Dec()
	if got := gaugeValue(t, FanOutInFlight); got != baseline {
		t.Errorf("expected gauge=%f, got %f", baseline, got)
	}
}

// counterValue reads the current value of a CounterVec for the given labels.
func counterValue(t *testing.T, cv *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	m := &dto.Metric{}
	c, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("getting counter metric: %v", err)
	}
	if err := c.(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("writing counter metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

// histogramCount reads the observation count from a HistogramVec.
func histogramCount(t *testing.T, hv *prometheus.HistogramVec, labels ...string) uint64 {
	t.Helper()
	m := &dto.Metric{}
	obs, err := hv.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("getting histogram metric: %v", err)
	}
	if err := obs.(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("writing histogram metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

// gaugeValue reads the current value of a Gauge.
func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := g.Write(m); err != nil {
		t.Fatalf("writing gauge metric: %v", err)
	}
	return m.GetGauge().GetValue()
}
