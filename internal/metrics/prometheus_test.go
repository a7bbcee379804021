package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecorder_RecordPosting(t *testing.T) {
	recorder := NewPrometheusRecorder("test")
	registry := prometheus.NewRegistry()
	if err := recorder.Register(registry); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	recorder.RecordPosting("deposit", OutcomeSuccess, 5*time.Millisecond)
	recorder.RecordPosting("deposit", OutcomeSuccess, 7*time.Millisecond)
	recorder.RecordPosting("withdraw", OutcomeRejected, time.Millisecond)

	if got := testutil.ToFloat64(recorder.postings.WithLabelValues("deposit", OutcomeSuccess)); got != 2 {
		t.Errorf("Expected 2 successful deposits, got %v", got)
	}
	if got := testutil.ToFloat64(recorder.postings.WithLabelValues("withdraw", OutcomeRejected)); got != 1 {
		t.Errorf("Expected 1 rejected withdrawal, got %v", got)
	}
	if got := testutil.CollectAndCount(recorder.postingLatency); got != 2 {
		t.Errorf("Expected 2 latency series, got %d", got)
	}
}

func TestPrometheusRecorder_RecordHTTPRequest(t *testing.T) {
	recorder := NewPrometheusRecorder("test")

	recorder.RecordHTTPRequest("GET", "/api/v1/users/me", 200, time.Millisecond)
	recorder.RecordHTTPRequest("GET", "/api/v1/users/me", 401, time.Millisecond)
	recorder.RecordRegistration(OutcomeSuccess)

	if got := testutil.ToFloat64(recorder.httpRequests.WithLabelValues("GET", "/api/v1/users/me", "401")); got != 1 {
		t.Errorf("Expected 1 unauthorized request, got %v", got)
	}
	if got := testutil.ToFloat64(recorder.registrations.WithLabelValues(OutcomeSuccess)); got != 1 {
		t.Errorf("Expected 1 registration, got %v", got)
	}
}

func TestPrometheusRecorder_DoubleRegisterFails(t *testing.T) {
	recorder := NewPrometheusRecorder("test")
	registry := prometheus.NewRegistry()
	if err := recorder.Register(registry); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := recorder.Register(registry); err == nil {
		t.Error("Expected duplicate registration to fail")
	}
}

func TestNoOpRecorder(t *testing.T) {
	var recorder Recorder = NoOpRecorder{}
	recorder.RecordPosting("deposit", OutcomeSuccess, time.Second)
	recorder.RecordRegistration(OutcomeError)
	recorder.RecordHTTPRequest("POST", "/", 500, time.Second)
}
