package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	io_prometheus_client "github.com/prometheus/client_model/go"
)

func TestInstrumentHandlerRecordsMetrics(t *testing.T) {
	handler := InstrumentHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodGet, "/sessions/123", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	if !metricCounterGreaterOrEqual(t, "opscore_http_requests_total", map[string]string{
		"method": "GET",
		"path":   "/sessions/123",
		"status": "202",
	}, 1) {
		t.Fatalf("expected http request counter to increment")
	}
	if !metricHistogramCountGreaterOrEqual(t, "opscore_http_request_duration_seconds", map[string]string{
		"method": "GET",
		"path":   "/sessions/123",
	}, 1) {
		t.Fatalf("expected http duration histogram to record samples")
	}
}

func TestInstrumentHandlerMetricsPathPassthrough(t *testing.T) {
	called := false
	handler := InstrumentHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected /metrics path to pass through to handler")
	}
}

func TestRecordPDFGeneration(t *testing.T) {
	RecordPDFGeneration("safety_sheet", 120*time.Millisecond, 4096, nil)
	if !metricCounterGreaterOrEqual(t, "opscore_pdf_generations_total", map[string]string{
		"kind": "safety_sheet", "status": "success",
	}, 1) {
		t.Fatalf("expected pdf generation success counter to increase")
	}
	if !metricHistogramCountGreaterOrEqual(t, "opscore_pdf_generation_duration_seconds", map[string]string{"kind": "safety_sheet"}, 1) {
		t.Fatalf("expected pdf duration histogram to record")
	}

	RecordPDFGeneration("overlay", 0, 0, errBoom)
	if !metricCounterGreaterOrEqual(t, "opscore_pdf_generations_total", map[string]string{
		"kind": "overlay", "status": "error",
	}, 1) {
		t.Fatalf("expected pdf generation error counter to increase")
	}
}

func TestRecordLinkMetrics(t *testing.T) {
	RecordLinkIssued("session")
	if !metricCounterGreaterOrEqual(t, "opscore_links_issued_total", map[string]string{"target_kind": "session"}, 1) {
		t.Fatalf("expected link issued counter to increase")
	}

	RecordLinkConsumed("expired")
	if !metricCounterGreaterOrEqual(t, "opscore_links_consumed_total", map[string]string{"outcome": "expired"}, 1) {
		t.Fatalf("expected link consumed counter to increase")
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	h := Handler()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Fatalf("expected non-empty metrics response")
	}
}

func TestStatusRecorder(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}
	sr.WriteHeader(http.StatusNotFound)
	if sr.status != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", sr.status)
	}

	n, err := sr.Write([]byte("hello"))
	if err != nil || n != 5 {
		t.Fatalf("write: n=%d err=%v", n, err)
	}
}

var errBoom = &testError{"boom"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }

func metricCounterGreaterOrEqual(t *testing.T, name string, labels map[string]string, min float64) bool {
	t.Helper()
	families, err := Registry.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if labelsMatch(metric, labels) && metric.GetCounter() != nil {
				return metric.GetCounter().GetValue() >= min
			}
		}
	}
	return false
}

func metricHistogramCountGreaterOrEqual(t *testing.T, name string, labels map[string]string, min uint64) bool {
	t.Helper()
	families, err := Registry.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if labelsMatch(metric, labels) && metric.GetHistogram() != nil {
				return metric.GetHistogram().GetSampleCount() >= min
			}
		}
	}
	return false
}

func labelsMatch(metric *io_prometheus_client.Metric, labels map[string]string) bool {
	if len(metric.GetLabel()) < len(labels) {
		return false
	}
	matched := 0
	for _, lbl := range metric.GetLabel() {
		if val, ok := labels[lbl.GetName()]; ok && val == lbl.GetValue() {
			matched++
		}
	}
	return matched == len(labels)
}
