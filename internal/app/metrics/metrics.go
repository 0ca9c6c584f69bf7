// Package metrics exposes the Prometheus collectors this module registers
// for its own operator-facing health surface.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds every collector this module registers.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "opscore",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "opscore",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "opscore",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to 2.56s
		},
		[]string{"method", "path"},
	)

	pdfGenerations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "opscore",
			Subsystem: "pdf",
			Name:      "generations_total",
			Help:      "Total number of PDF documents generated, by artifact kind and outcome.",
		},
		[]string{"kind", "status"},
	)

	pdfDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "opscore",
			Subsystem: "pdf",
			Name:      "generation_duration_seconds",
			Help:      "Duration of PDF generation, by artifact kind.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"kind"},
	)

	pdfSizeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "opscore",
			Subsystem: "pdf",
			Name:      "generated_size_bytes",
			Help:      "Size in bytes of generated PDF documents, by artifact kind.",
			Buckets:   prometheus.ExponentialBuckets(1024, 2, 10), // 1KiB to 512KiB
		},
		[]string{"kind"},
	)

	linksIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "opscore",
			Subsystem: "links",
			Name:      "issued_total",
			Help:      "Total number of one-shot questionnaire links issued.",
		},
		[]string{"target_kind"},
	)

	linksConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "opscore",
			Subsystem: "links",
			Name:      "consumed_total",
			Help:      "Total number of one-shot questionnaire links consumed, by outcome.",
		},
		[]string{"outcome"}, // "ok", "expired", "already_consumed"
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		pdfGenerations,
		pdfDuration,
		pdfSizeBytes,
		linksIssued,
		linksConsumed,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus
// metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps next with HTTP request metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, r.URL.Path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, r.URL.Path).Observe(duration.Seconds())
	})
}

// RecordPDFGeneration records one PDF render, kind being "safety_sheet" or
// "overlay".
func RecordPDFGeneration(kind string, duration time.Duration, sizeBytes int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	pdfGenerations.WithLabelValues(kind, status).Inc()
	if err == nil {
		pdfDuration.WithLabelValues(kind).Observe(duration.Seconds())
		pdfSizeBytes.WithLabelValues(kind).Observe(float64(sizeBytes))
	}
}

// RecordLinkIssued records one one-shot link issuance, targetKind being
// "session" or "outing".
func RecordLinkIssued(targetKind string) {
	linksIssued.WithLabelValues(targetKind).Inc()
}

// RecordLinkConsumed records one link-consumption attempt, outcome being
// "ok", "expired", or "already_consumed".
func RecordLinkConsumed(outcome string) {
	linksConsumed.WithLabelValues(outcome).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	return r.ResponseWriter.Write(b)
}
