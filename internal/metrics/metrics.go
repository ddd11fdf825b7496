// Package metrics exposes Prometheus instruments for ingestion, moderation and HTTP traffic.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "gallery"

// Ingestion outcomes
const (
	OutcomeCreated      = "created"
	OutcomeFailed       = "failed"
	OutcomeUnauthorized = "unauthorized"
	OutcomeNoImages     = "no_images"
)

// Metrics groups the service's collectors on a private registry
type Metrics struct {
	Registry *prometheus.Registry

	ingestAttachments *prometheus.CounterVec
	ingestDuration    prometheus.Histogram
	commentsSubmitted prometheus.Counter
	statusChanges     *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New registers all collectors, plus Go runtime and process collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		ingestAttachments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_attachments_total",
			Help:      "Email attachments processed, by outcome.",
		}, []string{"outcome"}),
		ingestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_batch_duration_seconds",
			Help:      "Time spent processing one inbound email.",
			Buckets:   prometheus.DefBuckets,
		}),
		commentsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_submitted_total",
			Help:      "Comments accepted for moderation.",
		}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comment_status_changes_total",
			Help:      "Moderation status writes, by new status.",
		}, []string{"status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ingestAttachments,
		m.ingestDuration,
		m.commentsSubmitted,
		m.statusChanges,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// IngestOutcome counts one attachment (or rejected batch) outcome
func (m *Metrics) IngestOutcome(outcome string) {
	if m == nil {
		return
	}
	m.ingestAttachments.WithLabelValues(outcome).Inc()
}

// IngestDuration records how long one email took
func (m *Metrics) IngestDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.ingestDuration.Observe(d.Seconds())
}

// CommentSubmitted counts a persisted visitor comment
func (m *Metrics) CommentSubmitted() {
	if m == nil {
		return
	}
	m.commentsSubmitted.Inc()
}

// StatusChanged counts a moderation write
func (m *Metrics) StatusChanged(status string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(status).Inc()
}

// ObserveRequest records a finished HTTP request
func (m *Metrics) ObserveRequest(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
