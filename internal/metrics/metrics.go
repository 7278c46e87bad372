// Package metrics holds the Prometheus collectors for the API and jobs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Job metrics
	ScanRunsTotal       *prometheus.CounterVec
	ScanDuration        prometheus.Histogram
	InvoicesCreated     *prometheus.CounterVec
	EmailsTotal         *prometheus.CounterVec
	ScanLastSuccessUnix prometheus.Gauge
}

// New creates and registers every collector on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "killbill_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "killbill_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		ScanRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "killbill_expiry_scan_runs_total",
				Help: "Expiry scan runs by outcome",
			},
			[]string{"outcome"},
		),
		ScanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "killbill_expiry_scan_duration_seconds",
				Help:    "Expiry scan duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		InvoicesCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "killbill_invoices_created_total",
				Help: "Invoices created by source",
			},
			[]string{"source"},
		),
		EmailsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "killbill_emails_total",
				Help: "Email delivery attempts by kind and status",
			},
			[]string{"kind", "status"},
		),
		ScanLastSuccessUnix: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "killbill_expiry_scan_last_success_timestamp_seconds",
				Help: "Unix time of the last successful expiry scan",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ScanRunsTotal,
		m.ScanDuration,
		m.InvoicesCreated,
		m.EmailsTotal,
		m.ScanLastSuccessUnix,
	)

	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
