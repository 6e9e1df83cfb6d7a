// Package metrics holds the portal's Prometheus collectors. Everything is
// registered on the default registry and served by promhttp at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tesis"

func counter(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, labels)
}

func histogram(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: name, Help: help, Buckets: buckets}, labels)
}

var (
	HTTPRequestsTotal = counter("http_requests_total",
		"HTTP requests by route and status.", "method", "path", "status_code")
	HTTPRequestDuration = histogram("http_request_duration_seconds",
		"HTTP request latency.", prometheus.DefBuckets, "method", "path")
	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_requests_in_flight",
		Help:      "HTTP requests currently being served.",
	})
)

var (
	BackendRequestsTotal = counter("backend_requests_total",
		"Calls to the thesis backend by resource and outcome.", "resource", "status")
	BackendRequestDuration = histogram("backend_request_duration_seconds",
		"Thesis backend call latency.", []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}, "resource")
)

var (
	TasksTotal = counter("tasks_total",
		"Background task runs by outcome.", "task", "status")
	TaskDuration = histogram("task_duration_seconds",
		"Background task run time.", []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60}, "task")
)

var (
	ListRendersTotal = counter("list_renders_total",
		"List pages rendered, by list and format (page, fragment, json).", "list", "format")
	PageRequestsIgnored = counter("page_requests_ignored_total",
		"Page requests outside 1..totalPages that left the list unchanged.", "list")
	PresetSwitches = counter("preset_switches_total",
		"Viewport threshold crossings that changed a list's page size.", "list", "preset")

	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_created_total",
		Help:      "Portal sessions created.",
	})
	SessionsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_purged_total",
		Help:      "Expired sessions removed by the purge task.",
	})
)
