// Package metrics exposes Prometheus collectors for the API.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Adoption results.
const (
	AdoptionCreated  = "created"
	AdoptionDenied   = "denied"
	AdoptionNotFound = "not_found"
	AdoptionFailed   = "failed"
)

var (
	Registry = prometheus.NewRegistry()

	Adoptions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "okrmaster",
		Name:      "adoptions_total",
		Help:      "Key result adoption attempts by result and mode.",
	}, []string{"result", "mode"})

	AICalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "okrmaster",
		Name:      "ai_calls_total",
		Help:      "Calls to the AI collaborator by operation and outcome.",
	}, []string{"operation", "outcome"})

	AILatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "okrmaster",
		Name:      "ai_call_duration_seconds",
		Help:      "Latency of AI collaborator calls.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
	}, []string{"operation"})

	VisibilityRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "okrmaster",
		Name:      "visibility_requests_total",
		Help:      "Objective list requests by viewer role and tab.",
	}, []string{"role", "tab"})

	ConfigurationWarnings = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "okrmaster",
		Name:      "configuration_warnings_total",
		Help:      "Malformed reporting graphs seen while loading a directory.",
	})

	WSConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "okrmaster",
		Name:      "ws_connections",
		Help:      "Open realtime connections.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		Adoptions,
		AICalls,
		AILatency,
		VisibilityRequests,
		ConfigurationWarnings,
		WSConnections,
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
