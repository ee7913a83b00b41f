package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce      sync.Once
	requestsTotal     *prometheus.CounterVec
	latencySeconds    *prometheus.HistogramVec
	errorsTotal       *prometheus.CounterVec
	evaluationsTotal  prometheus.Counter
	resetTokensIssued prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "avalia_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "avalia_request_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "avalia_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		evaluationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "avalia_evaluations_submitted_total",
			Help: "Total number of evaluations accepted for storage.",
		})

		resetTokensIssued = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "avalia_reset_tokens_issued_total",
			Help: "Total number of password reset tokens issued.",
		})

		prometheus.MustRegister(requestsTotal, latencySeconds, errorsTotal, evaluationsTotal, resetTokensIssued)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// EvaluationsSubmitted exposes the counter for accepted evaluations.
func EvaluationsSubmitted() prometheus.Counter {
	RegisterMetrics()
	return evaluationsTotal
}

// ResetTokensIssued exposes the counter for issued reset tokens.
func ResetTokensIssued() prometheus.Counter {
	RegisterMetrics()
	return resetTokensIssued
}
