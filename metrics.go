package aigen

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "aigen"

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Total number of provider calls by result",
		},
		[]string{"capability", "kind", "result"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "Provider call duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"capability", "kind"},
	)

	pollerJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "poller_jobs_total",
			Help:      "Total number of polled video jobs by final state",
		},
		[]string{"state"},
	)

	fetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fetches_total",
			Help:      "Total number of media downloads by result",
		},
		[]string{"media", "result"},
	)
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

func recordRequest(op string, kind ProviderKind, err error, seconds float64) {
	result := resultSuccess
	if err != nil {
		result = resultFailure
	}
	requestsTotal.WithLabelValues(op, string(kind), result).Inc()
	requestDuration.WithLabelValues(op, string(kind)).Observe(seconds)
}
