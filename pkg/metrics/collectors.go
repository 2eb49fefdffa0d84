package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "devdiag"

var (
	classificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "classifications_total",
		Help:      "Classifications by strategy and outcome (matched, no_match)",
	}, []string{"strategy", "outcome"})

	matchesPerRequest = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "matches_per_request",
		Help:      "Number of matches returned by a classification",
		Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
	})

	classificationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "classification_duration_seconds",
		Help:      "Classification latency",
		Buckets:   []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	}, []string{"strategy"})

	enrichmentFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrichment_failures_total",
		Help:      "Issue type lookups that failed; the request completed without issue types",
	})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code",
	}, []string{"route", "code"})
)

// ObserveClassification records one finished classification.
func ObserveClassification(strategy string, matches int, elapsed time.Duration) {
	outcome := "matched"
	if matches == 0 {
		outcome = "no_match"
	}
	classificationsTotal.WithLabelValues(strategy, outcome).Inc()
	matchesPerRequest.Observe(float64(matches))
	classificationDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

func EnrichmentFailed() {
	enrichmentFailures.Inc()
}

func ObserveHTTPRequest(route string, code int) {
	httpRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
