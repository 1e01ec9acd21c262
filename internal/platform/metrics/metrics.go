// Package metrics exposes Prometheus instruments for the HTTP API and the
// generative endpoint calls.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "questup"

// Generation call outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	generationCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_calls_total",
			Help:      "Generative endpoint operations by outcome and failure kind",
		},
		[]string{"operation", "outcome", "kind"},
	)

	generationCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_call_duration_seconds",
			Help:      "Generative endpoint operation duration, retries included",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		},
		[]string{"operation", "outcome"},
	)

	generationAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_attempts_total",
			Help:      "Individual endpoint attempts, counting each retry",
		},
		[]string{"operation"},
	)

	questionWarningsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "question_warnings_total",
			Help:      "Generated questions that violate a soft expectation",
		},
		[]string{"reason"},
	)
)

// GenerationCall records one generation operation.
func GenerationCall(operation, outcome, kind string, duration time.Duration) {
	generationCallsTotal.With(prometheus.Labels{
		"operation": operation,
		"outcome":   outcome,
		"kind":      kind,
	}).Inc()
	generationCallDuration.With(prometheus.Labels{
		"operation": operation,
		"outcome":   outcome,
	}).Observe(duration.Seconds())
}

// GenerationAttempt records a single endpoint attempt.
func GenerationAttempt(operation string) {
	generationAttemptsTotal.With(prometheus.Labels{"operation": operation}).Inc()
}

// QuestionWarning records a generated question that was kept despite a
// soft problem such as an out-of-range answer index.
func QuestionWarning(reason string) {
	questionWarningsTotal.With(prometheus.Labels{"reason": reason}).Inc()
}

// Middleware records request counts and durations, labelled by the matched
// chi route pattern to keep label cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		path := routePattern(r)
		httpRequestsTotal.With(prometheus.Labels{
			"method": r.Method,
			"path":   path,
			"code":   strconv.Itoa(status),
		}).Inc()
		httpRequestDuration.With(prometheus.Labels{
			"method": r.Method,
			"path":   path,
		}).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
