// Package metrics exposes Prometheus instrumentation for the exporter.
package metrics

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// FetchAttemptsTotal counts individual HTTP attempts, including retries.
	FetchAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ratefeed_fetch_attempts_total",
		Help: "HTTP fetch attempts, including retried ones",
	})

	// FetchRetriesTotal counts attempts that failed with budget remaining.
	FetchRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ratefeed_fetch_retries_total",
		Help: "Failed fetch attempts that were retried",
	})

	// LinesWrittenTotal counts lines handed to the sink, by quote.
	LinesWrittenTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ratefeed_lines_written_total",
		Help: "Formatted lines persisted through the sink",
	}, []string{"quote"})

	// RunDuration observes the wall-clock time of a whole fetcher run.
	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ratefeed_run_duration_seconds",
		Help:    "Duration of one fetch-and-persist run",
		Buckets: prometheus.DefBuckets,
	})
)

// Serve exposes /metrics on addr in the background. Errors other than
// server shutdown are logged, not returned; the exporter keeps running
// without its metrics endpoint.
func Serve(addr string, logger *slog.Logger) {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())

	go func() {
		logger.Info("metrics endpoint listening", "addr", addr)
		if err := http.ListenAndServe(addr, r); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics endpoint failed", "error", err)
		}
	}()
}
