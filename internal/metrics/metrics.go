// Package metrics exposes Prometheus instrumentation for page fetches and
// result throughput.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PageRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quarry_page_requests_total",
			Help: "Total result page requests issued",
		},
		[]string{"status", "blocked", "block_source"},
	)

	PageFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quarry_page_fetch_duration_seconds",
			Help:    "Duration of result page fetches in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	PageBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quarry_page_bytes_total",
			Help: "Total bytes downloaded across result pages",
		},
	)

	ResultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quarry_results_total",
			Help: "Total search results yielded to callers",
		},
	)

	ProxyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quarry_proxy_failures_total",
			Help: "Total proxy failures during page fetches",
		},
		[]string{"proxy_url"},
	)
)

// RecordPage updates the fetch metrics for one page request. A negative
// status means the request failed before a response arrived.
func RecordPage(statusCode int, blocked bool, blockSource string, duration time.Duration, bodyBytes int) {
	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}

	blockedStr := "false"
	if blocked {
		blockedStr = "true"
	}

	PageRequestsTotal.WithLabelValues(status, blockedStr, blockSource).Inc()
	PageFetchDuration.Observe(duration.Seconds())
	PageBytesTotal.Add(float64(bodyBytes))
}

// Server serves /metrics for scraping.
type Server struct {
	srv *http.Server
}

// Start listens on the given port in the background.
func Start(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server failed: %v\n", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop shuts the metrics server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
