package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"TechNewsAgent/internal/domain"
)

const namespace = "technews"

// Summary outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeParseError   = "parse_error"
	OutcomeRequestError = "request_error"
	OutcomeSkipped      = "skipped"
)

// Metrics collects pipeline counters on a private registry. All methods are
// safe on a nil receiver so components can run without instrumentation.
type Metrics struct {
	registry *prometheus.Registry

	runs            *prometheus.CounterVec
	runDuration     prometheus.Histogram
	articlesFetched prometheus.Counter
	duplicates      prometheus.Counter
	keywordFailures *prometheus.CounterVec
	summaries       *prometheus.CounterVec
	lastSuccess     prometheus.Gauge

	mu        sync.RWMutex
	lastRun   time.Time
	lastError string
	healthy   bool
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by final status.",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a full pipeline run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		articlesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_fetched_total",
			Help:      "Unique articles returned by the fetch stage.",
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_duplicate_total",
			Help:      "Articles dropped because another keyword returned the same URL.",
		}),
		keywordFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keyword_fetch_failures_total",
			Help:      "News provider failures per keyword.",
		}, []string{"keyword"}),
		summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_total",
			Help:      "Summarised articles by outcome.",
		}, []string{"outcome"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
		healthy: true,
	}

	m.registry.MustRegister(
		m.runs,
		m.runDuration,
		m.articlesFetched,
		m.duplicates,
		m.keywordFailures,
		m.summaries,
		m.lastSuccess,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveFetch records the outcome of one fetch stage.
func (m *Metrics) ObserveFetch(unique, duplicates int) {
	if m == nil {
		return
	}
	m.articlesFetched.Add(float64(unique))
	m.duplicates.Add(float64(duplicates))
}

// KeywordFailed counts a failed provider query.
func (m *Metrics) KeywordFailed(keyword string) {
	if m == nil {
		return
	}
	m.keywordFailures.WithLabelValues(keyword).Inc()
}

// SummaryOutcome counts one summariser result.
func (m *Metrics) SummaryOutcome(outcome string) {
	if m == nil {
		return
	}
	m.summaries.WithLabelValues(outcome).Inc()
}

// ObserveRun records a finished run and updates the health state.
func (m *Metrics) ObserveRun(result domain.RunResult, started time.Time, finished time.Time) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(string(result.Status)).Inc()
	m.runDuration.Observe(finished.Sub(started).Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastRun = finished
	switch result.Status {
	case domain.StatusSuccess:
		m.lastSuccess.Set(float64(finished.Unix()))
		m.lastError = ""
		m.healthy = true
	case domain.StatusFailed:
		m.lastError = result.Message
		m.healthy = true
	default:
		m.lastError = result.Message
		m.healthy = false
	}
}

// Handler serves /metrics in the Prometheus text format and /health as JSON.
func (m *Metrics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", m.healthHandler)
	return mux
}

func (m *Metrics) healthHandler(w http.ResponseWriter, _ *http.Request) {
	m.mu.RLock()
	healthy := m.healthy
	response := map[string]any{
		"status":     "ok",
		"last_run":   "",
		"last_error": m.lastError,
	}
	if !m.lastRun.IsZero() {
		response["last_run"] = m.lastRun.Format(time.RFC3339)
	}
	m.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if !healthy {
		response["status"] = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(response)
}

// Serve listens on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
