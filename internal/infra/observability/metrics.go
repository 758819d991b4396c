package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/gspc/statement-insights/internal/domain"
)

// Metrics holds all Prometheus metrics for the statement pipeline.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can serve it.
	Registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	requestsTotal *prometheus.CounterVec
	rowsParsed    prometheus.Counter
	rowWarnings   prometheus.Counter
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	tokensUsed    *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. A private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in
// tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "statement_stage_duration_seconds",
				Help: "Duration of pipeline stages by operation.",
				// Ingest and derive finish in milliseconds; only chat
				// streams run into whole seconds.
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
			},
			[]string{"operation"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statement_requests_total",
				Help: "Total analyze requests processed.",
			},
			[]string{"status"},
		),
		rowsParsed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "statement_rows_parsed_total",
				Help: "Total statement rows successfully parsed.",
			},
		),
		rowWarnings: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "statement_row_warnings_total",
				Help: "Total statement rows dropped with a warning.",
			},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statement_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statement_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		tokensUsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statement_llm_tokens_total",
				Help: "Total LLM tokens consumed by the chat assistant.",
			},
			[]string{"type"},
		),
	}
}

// RecordStageDuration records the duration of a pipeline stage.
func (m *Metrics) RecordStageDuration(operation string, d time.Duration) {
	m.stageDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrRequest increments the analyze request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// AddRowsParsed counts rows that survived ingestion.
func (m *Metrics) AddRowsParsed(n int) {
	m.rowsParsed.Add(float64(n))
}

// AddRowWarnings counts rows dropped with warnings.
func (m *Metrics) AddRowWarnings(n int) {
	m.rowWarnings.Add(float64(n))
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordTokens records prompt and completion token usage.
func (m *Metrics) RecordTokens(prompt, completion int) {
	m.tokensUsed.WithLabelValues("prompt").Add(float64(prompt))
	m.tokensUsed.WithLabelValues("completion").Add(float64(completion))
}

// GetPipelineSnapshot returns current counter values for the
// GET /v1/metrics/pipeline endpoint.
func (m *Metrics) GetPipelineSnapshot() *domain.PipelineMetrics {
	success := getCounterValue(m.requestsTotal.WithLabelValues("success"))
	failed := getCounterValue(m.requestsTotal.WithLabelValues("error"))
	total := success + failed

	hits := getCounterValue(m.cacheHits.WithLabelValues("report"))
	misses := getCounterValue(m.cacheMisses.WithLabelValues("report"))

	errorRate := float64(0)
	if total > 0 {
		errorRate = failed / total
	}
	cacheHitRate := float64(0)
	if hits+misses > 0 {
		cacheHitRate = hits / (hits + misses)
	}

	return &domain.PipelineMetrics{
		TotalRequests:    int64(total),
		ErrorRate:        errorRate,
		RowsParsed:       int64(getCounterValue(m.rowsParsed)),
		RowWarnings:      int64(getCounterValue(m.rowWarnings)),
		CacheHitRate:     cacheHitRate,
		PromptTokens:     int64(getCounterValue(m.tokensUsed.WithLabelValues("prompt"))),
		CompletionTokens: int64(getCounterValue(m.tokensUsed.WithLabelValues("completion"))),
	}
}

// getCounterValue extracts the current float64 value from a counter.
func getCounterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
