package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/gspc/statement-insights/internal/config"
	"github.com/gspc/statement-insights/internal/domain"
	"github.com/gspc/statement-insights/internal/infra/observability"
)

// envCheckHandler reports whether the chat credential is configured and
// looks usable, without ever echoing the value itself.
func envCheckHandler(cfg *config.Config, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.EnvCheck{
			HasAnthropicKey:       cfg.HasAnthropicKey(),
			LooksLikeAnthropicKey: cfg.AnthropicKeyPlausible(),
		})
	}
}

// pipelineMetricsHandler serves a JSON snapshot of the pipeline
// counters for the dashboard, separate from the Prometheus exposition
// endpoint.
func pipelineMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetPipelineSnapshot())
	}
}
