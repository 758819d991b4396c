package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/gspc/statement-insights/internal/config"
	"github.com/gspc/statement-insights/internal/infra/observability"
	"github.com/gspc/statement-insights/internal/service"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract consumed by the statement dashboard
// frontend.
func NewRouter(stmtSvc *service.StatementService, chatSvc *service.ChatService, cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// POST /v1/analyze
		// Multipart CSV upload, returns the full statement report.
		r.Post("/analyze", analyzeHandler(stmtSvc, cfg.MaxUploadBytes, logger))

		// POST /v1/chat
		// Streams the assistant answer as plain text chunks.
		r.Post("/chat", chatHandler(chatSvc, cfg, logger))

		// GET /v1/env-check
		// Reports whether the chat credential is present and plausible.
		r.Get("/env-check", envCheckHandler(cfg, logger))

		// GET /v1/metrics/pipeline
		// JSON snapshot of pipeline counters for the dashboard.
		r.Get("/metrics/pipeline", pipelineMetricsHandler(metrics, logger))
	})

	return r
}

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
