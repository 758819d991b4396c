package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/gspc/statement-insights/internal/domain"
	"github.com/gspc/statement-insights/internal/infra/observability"
	"github.com/gspc/statement-insights/internal/infra/resilience"
	"github.com/gspc/statement-insights/internal/ingest"
	"github.com/gspc/statement-insights/internal/orchestrator"
	"github.com/gspc/statement-insights/internal/port"
)

var tracer = otel.Tracer("service/statement")

// StatementService runs the ingest → analyze → insights → actions
// pipeline for one uploaded statement. The core stages are pure; this
// layer adds caching by content hash, deduplication of concurrent
// identical uploads, a concurrency bulkhead and metrics.
type StatementService struct {
	orc      *orchestrator.Orchestrator
	cache    port.Cache[*domain.StatementReport]
	metrics  *observability.Metrics
	logger   *zap.Logger
	bulkhead *resilience.Bulkhead
	group    singleflight.Group
}

// NewStatementService creates the service with all dependencies injected.
func NewStatementService(
	targetYear int,
	maxConcurrency int,
	cache port.Cache[*domain.StatementReport],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *StatementService {
	return &StatementService{
		orc:      orchestrator.New(targetYear),
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		bulkhead: resilience.NewBulkhead(maxConcurrency),
	}
}

// Analyze ingests the raw CSV text and produces the full report.
// A structural parse failure (zero transactions plus at least one
// error) is returned as *domain.ErrCSVParse; row-level warnings travel
// inside the report.
func (s *StatementService) Analyze(ctx context.Context, csvText string) (*domain.StatementReport, error) {
	ctx, span := tracer.Start(ctx, "StatementService.Analyze")
	defer span.End()

	if err := s.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.bulkhead.Release()

	sum := sha256.Sum256([]byte(csvText))
	key := hex.EncodeToString(sum[:])
	span.SetAttributes(attribute.String("statement.hash", key[:12]))

	if cached, ok := s.cache.Get(key); ok {
		s.metrics.IncrCacheHit("report")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("report")

	// Identical uploads arriving concurrently share one pipeline run.
	result, err, _ := s.group.Do(key, func() (any, error) {
		return s.run(csvText)
	})
	if err != nil {
		s.metrics.IncrRequest("error")
		return nil, err
	}

	report := result.(*domain.StatementReport)
	s.cache.Set(key, report)
	s.metrics.IncrRequest("success")
	return report, nil
}

func (s *StatementService) run(csvText string) (*domain.StatementReport, error) {
	start := time.Now()
	transactions, warnings := ingest.Parse(csvText)
	s.metrics.RecordStageDuration("ingest", time.Since(start))

	if len(transactions) == 0 && len(warnings) > 0 {
		return nil, &domain.ErrCSVParse{Errors: warnings}
	}

	s.metrics.AddRowsParsed(len(transactions))
	s.metrics.AddRowWarnings(len(warnings))

	start = time.Now()
	result := s.orc.Run(transactions)
	s.metrics.RecordStageDuration("derive", time.Since(start))

	if warnings == nil {
		warnings = []string{}
	}

	s.logger.Info("statement analyzed",
		zap.Int("transactions", len(transactions)),
		zap.Int("warnings", len(warnings)),
		zap.Int("insights", len(result.Insights)),
		zap.Int("actions", len(result.Actions)),
	)

	return &domain.StatementReport{
		ID:       uuid.New().String(),
		Analysis: result.Analysis,
		Insights: result.Insights,
		Actions:  result.Actions,
		Warnings: warnings,
		Counts:   domain.ReportCounts{Transactions: len(transactions)},
	}, nil
}
