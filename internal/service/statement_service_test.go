package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/gspc/statement-insights/internal/domain"
	"github.com/gspc/statement-insights/internal/infra/cache"
	"github.com/gspc/statement-insights/internal/infra/observability"
	"github.com/gspc/statement-insights/internal/service"
)

const headerLine = "Bank Details,Account Number,Post Date,Check,Description,Debit,Credit,Status,Balance,Classification,GSPC Event,GSPC Event Details"

const sampleCSV = headerLine + "\n" +
	"Bank,123,2025-01-05,,Client payment,,1000.00,Posted,1000.00,Revenue,,\n" +
	"Bank,123,2025-01-20,,Office rent,400.00,,Posted,600.00,Rent,,\n"

func newStatementService() *service.StatementService {
	return service.NewStatementService(
		2025,
		4,
		cache.New[*domain.StatementReport](time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
	)
}

func TestAnalyze_HappyPath(t *testing.T) {
	svc := newStatementService()

	report, err := svc.Analyze(context.Background(), sampleCSV)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.ID == "" {
		t.Error("expected a report id")
	}
	if report.Counts.Transactions != 2 {
		t.Errorf("expected 2 transactions, got %d", report.Counts.Transactions)
	}
	if report.Analysis.Totals.Net != 600 {
		t.Errorf("expected net 600, got %v", report.Analysis.Totals.Net)
	}
	if report.Warnings == nil {
		t.Error("warnings must serialize as an empty list, not null")
	}
	if len(report.Insights) == 0 || len(report.Actions) == 0 {
		t.Error("expected derived insights and actions")
	}
}

func TestAnalyze_CachesByContent(t *testing.T) {
	svc := newStatementService()

	first, err := svc.Analyze(context.Background(), sampleCSV)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Analyze(context.Background(), sampleCSV)
	if err != nil {
		t.Fatal(err)
	}

	if first.ID != second.ID {
		t.Error("identical content should return the cached report")
	}

	third, err := svc.Analyze(context.Background(), sampleCSV+"Bank,123,2025-02-01,,Extra,5.00,,Posted,,Misc,,\n")
	if err != nil {
		t.Fatal(err)
	}
	if third.ID == first.ID {
		t.Error("different content must not hit the cache")
	}
}

func TestAnalyze_StructuralFailure(t *testing.T) {
	svc := newStatementService()

	_, err := svc.Analyze(context.Background(), "Some,Other,Header\n1,2,3\n")
	if err == nil {
		t.Fatal("expected an error for a statement with missing columns")
	}

	var parseErr *domain.ErrCSVParse
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ErrCSVParse, got %T", err)
	}
	if len(parseErr.Errors) == 0 {
		t.Error("parse error should carry the row errors")
	}
}

func TestAnalyze_RowWarningsDoNotFail(t *testing.T) {
	svc := newStatementService()

	csv := sampleCSV + "Bank,123,bogus-date,,Bad row,5.00,,Posted,,Misc,,\n"
	report, err := svc.Analyze(context.Background(), csv)
	if err != nil {
		t.Fatalf("row-level warnings must not fail the request: %v", err)
	}
	if len(report.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", report.Warnings)
	}
	if report.Counts.Transactions != 2 {
		t.Errorf("expected 2 surviving transactions, got %d", report.Counts.Transactions)
	}
}
