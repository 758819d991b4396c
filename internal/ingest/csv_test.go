package ingest_test

import (
	"strings"
	"testing"
	"time"

	"github.com/gspc/statement-insights/internal/domain"
	"github.com/gspc/statement-insights/internal/ingest"
)

const headerLine = "Bank Details,Account Number,Post Date,Check,Description,Debit,Credit,Status,Balance,Classification,GSPC Event,GSPC Event Details"

func buildCSV(rows ...string) string {
	return headerLine + "\n" + strings.Join(rows, "\n")
}

func TestParse_EmptyInput(t *testing.T) {
	tx, warnings := ingest.Parse("")
	if len(tx) != 0 {
		t.Fatalf("expected no transactions, got %d", len(tx))
	}
	if len(warnings) != 1 || warnings[0] != "CSV is empty" {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestParse_MissingColumnsAborts(t *testing.T) {
	csv := "Bank Details,Account Number,Post Date\nBank,123,2025-01-01"

	tx, warnings := ingest.Parse(csv)
	if len(tx) != 0 {
		t.Fatalf("expected no transactions, got %d", len(tx))
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
	if !strings.HasPrefix(warnings[0], "Missing required columns: ") {
		t.Errorf("unexpected warning: %s", warnings[0])
	}
	if !strings.Contains(warnings[0], "Balance") || !strings.Contains(warnings[0], "GSPC Event Details") {
		t.Errorf("warning should list the missing columns: %s", warnings[0])
	}
}

func TestParse_DebitRow(t *testing.T) {
	csv := buildCSV(`Bank,123,2025-01-15,,Office rent,"1,200.00",,Posted,5000.00,Rent,,`)

	tx, warnings := ingest.Parse(csv)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(tx) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(tx))
	}

	got := tx[0]
	if got.Debit != 1200 {
		t.Errorf("expected debit 1200, got %v", got.Debit)
	}
	if got.Amount != -1200 {
		t.Errorf("expected amount -1200, got %v", got.Amount)
	}
	if got.Direction != domain.DirectionExpense {
		t.Errorf("expected expense, got %s", got.Direction)
	}
	if got.Balance == nil || *got.Balance != 5000 {
		t.Errorf("expected balance 5000, got %v", got.Balance)
	}
	if got.Category != "Rent" {
		t.Errorf("expected category Rent, got %q", got.Category)
	}
}

func TestParse_CreditRow(t *testing.T) {
	csv := buildCSV("Bank,123,2025-01-20,,Client payment,,2500.00,Posted,,Revenue,,")

	tx, _ := ingest.Parse(csv)
	if len(tx) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(tx))
	}
	if tx[0].Amount != 2500 {
		t.Errorf("expected amount 2500, got %v", tx[0].Amount)
	}
	if tx[0].Direction != domain.DirectionIncome {
		t.Errorf("expected income, got %s", tx[0].Direction)
	}
	if tx[0].Balance != nil {
		t.Errorf("expected nil balance for empty field, got %v", *tx[0].Balance)
	}
}

func TestParse_ParenthesizedCreditIsExpense(t *testing.T) {
	// An accounting-style negative in the Credit column is a reversal:
	// the signed value drives both the net amount and the direction.
	csv := buildCSV("Bank,123,2025-02-01,,Refund reversal,,($50.00),Posted,,Fees,,")

	tx, _ := ingest.Parse(csv)
	if len(tx) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(tx))
	}
	if tx[0].Amount != -50 {
		t.Errorf("expected amount -50, got %v", tx[0].Amount)
	}
	if tx[0].Direction != domain.DirectionExpense {
		t.Errorf("expected expense, got %s", tx[0].Direction)
	}
	if tx[0].Credit != 50 {
		t.Errorf("stored credit should be the magnitude, got %v", tx[0].Credit)
	}
}

func TestParse_QuotedDescriptionWithComma(t *testing.T) {
	csv := buildCSV(`Bank,123,2025-01-10,,"Catering, venue and ""extras""",300.00,,Posted,,Events,Gala,"Annual gala, main hall"`)

	tx, _ := ingest.Parse(csv)
	if len(tx) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(tx))
	}
	if tx[0].Description != `Catering, venue and "extras"` {
		t.Errorf("unexpected description: %q", tx[0].Description)
	}
	if tx[0].EventDetails != "Annual gala, main hall" {
		t.Errorf("unexpected event details: %q", tx[0].EventDetails)
	}
}

func TestParse_BlankSeparatorRowSkipped(t *testing.T) {
	csv := buildCSV(
		"Bank,123,2025-01-05,,First,100.00,,Posted,,Misc,,",
		",,,,,,,,,,,",
		"Bank,123,2025-01-06,,Second,,200.00,Posted,,Misc,,",
	)

	tx, warnings := ingest.Parse(csv)
	if len(warnings) != 0 {
		t.Fatalf("separator rows must not warn: %v", warnings)
	}
	if len(tx) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(tx))
	}
}

func TestParse_InvalidDateWarnsAndDrops(t *testing.T) {
	csv := buildCSV(
		"Bank,123,2025-01-05,,Good row,100.00,,Posted,,Misc,,",
		"Bank,123,not-a-date,,Bad row,50.00,,Posted,,Misc,,",
	)

	tx, warnings := ingest.Parse(csv)
	if len(tx) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(tx))
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
	if warnings[0] != "Row 3: invalid Post Date" {
		t.Errorf("unexpected warning: %q", warnings[0])
	}
}

func TestParse_DateFormats(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2025-03-09", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)},
		{"3/9/25", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)},
		{"03-09-2025", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)},
		{"March 9, 2025", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)},
		{"Mar 9, 2025", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		csv := buildCSV(`Bank,123,"` + tt.raw + `",,Dated,10.00,,Posted,,Misc,,`)
		tx, warnings := ingest.Parse(csv)
		if len(tx) != 1 {
			t.Fatalf("%s: expected 1 transaction, warnings: %v", tt.raw, warnings)
		}
		if !tx[0].PostDate.Equal(tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.raw, tt.want, tx[0].PostDate)
		}
	}
}

func TestParse_SortsByPostDate(t *testing.T) {
	csv := buildCSV(
		"Bank,123,2025-02-10,,Later,10.00,,Posted,,Misc,,",
		"Bank,123,2025-01-01,,Earlier,20.00,,Posted,,Misc,,",
		"Bank,123,2025-02-10,,Later twin,30.00,,Posted,,Misc,,",
	)

	tx, _ := ingest.Parse(csv)
	if len(tx) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(tx))
	}
	if tx[0].Description != "Earlier" {
		t.Errorf("expected chronological order, first was %q", tx[0].Description)
	}
	// Equal dates keep input order.
	if tx[1].Description != "Later" || tx[2].Description != "Later twin" {
		t.Errorf("tie order broken: %q then %q", tx[1].Description, tx[2].Description)
	}
}

func TestParse_MalformedMoneyIsZero(t *testing.T) {
	// A garbage debit parses to zero; with a real credit present the row
	// still classifies as income.
	csv := buildCSV("Bank,123,2025-01-05,,Odd row,abc,75.00,Posted,,Misc,,")

	tx, warnings := ingest.Parse(csv)
	if len(warnings) != 0 {
		t.Fatalf("money parsing must not warn: %v", warnings)
	}
	if len(tx) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(tx))
	}
	if tx[0].Debit != 0 || tx[0].Amount != 75 {
		t.Errorf("expected debit 0 and amount 75, got %v and %v", tx[0].Debit, tx[0].Amount)
	}
	if tx[0].Direction != domain.DirectionIncome {
		t.Errorf("expected income, got %s", tx[0].Direction)
	}
}

func TestParse_CRLFAndBlankLines(t *testing.T) {
	csv := headerLine + "\r\n\r\nBank,123,2025-01-05,,Windows row,10.00,,Posted,,Misc,,\r\n"

	tx, warnings := ingest.Parse(csv)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(tx) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(tx))
	}
}
