package analysis_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/gspc/statement-insights/internal/analysis"
	"github.com/gspc/statement-insights/internal/domain"
)

func tx(date string, amount float64, dir domain.Direction, category, event string) domain.ClassifiedTransaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	t := domain.Transaction{
		PostDate:       d.UTC(),
		Description:    category,
		Classification: category,
		Category:       category,
		Event:          event,
		Amount:         amount,
	}
	if amount >= 0 {
		t.Credit = amount
	} else {
		t.Debit = -amount
	}
	return domain.ClassifiedTransaction{Transaction: t, Direction: dir}
}

func withBalance(t domain.ClassifiedTransaction, balance float64) domain.ClassifiedTransaction {
	t.Balance = &balance
	return t
}

func TestEngine_EmptyInput(t *testing.T) {
	result := analysis.NewEngine(2025).Run(nil)

	if result.Totals.Income != 0 || result.Totals.Expense != 0 || result.Totals.Net != 0 {
		t.Errorf("expected zero totals, got %+v", result.Totals)
	}
	if len(result.Monthly) != 0 {
		t.Errorf("expected no monthly points, got %d", len(result.Monthly))
	}
	if result.YearReport != nil {
		t.Error("expected no year report for empty input")
	}
	if len(result.Anomalies) != 0 {
		t.Errorf("expected no anomalies, got %d", len(result.Anomalies))
	}
}

func TestEngine_Totals(t *testing.T) {
	result := analysis.NewEngine(2025).Run([]domain.ClassifiedTransaction{
		tx("2025-01-05", 1000, domain.DirectionIncome, "Revenue", ""),
		tx("2025-01-10", -300, domain.DirectionExpense, "Rent", ""),
		tx("2025-01-15", -200, domain.DirectionExpense, "Supplies", ""),
	})

	if result.Totals.Income != 1000 {
		t.Errorf("expected income 1000, got %v", result.Totals.Income)
	}
	if result.Totals.Expense != 500 {
		t.Errorf("expected expense 500, got %v", result.Totals.Expense)
	}
	if result.Totals.Net != 500 {
		t.Errorf("expected net 500, got %v", result.Totals.Net)
	}
}

func TestEngine_MonthlyBucketsAndLastBalanceWins(t *testing.T) {
	result := analysis.NewEngine(2025).Run([]domain.ClassifiedTransaction{
		withBalance(tx("2025-01-05", 1000, domain.DirectionIncome, "Revenue", ""), 1000),
		withBalance(tx("2025-01-20", -400, domain.DirectionExpense, "Rent", ""), 600),
		tx("2025-02-03", -100, domain.DirectionExpense, "Rent", ""),
	})

	if len(result.Monthly) != 2 {
		t.Fatalf("expected 2 monthly points, got %d", len(result.Monthly))
	}

	jan := result.Monthly[0]
	if jan.Month != "2025-01" {
		t.Fatalf("expected months sorted ascending, first was %s", jan.Month)
	}
	if jan.Income != 1000 || jan.Expense != 400 || jan.Net != 600 {
		t.Errorf("unexpected January point: %+v", jan)
	}
	if jan.EndingBalance == nil || *jan.EndingBalance != 600 {
		t.Errorf("expected ending balance from the latest row, got %v", jan.EndingBalance)
	}

	feb := result.Monthly[1]
	if feb.Month != "2025-02" || feb.Expense != 100 {
		t.Errorf("unexpected February point: %+v", feb)
	}
	if feb.EndingBalance != nil {
		t.Errorf("expected nil ending balance without balance rows, got %v", *feb.EndingBalance)
	}
}

func TestEngine_KeyNormalizationMergesVariants(t *testing.T) {
	result := analysis.NewEngine(2025).Run([]domain.ClassifiedTransaction{
		tx("2025-01-05", -100, domain.DirectionExpense, "  office   Rent ", ""),
		tx("2025-01-06", -50, domain.DirectionExpense, "OFFICE RENT", ""),
	})

	cats := result.MajorSpending.TopExpenseCategories
	if len(cats) != 1 {
		t.Fatalf("expected 1 merged category, got %d", len(cats))
	}
	if cats[0].Name != "OFFICE RENT" {
		t.Errorf("unexpected key: %q", cats[0].Name)
	}
	if cats[0].Total != 150 || cats[0].Count != 2 {
		t.Errorf("unexpected bucket: %+v", cats[0])
	}
}

func TestEngine_FallbackKeys(t *testing.T) {
	result := analysis.NewEngine(2025).Run([]domain.ClassifiedTransaction{
		{
			Transaction: domain.Transaction{
				PostDate: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
				Amount:   -75,
				Debit:    75,
			},
			Direction: domain.DirectionExpense,
		},
	})

	cats := result.MajorSpending.TopExpenseCategories
	if len(cats) != 1 || cats[0].Name != "UNCATEGORIZED" {
		t.Fatalf("expected UNCATEGORIZED fallback, got %+v", cats)
	}
	events := result.MajorSpending.TopExpenseEvents
	if len(events) != 1 || events[0].Name != "NO EVENT" {
		t.Fatalf("expected NO EVENT fallback, got %+v", events)
	}
}

func TestEngine_TopTenLimit(t *testing.T) {
	var txs []domain.ClassifiedTransaction
	for i := 0; i < 15; i++ {
		txs = append(txs, tx("2025-01-05", -float64(10+i), domain.DirectionExpense, fmt.Sprintf("Cat %d", i), ""))
	}

	result := analysis.NewEngine(2025).Run(txs)
	cats := result.MajorSpending.TopExpenseCategories
	if len(cats) != 10 {
		t.Fatalf("expected top list capped at 10, got %d", len(cats))
	}
	// Largest total first.
	if cats[0].Name != "CAT 14" {
		t.Errorf("expected CAT 14 first, got %s", cats[0].Name)
	}
	for i := 1; i < len(cats); i++ {
		if cats[i].Total > cats[i-1].Total {
			t.Fatalf("top list not sorted descending at %d", i)
		}
	}
}

func TestEngine_YearReportScoping(t *testing.T) {
	result := analysis.NewEngine(2025).Run([]domain.ClassifiedTransaction{
		tx("2024-06-05", 500, domain.DirectionIncome, "Revenue", ""),
		tx("2025-03-10", 800, domain.DirectionIncome, "Revenue", "Gala"),
		tx("2025-03-12", -200, domain.DirectionExpense, "Rent", ""),
	})

	yr := result.YearReport
	if yr == nil {
		t.Fatal("expected a year report")
	}
	if yr.Year != 2025 {
		t.Errorf("expected year 2025, got %d", yr.Year)
	}
	if yr.Totals.Income != 800 || yr.Totals.Expense != 200 {
		t.Errorf("year totals must exclude other years: %+v", yr.Totals)
	}
	if len(yr.ByEvent.TopInflows) != 1 || yr.ByEvent.TopInflows[0].Name != "GALA" {
		t.Errorf("unexpected event inflows: %+v", yr.ByEvent.TopInflows)
	}

	// Overall totals still cover every year.
	if result.Totals.Income != 1300 {
		t.Errorf("expected overall income 1300, got %v", result.Totals.Income)
	}
}

func TestEngine_NoYearReportWithoutActivity(t *testing.T) {
	result := analysis.NewEngine(2025).Run([]domain.ClassifiedTransaction{
		tx("2023-06-05", 500, domain.DirectionIncome, "Revenue", ""),
	})
	if result.YearReport != nil {
		t.Error("expected no year report when the target year has no activity")
	}
}

func TestEngine_LargeExpenseAnomalies(t *testing.T) {
	result := analysis.NewEngine(2025).Run([]domain.ClassifiedTransaction{
		tx("2025-01-05", -100, domain.DirectionExpense, "A", ""),
		tx("2025-01-06", -900, domain.DirectionExpense, "B", ""),
		tx("2025-01-07", -300, domain.DirectionExpense, "C", ""),
		tx("2025-01-08", -700, domain.DirectionExpense, "D", ""),
	})

	var large []domain.Anomaly
	for _, a := range result.Anomalies {
		if a.Kind == domain.AnomalyLargeExpense {
			large = append(large, a)
		}
	}
	if len(large) != 3 {
		t.Fatalf("expected 3 large-expense anomalies, got %d", len(large))
	}
	if large[0].Amount != 900 || large[1].Amount != 700 || large[2].Amount != 300 {
		t.Errorf("expected descending amounts, got %v %v %v", large[0].Amount, large[1].Amount, large[2].Amount)
	}
	if large[0].Title != "Large expense: B" {
		t.Errorf("unexpected title: %q", large[0].Title)
	}
}

func TestEngine_SpendSpikeDetection(t *testing.T) {
	txs := []domain.ClassifiedTransaction{
		tx("2025-01-01", -9, domain.DirectionExpense, "Misc", ""),
		tx("2025-01-02", -9, domain.DirectionExpense, "Misc", ""),
		tx("2025-01-03", -9, domain.DirectionExpense, "Misc", ""),
		tx("2025-01-04", -9, domain.DirectionExpense, "Misc", ""),
		tx("2025-01-05", -9, domain.DirectionExpense, "Misc", ""),
		tx("2025-01-06", -500, domain.DirectionExpense, "Misc", ""),
	}

	result := analysis.NewEngine(2025).Run(txs)

	var spikes []domain.Anomaly
	for _, a := range result.Anomalies {
		if a.Kind == domain.AnomalySpendSpike {
			spikes = append(spikes, a)
		}
	}
	if len(spikes) != 1 {
		t.Fatalf("expected exactly 1 spike, got %d", len(spikes))
	}
	if spikes[0].Date != "2025-01-06" || spikes[0].Amount != 500 {
		t.Errorf("unexpected spike: %+v", spikes[0])
	}
	if _, ok := spikes[0].Details["threshold"]; !ok {
		t.Error("spike details must carry the threshold")
	}
}

// The below-threshold datasets only stay quiet under the sample
// (n-1) standard deviation; dividing by n instead would push the
// threshold down to the largest day and flag it.
func TestEngine_SpikeThresholdBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		dailies    []float64
		wantSpikes int
	}{
		{"large day below threshold", []float64{10, 10, 10, 10, 100}, 0},
		{"larger day still below", []float64{10, 10, 10, 10, 200}, 0},
		{"outlier crosses threshold", []float64{9, 9, 9, 9, 9, 500}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var txs []domain.ClassifiedTransaction
			for i, v := range tt.dailies {
				date := time.Date(2025, 1, 1+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
				txs = append(txs, tx(date, -v, domain.DirectionExpense, "Misc", ""))
			}

			result := analysis.NewEngine(2025).Run(txs)

			spikes := 0
			for _, a := range result.Anomalies {
				if a.Kind == domain.AnomalySpendSpike {
					spikes++
				}
			}
			if spikes != tt.wantSpikes {
				t.Errorf("expected %d spikes, got %d", tt.wantSpikes, spikes)
			}
		})
	}
}

func TestEngine_NoSpikesOnUniformSpending(t *testing.T) {
	txs := []domain.ClassifiedTransaction{
		tx("2025-01-01", -10, domain.DirectionExpense, "Misc", ""),
		tx("2025-01-02", -10, domain.DirectionExpense, "Misc", ""),
		tx("2025-01-03", -10, domain.DirectionExpense, "Misc", ""),
	}

	result := analysis.NewEngine(2025).Run(txs)
	for _, a := range result.Anomalies {
		if a.Kind == domain.AnomalySpendSpike {
			t.Fatalf("zero-variance spending must not spike: %+v", a)
		}
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  office   rent ", "OFFICE RENT"},
		{"Rent", "RENT"},
		{"a\tb", "A B"},
	}
	for _, tt := range tests {
		if got := analysis.NormalizeKey(tt.in); got != tt.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
