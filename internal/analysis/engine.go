// Package analysis derives the AnalysisResult snapshot from a
// chronologically sorted transaction sequence. The engine is a pure
// function of its input: no clock, no randomness, and re-running over
// identical input produces identical output.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/gspc/statement-insights/internal/domain"
)

const topN = 10

// Engine aggregates classified transactions into an AnalysisResult.
type Engine struct {
	// TargetYear scopes the year sub-report (inflow/outflow breakdowns
	// and totals restricted to one calendar year).
	TargetYear int
}

// NewEngine creates an analysis engine scoped to the given year.
func NewEngine(targetYear int) *Engine {
	return &Engine{TargetYear: targetYear}
}

// Run performs the single-pass aggregation plus bounded post-processing.
// Input must be sorted ascending by post date; the monthly ending
// balance tracking relies on it.
func (e *Engine) Run(transactions []domain.ClassifiedTransaction) *domain.AnalysisResult {
	var (
		income, expense         float64
		yearIncome, yearExpense float64
		yearCount               int
	)

	monthMeta := make(map[string]*monthBucket)

	expenseByCategory := newAccumulator()
	expenseByEvent := newAccumulator()
	yearInflowByCategory := newAccumulator()
	yearOutflowByCategory := newAccumulator()
	yearInflowByEvent := newAccumulator()
	yearOutflowByEvent := newAccumulator()
	dailyExpense := newAccumulator()

	for _, t := range transactions {
		amt := math.Abs(t.Amount)

		switch t.Direction {
		case domain.DirectionIncome:
			income += amt
		case domain.DirectionExpense:
			expense += amt
		}

		if t.PostDate.Year() == e.TargetYear {
			yearCount++
			catKey := NormalizeKey(fallback(t.Category, t.Description, "UNCATEGORIZED"))
			evtKey := NormalizeKey(fallback(t.Event, "", "NO EVENT"))
			switch t.Direction {
			case domain.DirectionIncome:
				yearIncome += amt
				yearInflowByCategory.add(catKey, amt)
				yearInflowByEvent.add(evtKey, amt)
			case domain.DirectionExpense:
				yearExpense += amt
				yearOutflowByCategory.add(catKey, amt)
				yearOutflowByEvent.add(evtKey, amt)
			}
		}

		mk := t.PostDate.Format("2006-01")
		mb, ok := monthMeta[mk]
		if !ok {
			mb = &monthBucket{}
			monthMeta[mk] = mb
		}
		switch t.Direction {
		case domain.DirectionIncome:
			mb.income += amt
		case domain.DirectionExpense:
			mb.expense += amt
		}
		if t.Balance != nil {
			ts := t.PostDate.Unix()
			// Input is sorted ascending, so the last one wins.
			if !mb.hasBalance || ts >= mb.lastTs {
				b := *t.Balance
				mb.ending = &b
				mb.lastTs = ts
				mb.hasBalance = true
			}
		}

		if t.Direction == domain.DirectionExpense {
			expenseByCategory.add(NormalizeKey(fallback(t.Category, t.Description, "UNCATEGORIZED")), amt)
			expenseByEvent.add(NormalizeKey(fallback(t.Event, "", "NO EVENT")), amt)
			dailyExpense.add(t.PostDate.Format("2006-01-02"), amt)
		}
	}

	monthKeys := make([]string, 0, len(monthMeta))
	for mk := range monthMeta {
		monthKeys = append(monthKeys, mk)
	}
	sort.Strings(monthKeys)
	monthly := make([]domain.MonthlyPoint, 0, len(monthKeys))
	for _, mk := range monthKeys {
		mb := monthMeta[mk]
		monthly = append(monthly, domain.MonthlyPoint{
			Month:         mk,
			Income:        mb.income,
			Expense:       mb.expense,
			Net:           mb.income - mb.expense,
			EndingBalance: mb.ending,
		})
	}

	anomalies := e.detectAnomalies(transactions, dailyExpense)

	result := &domain.AnalysisResult{
		Totals: domain.Totals{Income: income, Expense: expense, Net: income - expense},
		Monthly: monthly,
		MajorSpending: domain.MajorSpending{
			TopExpenseCategories: expenseByCategory.top(topN),
			TopExpenseEvents:     expenseByEvent.top(topN),
		},
		Anomalies: anomalies,
	}

	if yearCount > 0 {
		result.YearReport = &domain.YearReport{
			Year: e.TargetYear,
			ByCategory: domain.FlowBreakdown{
				TopInflows:  yearInflowByCategory.top(topN),
				TopOutflows: yearOutflowByCategory.top(topN),
			},
			ByEvent: domain.FlowBreakdown{
				TopInflows:  yearInflowByEvent.top(topN),
				TopOutflows: yearOutflowByEvent.top(topN),
			},
			Totals: domain.Totals{
				Income:  yearIncome,
				Expense: yearExpense,
				Net:     yearIncome - yearExpense,
			},
		}
	}

	return result
}

type monthBucket struct {
	income     float64
	expense    float64
	ending     *float64
	lastTs     int64
	hasBalance bool
}

// detectAnomalies runs the two independent detectors: the three largest
// absolute expenses, and spend-spike days at mean + 2*sample-stdev of
// the per-day expense totals.
func (e *Engine) detectAnomalies(transactions []domain.ClassifiedTransaction, dailyExpense *accumulator) []domain.Anomaly {
	anomalies := []domain.Anomaly{}

	expenses := make([]domain.ClassifiedTransaction, 0, len(transactions))
	for _, t := range transactions {
		if t.Direction == domain.DirectionExpense {
			expenses = append(expenses, t)
		}
	}
	sort.SliceStable(expenses, func(a, b int) bool {
		return math.Abs(expenses[a].Amount) > math.Abs(expenses[b].Amount)
	})
	for i := 0; i < len(expenses) && i < 3; i++ {
		t := expenses[i]
		key := NormalizeKey(fallback(t.Category, t.Description, "UNCATEGORIZED"))
		anomalies = append(anomalies, domain.Anomaly{
			Kind:   domain.AnomalyLargeExpense,
			Title:  "Large expense: " + key,
			Date:   t.PostDate.Format("2006-01-02"),
			Amount: math.Abs(t.Amount),
			Details: map[string]any{
				"category":       t.Category,
				"classification": t.Classification,
			},
		})
	}

	totals := dailyExpense.totals()
	mu := mean(totals)
	sd := sampleStdev(totals)
	threshold := mu + 2*sd
	if sd > 0 {
		for _, day := range dailyExpense.orderedKeys() {
			v := dailyExpense.total(day)
			if v >= threshold {
				anomalies = append(anomalies, domain.Anomaly{
					Kind:   domain.AnomalySpendSpike,
					Title:  fmt.Sprintf("Spend spike on %s", day),
					Date:   day,
					Amount: v,
					Details: map[string]any{
						"mean":      mu,
						"stdev":     sd,
						"threshold": threshold,
					},
				})
			}
		}
	}

	return anomalies
}

func fallback(primary, secondary, sentinel string) string {
	if primary != "" {
		return primary
	}
	if secondary != "" {
		return secondary
	}
	return sentinel
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStdev is Bessel-corrected (n-1) and defined as 0 for fewer than
// two samples, so a zero-variance dataset never produces spikes.
func sampleStdev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mu := mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - mu
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}
