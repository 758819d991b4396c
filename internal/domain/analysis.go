package domain

// Totals aggregates absolute income, absolute expense and their difference.
type Totals struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

// MonthlyPoint is one bucket of the monthly time series.
// Month uses the YYYY-MM form. EndingBalance is the balance of the
// chronologically latest balance-bearing transaction in the month,
// nil when no transaction in the bucket carried a balance.
type MonthlyPoint struct {
	Month         string   `json:"month"`
	Income        float64  `json:"income"`
	Expense       float64  `json:"expense"`
	Net           float64  `json:"net"`
	EndingBalance *float64 `json:"endingBalance,omitempty"`
}

// SpendItem is one entry of a top-N breakdown, keyed by normalized name.
type SpendItem struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// AnomalyKind enumerates the anomaly detectors.
type AnomalyKind string

const (
	AnomalyLargeExpense AnomalyKind = "large_expense"
	AnomalySpendSpike   AnomalyKind = "spend_spike"
)

// Anomaly is one flagged entry of the combined anomaly list.
type Anomaly struct {
	Kind    AnomalyKind    `json:"kind"`
	Title   string         `json:"title"`
	Date    string         `json:"date,omitempty"`
	Amount  float64        `json:"amount,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// FlowBreakdown splits a top-N breakdown by cash-flow direction.
type FlowBreakdown struct {
	TopInflows  []SpendItem `json:"topInflows"`
	TopOutflows []SpendItem `json:"topOutflows"`
}

// YearReport is the year-scoped sub-report. It is emitted only when at
// least one transaction falls in the target year; callers distinguish
// "no activity" (nil) from zero-valued totals.
type YearReport struct {
	Year       int           `json:"year"`
	ByCategory FlowBreakdown `json:"byCategory"`
	ByEvent    FlowBreakdown `json:"byEvent"`
	Totals     Totals        `json:"totals"`
}

// MajorSpending holds the overall expense-only top-10 breakdowns.
type MajorSpending struct {
	TopExpenseCategories []SpendItem `json:"topExpenseCategories"`
	TopExpenseEvents     []SpendItem `json:"topExpenseEvents"`
}

// AnalysisResult is the immutable snapshot produced by the analysis
// engine. It is created once per run and never mutated afterward.
type AnalysisResult struct {
	Totals        Totals         `json:"totals"`
	Monthly       []MonthlyPoint `json:"monthly"`
	MajorSpending MajorSpending  `json:"majorSpending"`
	YearReport    *YearReport    `json:"yearReport,omitempty"`
	Anomalies     []Anomaly      `json:"anomalies"`
}
