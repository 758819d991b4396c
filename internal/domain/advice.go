package domain

// Severity grades an insight.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Insight catalog identifiers. The rule engine only ever emits these.
const (
	InsightNetNegative    = "net_negative"
	InsightNetPositive    = "net_positive"
	InsightExpenseUpMoM   = "expense_up_mom"
	InsightIncomeDownMoM  = "income_down_mom"
	InsightBalanceDecline = "balance_decline"
	InsightTopSpend       = "top_spend"
	InsightSpendSpikes    = "spend_spikes"
)

// Insight is a derived, evidence-backed observation about the analysis.
type Insight struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Summary  string         `json:"summary"`
	Severity Severity       `json:"severity"`
	Evidence map[string]any `json:"evidence"`
}

// ActionItem catalog identifiers.
const (
	ActionReduceBurn          = "reduce_burn"
	ActionStabilizeIncome     = "stabilize_income"
	ActionExpenseDriverReview = "expense_driver_review"
	ActionSpikeInvestigation  = "spike_investigation"
	ActionTopVendorCheck      = "top_vendor_check"
	ActionBaselineMonitoring  = "baseline_monitoring"
)

// ActionItem is a recommended action derived from the insight list.
type ActionItem struct {
	ID             string   `json:"id"`
	Recommendation string   `json:"recommendation"`
	Priority       Severity `json:"priority"`
	ExpectedImpact string   `json:"expectedImpact"`
	Steps          []string `json:"steps"`
	SuccessMetric  string   `json:"successMetric"`
}

// OrchestratorResult is the combined output of the pipeline's three
// derivation stages.
type OrchestratorResult struct {
	Analysis *AnalysisResult `json:"analysis"`
	Insights []Insight       `json:"insights"`
	Actions  []ActionItem    `json:"actions"`
}

// StatementReport is what the analyze endpoint returns: the pipeline
// result plus row-level warnings and the parsed transaction count.
type StatementReport struct {
	ID       string          `json:"id"`
	Analysis *AnalysisResult `json:"analysis"`
	Insights []Insight       `json:"insights"`
	Actions  []ActionItem    `json:"actions"`
	Warnings []string        `json:"warnings"`
	Counts   ReportCounts    `json:"counts"`
}

// ReportCounts carries row counts for the analyze response.
type ReportCounts struct {
	Transactions int `json:"transactions"`
}
