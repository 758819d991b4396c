// Package action turns the analysis and its insights into recommended
// actions. Triggering is presence-of-insight-id, not a re-evaluation of
// the raw numbers; all texts are fixed catalog entries except the
// top-vendor action, which interpolates the leading category name.
package action

import (
	"github.com/gspc/statement-insights/internal/domain"
)

// Rule evaluates one catalog entry. A nil return means no action.
type Rule func(a *domain.AnalysisResult, has func(id string) bool) *domain.ActionItem

var catalog = []Rule{
	reduceBurn,
	stabilizeIncome,
	expenseDriverReview,
	spikeInvestigation,
	topVendorCheck,
}

// Derive runs the catalog in order and appends the baseline-monitoring
// fallback when nothing else fired, so the list is never empty.
func Derive(a *domain.AnalysisResult, insights []domain.Insight) []domain.ActionItem {
	present := make(map[string]bool, len(insights))
	for _, ins := range insights {
		present[ins.ID] = true
	}
	has := func(id string) bool { return present[id] }

	actions := []domain.ActionItem{}
	for _, rule := range catalog {
		if act := rule(a, has); act != nil {
			actions = append(actions, *act)
		}
	}

	if len(actions) == 0 {
		actions = append(actions, domain.ActionItem{
			ID:             domain.ActionBaselineMonitoring,
			Recommendation: "Set a baseline and monitor key metrics monthly",
			Priority:       domain.SeverityLow,
			ExpectedImpact: "Early detection of changes in income, expenses, and balance.",
			Steps: []string{
				"Track monthly income, expense, and ending balance.",
				"Review top spending categories monthly.",
				"Flag anomalies for review.",
			},
			SuccessMetric: "Monthly review process established and maintained.",
		})
	}

	return actions
}

func reduceBurn(_ *domain.AnalysisResult, has func(string) bool) *domain.ActionItem {
	if !has(domain.InsightNetNegative) {
		return nil
	}
	return &domain.ActionItem{
		ID:             domain.ActionReduceBurn,
		Recommendation: "Reduce cash burn by reviewing top expense drivers",
		Priority:       domain.SeverityHigh,
		ExpectedImpact: "Lower monthly expenses and improve net cashflow.",
		Steps: []string{
			"Review the top 10 expense categories by total spend.",
			"Identify non-essential or deferrable expenses.",
			"Set weekly spending limits and alerts for large transactions.",
		},
		SuccessMetric: "Month-over-month expense reduction and net cashflow >= 0.",
	}
}

func stabilizeIncome(_ *domain.AnalysisResult, has func(string) bool) *domain.ActionItem {
	if !has(domain.InsightIncomeDownMoM) {
		return nil
	}
	return &domain.ActionItem{
		ID:             domain.ActionStabilizeIncome,
		Recommendation: "Investigate income drop and stabilize collections",
		Priority:       domain.SeverityHigh,
		ExpectedImpact: "Increase inflows and reduce revenue volatility.",
		Steps: []string{
			"Check whether large expected deposits are missing or delayed.",
			"Review recent invoices/receivables and follow up on overdue items.",
			"Validate that payment processors and bank feeds are operating correctly.",
		},
		SuccessMetric: "Income returns to typical monthly baseline within 1-2 cycles.",
	}
}

func expenseDriverReview(_ *domain.AnalysisResult, has func(string) bool) *domain.ActionItem {
	if !has(domain.InsightExpenseUpMoM) {
		return nil
	}
	return &domain.ActionItem{
		ID:             domain.ActionExpenseDriverReview,
		Recommendation: "Pinpoint month-over-month expense increase drivers",
		Priority:       domain.SeverityMedium,
		ExpectedImpact: "Prevent sustained cost increases from becoming permanent.",
		Steps: []string{
			"Compare last month vs previous month top expense categories.",
			"Confirm if increases are planned (e.g., payroll, rent, annual renewals).",
			"Renegotiate or seek alternatives for recurring vendor costs where possible.",
		},
		SuccessMetric: "Expense growth rate returns to normal range (<10% MoM unless planned).",
	}
}

func spikeInvestigation(_ *domain.AnalysisResult, has func(string) bool) *domain.ActionItem {
	if !has(domain.InsightSpendSpikes) {
		return nil
	}
	return &domain.ActionItem{
		ID:             domain.ActionSpikeInvestigation,
		Recommendation: "Investigate days with unusually high spending",
		Priority:       domain.SeverityMedium,
		ExpectedImpact: "Detect fraud, one-time events, or miscategorized transactions.",
		Steps: []string{
			"Review the spike dates and the transactions on those days.",
			"Confirm vendor legitimacy and whether spend is expected.",
			"If recurring, budget explicitly and monitor going forward.",
		},
		SuccessMetric: "No unrecognized spikes; recurring spikes are planned/budgeted.",
	}
}

// topVendorCheck is data-driven: it fires on the breakdown itself,
// independent of any insight.
func topVendorCheck(a *domain.AnalysisResult, _ func(string) bool) *domain.ActionItem {
	if len(a.MajorSpending.TopExpenseCategories) == 0 {
		return nil
	}
	top := a.MajorSpending.TopExpenseCategories[0]
	return &domain.ActionItem{
		ID:             domain.ActionTopVendorCheck,
		Recommendation: "Validate and optimize major spend: " + top.Name,
		Priority:       domain.SeverityLow,
		ExpectedImpact: "Improve cost efficiency for the largest spending area.",
		Steps: []string{
			"Confirm this spend category is correctly labeled and expected.",
			"Check for duplicates, avoidable fees, or opportunities to consolidate vendors.",
			"Set an alert threshold for single transactions exceeding a chosen limit.",
		},
		SuccessMetric: "Reduced unit cost or fewer large unplanned transactions.",
	}
}
