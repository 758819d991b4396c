// Package insight derives human-readable insights from an
// AnalysisResult. The catalog is a fixed, ordered table of independent
// rules; each rule sees the same snapshot and appends zero or one
// insight. The engine is total: it never fails, and the net-sign rule
// guarantees at least one insight.
package insight

import (
	"github.com/gspc/statement-insights/internal/domain"
)

// Rule evaluates one catalog entry against the analysis snapshot.
// A nil return means the rule did not fire.
type Rule func(a *domain.AnalysisResult) *domain.Insight

// momThreshold is the month-over-month change that triggers the
// expense-up and income-down rules.
const momThreshold = 0.2

// catalog is evaluated in order; rules never see each other's output.
var catalog = []Rule{
	netSign,
	expenseUpMoM,
	incomeDownMoM,
	balanceDecline,
	topSpendConcentration,
	spendSpikes,
}

// Derive runs the full rule catalog and returns the ordered insights.
func Derive(a *domain.AnalysisResult) []domain.Insight {
	insights := []domain.Insight{}
	for _, rule := range catalog {
		if ins := rule(a); ins != nil {
			insights = append(insights, *ins)
		}
	}
	return insights
}

// pctChange is (next-prev)/|prev|. A zero-to-zero change is 0; a
// zero-to-nonzero change counts as a full swing carrying the sign of
// the new value.
func pctChange(prev, next float64) float64 {
	if prev == 0 {
		switch {
		case next == 0:
			return 0
		case next > 0:
			return 1
		default:
			return -1
		}
	}
	d := prev
	if d < 0 {
		d = -d
	}
	return (next - prev) / d
}

func netSign(a *domain.AnalysisResult) *domain.Insight {
	evidence := map[string]any{
		"income":  a.Totals.Income,
		"expense": a.Totals.Expense,
		"net":     a.Totals.Net,
	}
	if a.Totals.Net < 0 {
		return &domain.Insight{
			ID:       domain.InsightNetNegative,
			Title:    "Net cashflow is negative",
			Summary:  "Total expenses exceed total income over the selected period. This can indicate cash burn or a timing mismatch between inflows and outflows.",
			Severity: domain.SeverityHigh,
			Evidence: evidence,
		}
	}
	return &domain.Insight{
		ID:       domain.InsightNetPositive,
		Title:    "Net cashflow is positive",
		Summary:  "Total income exceeds total expenses over the selected period. This is generally healthy; watch for volatility and concentration risks.",
		Severity: domain.SeverityLow,
		Evidence: evidence,
	}
}

func lastTwo(a *domain.AnalysisResult) (prev, last *domain.MonthlyPoint) {
	n := len(a.Monthly)
	if n < 2 {
		return nil, nil
	}
	return &a.Monthly[n-2], &a.Monthly[n-1]
}

func expenseUpMoM(a *domain.AnalysisResult) *domain.Insight {
	prev, last := lastTwo(a)
	if prev == nil {
		return nil
	}
	chg := pctChange(prev.Expense, last.Expense)
	if chg < momThreshold {
		return nil
	}
	return &domain.Insight{
		ID:       domain.InsightExpenseUpMoM,
		Title:    "Expenses increased month-over-month",
		Summary:  "Expenses increased significantly compared to the prior month. Review the drivers to ensure the increase is expected.",
		Severity: domain.SeverityMedium,
		Evidence: map[string]any{
			"previousMonth":   prev.Month,
			"previousExpense": prev.Expense,
			"currentMonth":    last.Month,
			"currentExpense":  last.Expense,
			"changePct":       chg,
		},
	}
}

func incomeDownMoM(a *domain.AnalysisResult) *domain.Insight {
	prev, last := lastTwo(a)
	if prev == nil {
		return nil
	}
	chg := pctChange(prev.Income, last.Income)
	if chg > -momThreshold {
		return nil
	}
	return &domain.Insight{
		ID:       domain.InsightIncomeDownMoM,
		Title:    "Income decreased month-over-month",
		Summary:  "Income dropped significantly compared to the prior month. If this is not seasonal, verify collections, invoicing, or revenue pipeline.",
		Severity: domain.SeverityMedium,
		Evidence: map[string]any{
			"previousMonth":  prev.Month,
			"previousIncome": prev.Income,
			"currentMonth":   last.Month,
			"currentIncome":  last.Income,
			"changePct":      chg,
		},
	}
}

func balanceDecline(a *domain.AnalysisResult) *domain.Insight {
	prev, last := lastTwo(a)
	if prev == nil || prev.EndingBalance == nil || last.EndingBalance == nil {
		return nil
	}
	if *last.EndingBalance >= *prev.EndingBalance {
		return nil
	}
	return &domain.Insight{
		ID:       domain.InsightBalanceDecline,
		Title:    "Ending balance declined",
		Summary:  "The account ending balance decreased compared to the prior month. Monitor runway and upcoming obligations.",
		Severity: domain.SeverityMedium,
		Evidence: map[string]any{
			"previousMonth":         prev.Month,
			"previousEndingBalance": *prev.EndingBalance,
			"currentMonth":          last.Month,
			"currentEndingBalance":  *last.EndingBalance,
		},
	}
}

func topSpendConcentration(a *domain.AnalysisResult) *domain.Insight {
	if len(a.MajorSpending.TopExpenseCategories) == 0 {
		return nil
	}
	top := a.MajorSpending.TopExpenseCategories[0]
	return &domain.Insight{
		ID:       domain.InsightTopSpend,
		Title:    "Major spending concentration",
		Summary:  "One spending category accounts for a notable share of total expenses. Confirm it is expected and properly categorized.",
		Severity: domain.SeverityLow,
		Evidence: map[string]any{
			"topExpenseCategory": top.Name,
			"topExpenseTotal":    top.Total,
			"topExpenseCount":    top.Count,
			"totalExpense":       a.Totals.Expense,
		},
	}
}

func spendSpikes(a *domain.AnalysisResult) *domain.Insight {
	spikes := []domain.Anomaly{}
	for _, an := range a.Anomalies {
		if an.Kind == domain.AnomalySpendSpike {
			spikes = append(spikes, an)
			if len(spikes) == 5 {
				break
			}
		}
	}
	if len(spikes) == 0 {
		return nil
	}
	return &domain.Insight{
		ID:       domain.InsightSpendSpikes,
		Title:    "Spend spikes detected",
		Summary:  "One or more days had unusually high spending compared to the typical daily level. Validate if these are one-offs or recurring.",
		Severity: domain.SeverityMedium,
		Evidence: map[string]any{
			"spikes": spikes,
		},
	}
}
