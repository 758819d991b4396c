// Package orchestrator sequences the analysis, insight and action
// stages. It has no logic of its own beyond composition.
package orchestrator

import (
	"github.com/gspc/statement-insights/internal/action"
	"github.com/gspc/statement-insights/internal/analysis"
	"github.com/gspc/statement-insights/internal/domain"
	"github.com/gspc/statement-insights/internal/insight"
)

// Orchestrator wires the three derivation stages together.
type Orchestrator struct {
	engine *analysis.Engine
}

// New creates an orchestrator whose year sub-report is scoped to
// targetYear.
func New(targetYear int) *Orchestrator {
	return &Orchestrator{engine: analysis.NewEngine(targetYear)}
}

// Run executes analyze → derive insights → derive actions over an
// already-ingested transaction sequence.
func (o *Orchestrator) Run(transactions []domain.ClassifiedTransaction) *domain.OrchestratorResult {
	a := o.engine.Run(transactions)
	insights := insight.Derive(a)
	actions := action.Derive(a, insights)
	return &domain.OrchestratorResult{
		Analysis: a,
		Insights: insights,
		Actions:  actions,
	}
}
