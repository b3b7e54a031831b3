package planner

import (
	"context"

	"alcyxob/microcycle/internal/completion"
	"alcyxob/microcycle/internal/domain"
)

// Strategy produces the day-by-day skeleton for one planning run.
type Strategy interface {
	Name() string
	Plan(ctx context.Context, pctx domain.PlanningContext) (domain.AbstractPlan, error)
}

// Config carries the limits both strategies must honor and the model the
// generative one should use.
type Config struct {
	Model          string
	MaxConsecutive int
	TaperWindow    float64
}

// Select picks the strategy for a single planning run. Availability is
// evaluated at call time and never cached, so an API key added or revoked
// between runs changes the next selection.
func Select(client *completion.Client, cfg Config) Strategy {
	if client.IsAvailable() {
		return NewGenerative(client, cfg)
	}
	return NewDeterministic(cfg)
}
