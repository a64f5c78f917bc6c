package service

import (
	"context"
	"log/slog"

	"github.com/agentdash/agentdash/internal/collection"
	"github.com/agentdash/agentdash/internal/models"
)

// GoalService is the financial-goals feature module.
type GoalService struct {
	goals  *collection.Collection[*models.FinancialGoal]
	logger *slog.Logger
}

// NewGoalService wires the service to its collection.
func NewGoalService(goals *collection.Collection[*models.FinancialGoal], logger *slog.Logger) *GoalService {
	return &GoalService{goals: goals, logger: logger}
}

// Goals returns the current goal snapshot.
func (s *GoalService) Goals() []*models.FinancialGoal {
	return s.goals.List()
}

// UsingFallback reports whether the module is working offline.
func (s *GoalService) UsingFallback() bool {
	return s.goals.UsingFallback()
}

// AddGoal inserts a new goal with amounts rounded to cents and the
// current amount clamped to [0, target].
func (s *GoalService) AddGoal(ctx context.Context, g *models.FinancialGoal) (*models.FinancialGoal, error) {
	g = g.Clone()
	g.Target = models.RoundAmount(g.Target)
	g.Increment = models.RoundAmount(g.Increment)
	g.Current = clampAmount(models.RoundAmount(g.Current), g.Target)
	return s.goals.Insert(ctx, g)
}

// UpdateGoal applies patch to a goal, re-clamping the current amount
// against the possibly-changed target.
func (s *GoalService) UpdateGoal(ctx context.Context, id string, patch func(*models.FinancialGoal)) (*models.FinancialGoal, error) {
	return s.goals.Update(ctx, id, func(g *models.FinancialGoal) {
		patch(g)
		g.Target = models.RoundAmount(g.Target)
		g.Current = clampAmount(models.RoundAmount(g.Current), g.Target)
	})
}

// RemoveGoal deletes a goal.
func (s *GoalService) RemoveGoal(ctx context.Context, id string) error {
	return s.goals.Remove(ctx, id)
}

// Increment moves the goal's current amount by delta (negative to
// subtract), clamped to [0, target] on every call.
func (s *GoalService) Increment(ctx context.Context, id string, delta float64) (*models.FinancialGoal, error) {
	return s.goals.Update(ctx, id, func(g *models.FinancialGoal) {
		g.Current = clampAmount(models.RoundAmount(g.Current+delta), g.Target)
	})
}

func clampAmount(v, max float64) float64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
