package analytics

import (
	"sort"
	"time"

	"github.com/agentdash/agentdash/internal/models"
)

// BudgetStatus is the tier a category's spending falls into.
type BudgetStatus string

const (
	// StatusGood means spending is at or below 80% of budget.
	StatusGood BudgetStatus = "good"
	// StatusWarning means spending is between 80% and 100% of budget.
	StatusWarning BudgetStatus = "warning"
	// StatusOver means spending exceeds the budget.
	StatusOver BudgetStatus = "over"
)

// CategoryRollup is the derived monthly state for one budget category.
type CategoryRollup struct {
	Category  string       `json:"category"`
	Budgeted  float64      `json:"budgeted"`
	Spent     float64      `json:"spent"`
	Remaining float64      `json:"remaining"`
	Status    BudgetStatus `json:"status"`
}

// MonthlyRollups aggregates the expense snapshot for the given month into
// per-category roll-ups against the budgets table (category to budgeted
// amount). Categories with spending but no budget row are included with a
// zero budget, so the sum of Spent across roll-ups always equals the sum
// of all expenses in the month. Results are sorted by category name.
func MonthlyRollups(expenses []*models.Expense, year int, month time.Month, budgets map[string]float64) []CategoryRollup {
	spent := make(map[string]float64)
	for _, e := range expenses {
		if e.Date.Year() != year || e.Date.Month() != month {
			continue
		}
		spent[e.Category] += e.Amount
	}

	categories := make(map[string]struct{}, len(budgets)+len(spent))
	for cat := range budgets {
		categories[cat] = struct{}{}
	}
	for cat := range spent {
		categories[cat] = struct{}{}
	}

	rollups := make([]CategoryRollup, 0, len(categories))
	for cat := range categories {
		budgeted := budgets[cat]
		s := models.RoundAmount(spent[cat])
		rollups = append(rollups, CategoryRollup{
			Category:  cat,
			Budgeted:  budgeted,
			Spent:     s,
			Remaining: models.RoundAmount(budgeted - s),
			Status:    statusFor(s, budgeted),
		})
	}
	sort.Slice(rollups, func(i, j int) bool { return rollups[i].Category < rollups[j].Category })

	return rollups
}

func statusFor(spent, budgeted float64) BudgetStatus {
	if budgeted <= 0 {
		if spent > 0 {
			return StatusOver
		}
		return StatusGood
	}
	ratio := spent / budgeted
	switch {
	case ratio > 1:
		return StatusOver
	case ratio > 0.8:
		return StatusWarning
	default:
		return StatusGood
	}
}

// NextMonth advances one month but never past the month containing now:
// budgets only exist for months that have started.
func NextMonth(year int, month time.Month, now time.Time) (int, time.Month, bool) {
	next := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if next.After(current) {
		return year, month, false
	}
	return next.Year(), next.Month(), true
}

// PrevMonth steps one month back. Navigation into the past is unbounded.
func PrevMonth(year int, month time.Month) (int, time.Month) {
	prev := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return prev.Year(), prev.Month()
}
