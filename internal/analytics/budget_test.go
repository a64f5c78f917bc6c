package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/agentdash/agentdash/internal/models"
)

func expense(category string, amount float64, date time.Time) *models.Expense {
	return &models.Expense{Category: category, Amount: amount, Date: date}
}

func rollupFor(t *testing.T, rollups []CategoryRollup, category string) CategoryRollup {
	t.Helper()
	for _, r := range rollups {
		if r.Category == category {
			return r
		}
	}
	t.Fatalf("No rollup for category %q", category)
	return CategoryRollup{}
}

func TestMonthlyRollups(t *testing.T) {
	budgets := map[string]float64{
		"Food":      600,
		"Transport": 200,
	}
	aug := day(t, "2026-08-15")

	t.Run("overspent category", func(t *testing.T) {
		expenses := []*models.Expense{
			expense("Food", 400, aug),
			expense("Food", 210, aug.AddDate(0, 0, 2)),
		}

		rollups := MonthlyRollups(expenses, 2026, time.August, budgets)
		food := rollupFor(t, rollups, "Food")
		if math.Abs(food.Spent-610) > 0.01 {
			t.Errorf("Spent = %f, want 610", food.Spent)
		}
		if math.Abs(food.Remaining-(-10)) > 0.01 {
			t.Errorf("Remaining = %f, want -10", food.Remaining)
		}
		if food.Status != StatusOver {
			t.Errorf("Status = %s, want %s", food.Status, StatusOver)
		}
	})

	t.Run("status tiers", func(t *testing.T) {
		tests := []struct {
			name  string
			spent float64
			want  BudgetStatus
		}{
			{"well under budget", 100, StatusGood},
			{"exactly 80 percent", 480, StatusGood},
			{"just past 80 percent", 481, StatusWarning},
			{"exactly at budget", 600, StatusWarning},
			{"over budget", 601, StatusOver},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rollups := MonthlyRollups([]*models.Expense{expense("Food", tt.spent, aug)}, 2026, time.August, budgets)
				got := rollupFor(t, rollups, "Food").Status
				if got != tt.want {
					t.Errorf("Status for spent=%f: got %s, want %s", tt.spent, got, tt.want)
				}
			})
		}
	})

	t.Run("unbudgeted category is included", func(t *testing.T) {
		expenses := []*models.Expense{expense("Gifts", 50, aug)}

		rollups := MonthlyRollups(expenses, 2026, time.August, budgets)
		gifts := rollupFor(t, rollups, "Gifts")
		if gifts.Budgeted != 0 {
			t.Errorf("Budgeted = %f, want 0", gifts.Budgeted)
		}
		if gifts.Status != StatusOver {
			t.Errorf("Status = %s, want %s", gifts.Status, StatusOver)
		}
	})

	t.Run("untouched budget category appears with zero spend", func(t *testing.T) {
		rollups := MonthlyRollups(nil, 2026, time.August, budgets)
		transport := rollupFor(t, rollups, "Transport")
		if transport.Spent != 0 {
			t.Errorf("Spent = %f, want 0", transport.Spent)
		}
		if transport.Status != StatusGood {
			t.Errorf("Status = %s, want %s", transport.Status, StatusGood)
		}
	})

	t.Run("other months are excluded", func(t *testing.T) {
		expenses := []*models.Expense{
			expense("Food", 100, aug),
			expense("Food", 999, day(t, "2026-07-15")),
			expense("Food", 999, day(t, "2025-08-15")),
		}

		rollups := MonthlyRollups(expenses, 2026, time.August, budgets)
		food := rollupFor(t, rollups, "Food")
		if math.Abs(food.Spent-100) > 0.01 {
			t.Errorf("Spent = %f, want 100", food.Spent)
		}
	})

	t.Run("total spent equals sum of month expenses", func(t *testing.T) {
		expenses := []*models.Expense{
			expense("Food", 123.45, aug),
			expense("Transport", 67.89, aug),
			expense("Gifts", 10.10, aug),
		}

		rollups := MonthlyRollups(expenses, 2026, time.August, budgets)
		var total float64
		for _, r := range rollups {
			total += r.Spent
		}
		if math.Abs(total-201.44) > 0.01 {
			t.Errorf("Total spent = %f, want 201.44", total)
		}
	})

	t.Run("sorted by category name", func(t *testing.T) {
		expenses := []*models.Expense{
			expense("Zoo", 10, aug),
			expense("Art", 10, aug),
		}

		rollups := MonthlyRollups(expenses, 2026, time.August, budgets)
		for i := 1; i < len(rollups); i++ {
			if rollups[i-1].Category > rollups[i].Category {
				t.Errorf("Rollups not sorted: %s before %s", rollups[i-1].Category, rollups[i].Category)
			}
		}
	})
}

func TestMonthNavigation(t *testing.T) {
	now := day(t, "2026-08-15")

	t.Run("NextMonth advances within the past", func(t *testing.T) {
		year, month, ok := NextMonth(2026, time.June, now)
		if !ok || year != 2026 || month != time.July {
			t.Errorf("NextMonth = %d-%s ok=%v, want 2026-July ok=true", year, month, ok)
		}
	})

	t.Run("NextMonth stops at the current month", func(t *testing.T) {
		year, month, ok := NextMonth(2026, time.August, now)
		if ok || year != 2026 || month != time.August {
			t.Errorf("NextMonth = %d-%s ok=%v, want 2026-August ok=false", year, month, ok)
		}
	})

	t.Run("NextMonth crosses the year boundary", func(t *testing.T) {
		year, month, ok := NextMonth(2025, time.December, now)
		if !ok || year != 2026 || month != time.January {
			t.Errorf("NextMonth = %d-%s ok=%v, want 2026-January ok=true", year, month, ok)
		}
	})

	t.Run("PrevMonth crosses the year boundary", func(t *testing.T) {
		year, month := PrevMonth(2026, time.January)
		if year != 2025 || month != time.December {
			t.Errorf("PrevMonth = %d-%s, want 2025-December", year, month)
		}
	})
}
