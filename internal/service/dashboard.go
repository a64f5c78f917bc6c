package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/agentdash/agentdash/internal/collection"
	"github.com/agentdash/agentdash/internal/metrics"
	"github.com/agentdash/agentdash/internal/models"
	"github.com/agentdash/agentdash/internal/storage"
	"github.com/agentdash/agentdash/internal/storage/sqlite"
)

// Dashboard is the composition root for one owner's feature modules. It
// opens every collection exactly once and injects them into the services;
// nothing reaches for a shared singleton.
type Dashboard struct {
	Habits   *HabitService
	Finance  *FinanceService
	Projects *ProjectService
	Goals    *GoalService

	closers []interface{ Close() }
}

// DashboardConfig carries the dependencies for OpenDashboard.
type DashboardConfig struct {
	// OwnerID is the signed-in user ID, empty when anonymous.
	OwnerID string

	// Store is the SQLite record store; nil runs everything on the
	// seeded fallback.
	Store *sqlite.Store

	// Budgets is the category budget table; nil uses DefaultBudgets.
	Budgets map[string]float64

	Logger  *slog.Logger
	Metrics *metrics.Collections
}

// OpenDashboard binds every dashboard collection for cfg.OwnerID and
// wires the feature services. Each collection decides independently at
// open whether it reaches the remote store or falls back; with no owner
// or no store they all run on the demo seed.
func OpenDashboard(ctx context.Context, cfg DashboardConfig) *Dashboard {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	habits := openCollection(ctx, cfg, collection.Config[*models.Habit]{
		Table: storage.TableHabits,
		Seed:  seedHabits(),
		Less: func(a, b *models.Habit) bool {
			return a.CreatedAt < b.CreatedAt
		},
	})
	entries := openCollection(ctx, cfg, collection.Config[*models.HabitEntry]{
		Table: storage.TableHabitEntries,
		Less: func(a, b *models.HabitEntry) bool {
			return a.EntryDate.Before(b.EntryDate)
		},
	})
	expenses := openCollection(ctx, cfg, collection.Config[*models.Expense]{
		Table: storage.TableExpenses,
		Seed:  seedExpenses(),
		Less: func(a, b *models.Expense) bool {
			return a.Date.After(b.Date) // newest first
		},
	})
	payments := openCollection(ctx, cfg, collection.Config[*models.Payment]{
		Table: storage.TablePayments,
		Seed:  seedPayments(),
		Less: func(a, b *models.Payment) bool {
			return a.DueDate.Before(b.DueDate)
		},
	})
	projects := openCollection(ctx, cfg, collection.Config[*models.Project]{
		Table: storage.TableProjects,
		Seed:  seedProjects(),
		Less: func(a, b *models.Project) bool {
			return a.CreatedAt < b.CreatedAt
		},
	})
	tasks := openCollection(ctx, cfg, collection.Config[*models.ProjectTask]{
		Table: storage.TableProjectTasks,
		Seed:  seedTasks(),
		Less: func(a, b *models.ProjectTask) bool {
			return a.CreatedAt < b.CreatedAt
		},
	})
	goals := openCollection(ctx, cfg, collection.Config[*models.FinancialGoal]{
		Table: storage.TableFinancialGoals,
		Seed:  seedGoals(),
		Less: func(a, b *models.FinancialGoal) bool {
			return a.CreatedAt < b.CreatedAt
		},
	})

	d := &Dashboard{
		Habits:   NewHabitService(habits, entries, logger),
		Finance:  NewFinanceService(expenses, payments, cfg.Budgets, logger),
		Projects: NewProjectService(projects, tasks, logger),
		Goals:    NewGoalService(goals, logger),
	}
	d.closers = []interface{ Close() }{
		habits, entries, expenses, payments, projects, tasks, goals,
	}
	return d
}

// UsingFallback reports whether the dashboard is working offline. All
// collections share one store and owner, so probing one is enough.
func (d *Dashboard) UsingFallback() bool {
	return d.Habits.UsingFallback()
}

// Close shuts down every collection worker.
func (d *Dashboard) Close() {
	for _, c := range d.closers {
		c.Close()
	}
}

func openCollection[T collection.Record[T]](ctx context.Context, cfg DashboardConfig, c collection.Config[T]) *collection.Collection[T] {
	if cfg.Store != nil {
		c.Remote = sqlite.NewTable[T](cfg.Store, c.Table)
	}
	c.Logger = cfg.Logger
	c.Metrics = cfg.Metrics
	return collection.Open(ctx, cfg.OwnerID, c)
}

// --- demo seed used in fallback mode ---

func seedHabits() []*models.Habit {
	return []*models.Habit{
		{ID: "seed-habit-water", Name: "Drink water", Category: "Health",
			Frequency: models.FrequencyDaily, Target: 8, Color: "#38bdf8", Icon: "droplet"},
		{ID: "seed-habit-run", Name: "Go for a run", Category: "Fitness",
			Frequency: models.FrequencyWeekly, Target: 3, Color: "#34d399", Icon: "bolt"},
		{ID: "seed-habit-books", Name: "Finish a book", Category: "Learning",
			Frequency: models.FrequencyMonthly, Target: 1, Color: "#a78bfa", Icon: "book"},
	}
}

func seedExpenses() []*models.Expense {
	now := time.Now()
	return []*models.Expense{
		{ID: "seed-expense-groceries", Category: "Food", Amount: 84.20,
			Description: "Groceries", Date: now.AddDate(0, 0, -3)},
		{ID: "seed-expense-fuel", Category: "Transport", Amount: 42.50,
			Description: "Fuel", Date: now.AddDate(0, 0, -1)},
	}
}

func seedPayments() []*models.Payment {
	now := time.Now()
	return []*models.Payment{
		{ID: "seed-payment-rent", Title: "Rent", Amount: 1500, Category: "Housing",
			DueDate: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local), Recurring: true},
		{ID: "seed-payment-internet", Title: "Internet", Amount: 49.99, Category: "Utilities",
			DueDate: time.Date(now.Year(), now.Month(), 15, 0, 0, 0, 0, time.Local), Recurring: true},
	}
}

func seedProjects() []*models.Project {
	return []*models.Project{
		{ID: "seed-project-site", Name: "Portfolio redesign", Status: models.ProjectActive,
			Progress: 40, StartDate: time.Now().AddDate(0, -1, 0),
			Team: []string{"Me"}, Color: "#f472b6"},
	}
}

func seedTasks() []*models.ProjectTask {
	return []*models.ProjectTask{
		{ID: "seed-task-hero", ProjectID: "seed-project-site", Title: "New hero section",
			Status: models.TaskInProgress, Priority: models.PriorityHigh},
		{ID: "seed-task-copy", ProjectID: "seed-project-site", Title: "Rewrite about page",
			Status: models.TaskTodo, Priority: models.PriorityMedium},
	}
}

func seedGoals() []*models.FinancialGoal {
	return []*models.FinancialGoal{
		{ID: "seed-goal-fund", Title: "Emergency fund", Target: 5000, Current: 1250, Increment: 100},
	}
}
