package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdash/agentdash/internal/analytics"
	"github.com/agentdash/agentdash/internal/models"
)

func newFinanceService(t *testing.T, expenses []*models.Expense, payments []*models.Payment) *FinanceService {
	t.Helper()
	return NewFinanceService(
		openLocal(t, "expenses", expenses),
		openLocal(t, "payments", payments),
		nil,
		testLogger(),
	)
}

func TestAddExpense(t *testing.T) {
	ctx := context.Background()
	svc := newFinanceService(t, nil, nil)

	t.Run("rounds the amount and clears linkage", func(t *testing.T) {
		added, err := svc.AddExpense(ctx, &models.Expense{
			Category:  "Food",
			Amount:    12.345,
			Date:      time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC),
			PaymentID: "forged",
		})
		require.NoError(t, err)
		assert.InDelta(t, 12.35, added.Amount, 0.001)
		assert.Empty(t, added.PaymentID, "user input cannot forge a payment linkage")
	})

	t.Run("zero date defaults to now", func(t *testing.T) {
		added, err := svc.AddExpense(ctx, &models.Expense{Category: "Food", Amount: 5})
		require.NoError(t, err)
		assert.False(t, added.Date.IsZero())
	})
}

func TestLinkedExpenseGuards(t *testing.T) {
	ctx := context.Background()
	svc := newFinanceService(t, nil, []*models.Payment{
		{ID: "p1", Title: "Rent", Amount: 1500, Category: "Housing"},
	})

	_, err := svc.MarkPaid(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, svc.Expenses(), 1)
	linked := svc.Expenses()[0]
	require.Equal(t, "p1", linked.PaymentID)

	t.Run("linked expense cannot be edited", func(t *testing.T) {
		_, err := svc.UpdateExpense(ctx, linked.ID, func(e *models.Expense) { e.Amount = 1 })
		assert.ErrorIs(t, err, ErrLinkedExpense)
	})

	t.Run("linked expense cannot be removed directly", func(t *testing.T) {
		err := svc.RemoveExpense(ctx, linked.ID)
		assert.ErrorIs(t, err, ErrLinkedExpense)
		assert.Len(t, svc.Expenses(), 1)
	})
}

func TestMarkPaid(t *testing.T) {
	ctx := context.Background()

	t.Run("creates exactly one linked expense", func(t *testing.T) {
		svc := newFinanceService(t, nil, []*models.Payment{
			{ID: "p1", Title: "Internet", Amount: 49.99, Category: "Utilities"},
		})

		payment, err := svc.MarkPaid(ctx, "p1")
		require.NoError(t, err)
		assert.True(t, payment.Paid)
		require.Len(t, svc.Expenses(), 1)

		e := svc.Expenses()[0]
		assert.Equal(t, "p1", e.PaymentID)
		assert.Equal(t, "Utilities", e.Category)
		assert.InDelta(t, 49.99, e.Amount, 0.001)
	})

	t.Run("marking twice is a no-op", func(t *testing.T) {
		svc := newFinanceService(t, nil, []*models.Payment{
			{ID: "p1", Title: "Internet", Amount: 49.99, Category: "Utilities"},
		})

		_, err := svc.MarkPaid(ctx, "p1")
		require.NoError(t, err)
		_, err = svc.MarkPaid(ctx, "p1")
		require.NoError(t, err)
		assert.Len(t, svc.Expenses(), 1, "no duplicate expense on repeated mark")
	})

	t.Run("unknown payment is rejected", func(t *testing.T) {
		svc := newFinanceService(t, nil, nil)
		_, err := svc.MarkPaid(ctx, "missing")
		assert.Error(t, err)
	})
}

func TestMarkUnpaid(t *testing.T) {
	ctx := context.Background()

	t.Run("paid then unpaid leaves no expense behind", func(t *testing.T) {
		svc := newFinanceService(t, nil, []*models.Payment{
			{ID: "p1", Title: "Internet", Amount: 49.99, Category: "Utilities"},
		})

		_, err := svc.MarkPaid(ctx, "p1")
		require.NoError(t, err)
		payment, err := svc.MarkUnpaid(ctx, "p1")
		require.NoError(t, err)
		assert.False(t, payment.Paid)
		assert.Empty(t, svc.Expenses())
	})

	t.Run("unmarking an unpaid payment is a no-op", func(t *testing.T) {
		svc := newFinanceService(t, nil, []*models.Payment{
			{ID: "p1", Title: "Internet", Amount: 49.99, Category: "Utilities"},
		})

		payment, err := svc.MarkUnpaid(ctx, "p1")
		require.NoError(t, err)
		assert.False(t, payment.Paid)
	})

	t.Run("falls back to the legacy heuristic", func(t *testing.T) {
		now := time.Now()
		// A paid payment whose expense predates the back-reference.
		svc := newFinanceService(t,
			[]*models.Expense{
				{ID: "e1", Category: "Utilities", Amount: 49.99, Date: now.Add(-2 * time.Hour)},
			},
			[]*models.Payment{
				{ID: "p1", Title: "Internet", Amount: 49.99, Category: "Utilities", Paid: true},
			},
		)

		_, err := svc.MarkUnpaid(ctx, "p1")
		require.NoError(t, err)
		assert.Empty(t, svc.Expenses())
	})

	t.Run("missing linked expense still flips the flag", func(t *testing.T) {
		svc := newFinanceService(t, nil, []*models.Payment{
			{ID: "p1", Title: "Internet", Amount: 49.99, Category: "Utilities", Paid: true},
		})

		payment, err := svc.MarkUnpaid(ctx, "p1")
		require.NoError(t, err)
		assert.False(t, payment.Paid)
	})
}

func TestUpdatePayment(t *testing.T) {
	ctx := context.Background()
	svc := newFinanceService(t, nil, []*models.Payment{
		{ID: "p1", Title: "Internet", Amount: 49.99, Category: "Utilities", Paid: true},
	})

	updated, err := svc.UpdatePayment(ctx, "p1", func(p *models.Payment) {
		p.Title = "Fiber internet"
		p.Paid = false // must be ignored
	})
	require.NoError(t, err)
	assert.Equal(t, "Fiber internet", updated.Title)
	assert.True(t, updated.Paid, "paid flag only moves through MarkPaid/MarkUnpaid")
}

func TestRollups(t *testing.T) {
	ctx := context.Background()
	svc := newFinanceService(t, nil, []*models.Payment{
		{ID: "p1", Title: "Rent", Amount: 1500, Category: "Housing"},
	})

	_, err := svc.MarkPaid(ctx, "p1")
	require.NoError(t, err)

	now := time.Now()
	rollups := svc.Rollups(now.Year(), now.Month())
	var housing *analytics.CategoryRollup
	for i := range rollups {
		if rollups[i].Category == "Housing" {
			housing = &rollups[i]
		}
	}
	require.NotNil(t, housing, "paid payment must land in the month's rollup")
	assert.InDelta(t, 1500, housing.Spent, 0.001)
	assert.Equal(t, analytics.StatusWarning, housing.Status)
}
