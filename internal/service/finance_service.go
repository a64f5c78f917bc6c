package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agentdash/agentdash/internal/analytics"
	"github.com/agentdash/agentdash/internal/collection"
	"github.com/agentdash/agentdash/internal/models"
)

// DefaultBudgets is the budget table used when no per-deployment table is
// configured: category to monthly budgeted amount.
var DefaultBudgets = map[string]float64{
	"Housing":       1500,
	"Food":          600,
	"Transport":     200,
	"Utilities":     250,
	"Entertainment": 150,
	"Other":         200,
}

// FinanceService is the budget/payments feature module. It owns the
// expense and payment collections and runs the payment/expense linkage
// cascade.
//
// The cascade spans two collections and is not transactional: if the
// expense step fails after the paid flag was flipped, the flag stays
// flipped and the failure is surfaced to the caller. See MarkPaid.
type FinanceService struct {
	expenses *collection.Collection[*models.Expense]
	payments *collection.Collection[*models.Payment]
	budgets  map[string]float64
	logger   *slog.Logger
	clock    func() time.Time
}

// NewFinanceService wires the service to its collections. A nil budgets
// table falls back to DefaultBudgets.
func NewFinanceService(expenses *collection.Collection[*models.Expense], payments *collection.Collection[*models.Payment], budgets map[string]float64, logger *slog.Logger) *FinanceService {
	if budgets == nil {
		budgets = DefaultBudgets
	}
	return &FinanceService{
		expenses: expenses,
		payments: payments,
		budgets:  budgets,
		logger:   logger,
		clock:    time.Now,
	}
}

// Expenses returns the current expense snapshot.
func (s *FinanceService) Expenses() []*models.Expense {
	return s.expenses.List()
}

// Payments returns the current payment snapshot.
func (s *FinanceService) Payments() []*models.Payment {
	return s.payments.List()
}

// UsingFallback reports whether the module is working offline.
func (s *FinanceService) UsingFallback() bool {
	return s.expenses.UsingFallback()
}

// AddExpense inserts a user-entered expense. The payment back-reference
// is always cleared: only the paid-toggle cascade creates linked
// expenses. A zero date defaults to now and the amount is rounded to
// cents before storage.
func (s *FinanceService) AddExpense(ctx context.Context, e *models.Expense) (*models.Expense, error) {
	e = e.Clone()
	e.PaymentID = ""
	e.Amount = models.RoundAmount(e.Amount)
	if e.Date.IsZero() {
		e.Date = s.clock()
	}
	return s.expenses.Insert(ctx, e)
}

// UpdateExpense applies patch to a user-entered expense. Expenses linked
// to a payment are system-generated and rejected with ErrLinkedExpense;
// the patch cannot forge or clear a linkage either.
func (s *FinanceService) UpdateExpense(ctx context.Context, id string, patch func(*models.Expense)) (*models.Expense, error) {
	cur, ok := s.findExpense(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", collection.ErrNotFound, id)
	}
	if cur.PaymentID != "" {
		return nil, ErrLinkedExpense
	}
	return s.expenses.Update(ctx, id, func(e *models.Expense) {
		patch(e)
		e.PaymentID = ""
		e.Amount = models.RoundAmount(e.Amount)
	})
}

// RemoveExpense deletes a user-entered expense. Linked expenses are only
// removable by unmarking the payment that produced them.
func (s *FinanceService) RemoveExpense(ctx context.Context, id string) error {
	cur, ok := s.findExpense(id)
	if !ok {
		return fmt.Errorf("%w: %s", collection.ErrNotFound, id)
	}
	if cur.PaymentID != "" {
		return ErrLinkedExpense
	}
	return s.expenses.Remove(ctx, id)
}

// AddPayment inserts a new payment with the amount rounded to cents.
func (s *FinanceService) AddPayment(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	p = p.Clone()
	p.Amount = models.RoundAmount(p.Amount)
	return s.payments.Insert(ctx, p)
}

// UpdatePayment applies patch to a payment. The paid flag only moves
// through MarkPaid/MarkUnpaid so the linkage cascade cannot be skipped.
func (s *FinanceService) UpdatePayment(ctx context.Context, id string, patch func(*models.Payment)) (*models.Payment, error) {
	cur, ok := s.findPayment(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", collection.ErrNotFound, id)
	}
	paid := cur.Paid
	return s.payments.Update(ctx, id, func(p *models.Payment) {
		patch(p)
		p.Paid = paid
		p.Amount = models.RoundAmount(p.Amount)
	})
}

// RemovePayment deletes a payment. Any linked expense stays: removing a
// paid payment does not undo the spending it recorded.
func (s *FinanceService) RemovePayment(ctx context.Context, id string) error {
	return s.payments.Remove(ctx, id)
}

// MarkPaid flips the payment's paid flag to true and inserts exactly one
// linked expense. Marking an already-paid payment is a no-op.
//
// The two steps are not transactional: when the expense insert fails the
// payment stays marked paid and the error is returned so the caller can
// notify and retry.
func (s *FinanceService) MarkPaid(ctx context.Context, id string) (*models.Payment, error) {
	cur, ok := s.findPayment(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", collection.ErrNotFound, id)
	}
	if cur.Paid {
		return cur, nil
	}

	updated, err := s.payments.Update(ctx, id, func(p *models.Payment) {
		p.Paid = true
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.expenses.Insert(ctx, analytics.ExpenseForPayment(updated, s.clock())); err != nil {
		s.logger.Warn("payment marked paid but linked expense insert failed",
			"payment_id", id, "error", err)
		return updated, fmt.Errorf("payment marked paid, expense not recorded: %w", err)
	}

	return updated, nil
}

// MarkUnpaid flips the payment's paid flag to false and removes the one
// expense its paid-toggle produced. When no expense matches either the
// back-reference or the legacy heuristic, the flag still flips and the
// inconsistency is logged for operator visibility only.
func (s *FinanceService) MarkUnpaid(ctx context.Context, id string) (*models.Payment, error) {
	cur, ok := s.findPayment(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", collection.ErrNotFound, id)
	}
	if !cur.Paid {
		return cur, nil
	}

	updated, err := s.payments.Update(ctx, id, func(p *models.Payment) {
		p.Paid = false
	})
	if err != nil {
		return nil, err
	}

	linked, found := analytics.MatchLinkedExpense(s.expenses.List(), updated, s.clock())
	if !found {
		s.logger.Warn("no linked expense found for unmarked payment",
			"payment_id", id, "category", updated.Category, "amount", updated.Amount)
		return updated, nil
	}
	if err := s.expenses.Remove(ctx, linked.ID); err != nil {
		s.logger.Warn("payment unmarked but linked expense removal failed",
			"payment_id", id, "expense_id", linked.ID, "error", err)
		return updated, fmt.Errorf("payment unmarked, expense not removed: %w", err)
	}

	return updated, nil
}

// Rollups aggregates the expense snapshot for the given month against
// the budget table.
func (s *FinanceService) Rollups(year int, month time.Month) []analytics.CategoryRollup {
	return analytics.MonthlyRollups(s.expenses.List(), year, month, s.budgets)
}

// Budgets returns a copy of the configured budget table.
func (s *FinanceService) Budgets() map[string]float64 {
	out := make(map[string]float64, len(s.budgets))
	for k, v := range s.budgets {
		out[k] = v
	}
	return out
}

func (s *FinanceService) findExpense(id string) (*models.Expense, bool) {
	for _, e := range s.expenses.List() {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

func (s *FinanceService) findPayment(id string) (*models.Payment, bool) {
	for _, p := range s.payments.List() {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}
