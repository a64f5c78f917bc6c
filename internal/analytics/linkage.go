package analytics

import (
	"time"

	"github.com/agentdash/agentdash/internal/models"
)

// linkageWindow bounds the fallback match for legacy expenses that were
// created before the payment back-reference existed.
const linkageWindow = 24 * time.Hour

// ExpenseForPayment builds the expense produced by marking a payment
// paid: same category and amount, dated now, back-referencing the
// payment.
func ExpenseForPayment(p *models.Payment, now time.Time) *models.Expense {
	return &models.Expense{
		Category:    p.Category,
		Amount:      models.RoundAmount(p.Amount),
		Description: p.Title,
		Date:        now,
		PaymentID:   p.ID,
	}
}

// MatchLinkedExpense finds the expense to remove when a payment is
// unmarked. Rules, in order:
//
//  1. Exact PaymentID match.
//  2. Legacy heuristic: same category, same amount, and a recorded date
//     within 24 hours of now. Best effort for expenses that predate the
//     PaymentID back-reference; do not strengthen it.
//
// Returns false when neither rule matches. The caller still flips the
// paid flag and reports the inconsistency, it just has nothing to remove.
func MatchLinkedExpense(expenses []*models.Expense, p *models.Payment, now time.Time) (*models.Expense, bool) {
	for _, e := range expenses {
		if e.PaymentID == p.ID {
			return e, true
		}
	}

	amount := models.RoundAmount(p.Amount)
	for _, e := range expenses {
		if e.PaymentID != "" {
			continue // linked to some other payment's cascade
		}
		if e.Category != p.Category || models.RoundAmount(e.Amount) != amount {
			continue
		}
		delta := now.Sub(e.Date)
		if delta < 0 {
			delta = -delta
		}
		if delta <= linkageWindow {
			return e, true
		}
	}

	return nil, false
}
