package models

import (
	"errors"
	"time"
)

// Expense represents a single spent amount in one budget category.
//
// An expense carrying a non-empty PaymentID was generated by marking the
// referenced payment as paid. System-generated expenses must not be edited
// or deleted directly; they are removed only by unmarking the payment.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// Category is the budget category this expense counts against.
	Category string `json:"category"`

	// Amount is the spent amount, rounded to 2 decimal places.
	Amount float64 `json:"amount"`

	// Description is an optional free-form note.
	Description string `json:"description"`

	// Date is when the expense occurred, serialized as ISO-8601.
	Date time.Time `json:"date"`

	// PaymentID back-references the payment that produced this expense.
	// Empty for expenses entered by the user directly.
	PaymentID string `json:"payment_id,omitempty"`

	// CreatedAt is the Unix timestamp when the expense was created.
	CreatedAt int64 `json:"created_at"`
}

func (e *Expense) RecordID() string          { return e.ID }
func (e *Expense) SetRecordID(id string)     { e.ID = id }
func (e *Expense) RecordCreatedAt() int64    { return e.CreatedAt }
func (e *Expense) StampCreatedAt(unix int64) { e.CreatedAt = unix }

// Clone returns a deep copy of the expense.
func (e *Expense) Clone() *Expense {
	c := *e
	return &c
}

// Validate checks basic invariants before the record reaches a store.
func (e *Expense) Validate() error {
	if e.Category == "" {
		return errors.New("expense category is required")
	}
	if e.Amount <= 0 {
		return errors.New("expense amount must be positive")
	}
	if e.Date.IsZero() {
		return errors.New("expense date is required")
	}
	return nil
}

// Payment represents a scheduled or recurring payment (rent, subscriptions).
//
// Toggling Paid from false to true produces exactly one linked Expense;
// toggling back removes it. See analytics.MatchLinkedExpense for the
// matching rule used when unmarking.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string `json:"id"`

	// Title is the display name of the payment (e.g., "Rent").
	Title string `json:"title"`

	// Amount is the payment amount, rounded to 2 decimal places.
	Amount float64 `json:"amount"`

	// DueDate is when the payment is due, serialized as ISO-8601.
	DueDate time.Time `json:"due_date"`

	// Category is the budget category a paid payment lands in.
	Category string `json:"category"`

	// Recurring marks payments that repeat every month.
	Recurring bool `json:"recurring"`

	// Paid reports whether the payment has been settled this cycle.
	Paid bool `json:"paid"`

	// CreatedAt is the Unix timestamp when the payment was created.
	CreatedAt int64 `json:"created_at"`
}

func (p *Payment) RecordID() string          { return p.ID }
func (p *Payment) SetRecordID(id string)     { p.ID = id }
func (p *Payment) RecordCreatedAt() int64    { return p.CreatedAt }
func (p *Payment) StampCreatedAt(unix int64) { p.CreatedAt = unix }

// Clone returns a deep copy of the payment.
func (p *Payment) Clone() *Payment {
	c := *p
	return &c
}

// Validate checks basic invariants before the record reaches a store.
func (p *Payment) Validate() error {
	if p.Title == "" {
		return errors.New("payment title is required")
	}
	if p.Amount <= 0 {
		return errors.New("payment amount must be positive")
	}
	if p.Category == "" {
		return errors.New("payment category is required")
	}
	return nil
}

// FinancialGoal represents a savings goal with tracked progress.
// Current is clamped to [0, Target] on every increment.
type FinancialGoal struct {
	// ID is the unique identifier for the goal (UUID format).
	ID string `json:"id"`

	// Title is the display name of the goal (e.g., "Emergency fund").
	Title string `json:"title"`

	// Target is the amount to reach, rounded to 2 decimal places.
	Target float64 `json:"target"`

	// Current is the saved amount so far, always within [0, Target].
	Current float64 `json:"current"`

	// TargetDate is an optional deadline, serialized as ISO-8601.
	TargetDate *time.Time `json:"target_date,omitempty"`

	// Increment is the default step for quick add/subtract actions.
	Increment float64 `json:"increment"`

	// CreatedAt is the Unix timestamp when the goal was created.
	CreatedAt int64 `json:"created_at"`
}

func (g *FinancialGoal) RecordID() string          { return g.ID }
func (g *FinancialGoal) SetRecordID(id string)     { g.ID = id }
func (g *FinancialGoal) RecordCreatedAt() int64    { return g.CreatedAt }
func (g *FinancialGoal) StampCreatedAt(unix int64) { g.CreatedAt = unix }

// Clone returns a deep copy of the goal.
func (g *FinancialGoal) Clone() *FinancialGoal {
	c := *g
	if g.TargetDate != nil {
		d := *g.TargetDate
		c.TargetDate = &d
	}
	return &c
}

// Validate checks basic invariants before the record reaches a store.
func (g *FinancialGoal) Validate() error {
	if g.Title == "" {
		return errors.New("goal title is required")
	}
	if g.Target <= 0 {
		return errors.New("goal target must be positive")
	}
	if g.Current < 0 || g.Current > g.Target {
		return errors.New("goal current must be within [0, target]")
	}
	return nil
}
