package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/agentdash/agentdash/internal/models"
)

type expenseRequest struct {
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func (h *Handler) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dashboard(r).Finance.Expenses())
}

func (h *Handler) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	date, ok := parseDate(req.Date)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date"})
		return
	}
	expense, err := h.dashboard(r).Finance.AddExpense(r.Context(), &models.Expense{
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

func (h *Handler) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	date, ok := parseDate(req.Date)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date"})
		return
	}
	expense, err := h.dashboard(r).Finance.UpdateExpense(r.Context(), r.PathValue("id"), func(e *models.Expense) {
		e.Category = req.Category
		e.Amount = req.Amount
		e.Description = req.Description
		if !date.IsZero() {
			e.Date = date
		}
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (h *Handler) handleRemoveExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.dashboard(r).Finance.RemoveExpense(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type paymentRequest struct {
	Title     string  `json:"title"`
	Amount    float64 `json:"amount"`
	DueDate   string  `json:"due_date"`
	Category  string  `json:"category"`
	Recurring bool    `json:"recurring"`
}

func (h *Handler) handleListPayments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dashboard(r).Finance.Payments())
}

func (h *Handler) handleAddPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	due, ok := parseDate(req.DueDate)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid due_date"})
		return
	}
	payment, err := h.dashboard(r).Finance.AddPayment(r.Context(), &models.Payment{
		Title:     req.Title,
		Amount:    req.Amount,
		DueDate:   due,
		Category:  req.Category,
		Recurring: req.Recurring,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

// handleUpdatePayment edits payment details. The paid flag is managed by
// the paid/unpaid endpoints and ignored here.
func (h *Handler) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	due, ok := parseDate(req.DueDate)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid due_date"})
		return
	}
	payment, err := h.dashboard(r).Finance.UpdatePayment(r.Context(), r.PathValue("id"), func(p *models.Payment) {
		p.Title = req.Title
		p.Amount = req.Amount
		p.Category = req.Category
		p.Recurring = req.Recurring
		if !due.IsZero() {
			p.DueDate = due
		}
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (h *Handler) handleRemovePayment(w http.ResponseWriter, r *http.Request) {
	if err := h.dashboard(r).Finance.RemovePayment(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	payment, err := h.dashboard(r).Finance.MarkPaid(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (h *Handler) handleMarkUnpaid(w http.ResponseWriter, r *http.Request) {
	payment, err := h.dashboard(r).Finance.MarkUnpaid(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

// handleBudget serves the monthly category roll-up. Defaults to the
// current month; navigation past the current month is rejected.
func (h *Handler) handleBudget(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := now.Year(), now.Month()

	q := r.URL.Query()
	if raw := q.Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid year"})
			return
		}
		year = parsed
	}
	if raw := q.Get("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 12 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid month"})
			return
		}
		month = time.Month(parsed)
	}

	requested := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if requested.After(current) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no budgets for future months"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"year":    year,
		"month":   int(month),
		"budgets": h.dashboard(r).Finance.Budgets(),
		"rollups": h.dashboard(r).Finance.Rollups(year, month),
	})
}

type goalRequest struct {
	Title      string  `json:"title"`
	Target     float64 `json:"target"`
	Current    float64 `json:"current"`
	TargetDate string  `json:"target_date"`
	Increment  float64 `json:"increment"`
}

func (h *Handler) handleListGoals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dashboard(r).Goals.Goals())
}

func (h *Handler) handleAddGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	goal := &models.FinancialGoal{
		Title:     req.Title,
		Target:    req.Target,
		Current:   req.Current,
		Increment: req.Increment,
	}
	if req.TargetDate != "" {
		date, ok := parseDate(req.TargetDate)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid target_date"})
			return
		}
		goal.TargetDate = &date
	}
	created, err := h.dashboard(r).Goals.AddGoal(r.Context(), goal)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var targetDate *time.Time
	if req.TargetDate != "" {
		date, ok := parseDate(req.TargetDate)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid target_date"})
			return
		}
		targetDate = &date
	}
	goal, err := h.dashboard(r).Goals.UpdateGoal(r.Context(), r.PathValue("id"), func(g *models.FinancialGoal) {
		g.Title = req.Title
		g.Target = req.Target
		g.Current = req.Current
		g.Increment = req.Increment
		// An omitted target_date clears the deadline.
		g.TargetDate = targetDate
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (h *Handler) handleRemoveGoal(w http.ResponseWriter, r *http.Request) {
	if err := h.dashboard(r).Goals.RemoveGoal(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type incrementRequest struct {
	Delta float64 `json:"delta"`
}

func (h *Handler) handleIncrementGoal(w http.ResponseWriter, r *http.Request) {
	var req incrementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	goal, err := h.dashboard(r).Goals.Increment(r.Context(), r.PathValue("id"), req.Delta)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}
