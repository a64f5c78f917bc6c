// Package api exposes the dashboard services over a JSON HTTP API.
// Handlers stay thin: decode, delegate to a service, encode the typed
// result or map the typed error to a status code.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/agentdash/agentdash/internal/auth"
	"github.com/agentdash/agentdash/internal/collection"
	"github.com/agentdash/agentdash/internal/middleware"
	"github.com/agentdash/agentdash/internal/service"
)

// Handler serves the dashboard API.
type Handler struct {
	auth     *service.AuthService
	sessions *service.Sessions
	logger   *slog.Logger
}

// New creates the API handler.
func New(authService *service.AuthService, sessions *service.Sessions, logger *slog.Logger) *Handler {
	return &Handler{auth: authService, sessions: sessions, logger: logger}
}

// Routes registers every endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/register", h.handleRegister)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("GET /api/status", h.handleStatus)

	mux.HandleFunc("GET /api/habits", h.handleListHabits)
	mux.HandleFunc("POST /api/habits", h.handleCreateHabit)
	mux.HandleFunc("PUT /api/habits/{id}", h.handleUpdateHabit)
	mux.HandleFunc("DELETE /api/habits/{id}", h.handleDeleteHabit)
	mux.HandleFunc("POST /api/habits/{id}/toggle", h.handleToggleHabit)
	mux.HandleFunc("GET /api/habits/{id}/stats", h.handleHabitStats)

	mux.HandleFunc("GET /api/expenses", h.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", h.handleAddExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", h.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", h.handleRemoveExpense)

	mux.HandleFunc("GET /api/payments", h.handleListPayments)
	mux.HandleFunc("POST /api/payments", h.handleAddPayment)
	mux.HandleFunc("PUT /api/payments/{id}", h.handleUpdatePayment)
	mux.HandleFunc("DELETE /api/payments/{id}", h.handleRemovePayment)
	mux.HandleFunc("POST /api/payments/{id}/paid", h.handleMarkPaid)
	mux.HandleFunc("POST /api/payments/{id}/unpaid", h.handleMarkUnpaid)

	mux.HandleFunc("GET /api/budget", h.handleBudget)

	mux.HandleFunc("GET /api/projects", h.handleListProjects)
	mux.HandleFunc("POST /api/projects", h.handleCreateProject)
	mux.HandleFunc("PUT /api/projects/{id}", h.handleUpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", h.handleDeleteProject)

	mux.HandleFunc("GET /api/tasks", h.handleListTasks)
	mux.HandleFunc("POST /api/tasks", h.handleAddTask)
	mux.HandleFunc("PUT /api/tasks/{id}", h.handleUpdateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", h.handleRemoveTask)

	mux.HandleFunc("GET /api/goals", h.handleListGoals)
	mux.HandleFunc("POST /api/goals", h.handleAddGoal)
	mux.HandleFunc("PUT /api/goals/{id}", h.handleUpdateGoal)
	mux.HandleFunc("DELETE /api/goals/{id}", h.handleRemoveGoal)
	mux.HandleFunc("POST /api/goals/{id}/increment", h.handleIncrementGoal)
}

// dashboard resolves the caller's dashboard from the request context.
func (h *Handler) dashboard(r *http.Request) *service.Dashboard {
	return h.sessions.Dashboard(r.Context(), middleware.GetUserID(r.Context()))
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	d := h.dashboard(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":        middleware.GetUserID(r.Context()),
		"using_fallback": d.UsingFallback(),
	})
}

type credentialsRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type sessionResponse struct {
	User  any    `json:"user"`
	Token string `json:"token"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, token, err := h.auth.Register(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{User: user, Token: token})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{User: user, Token: token})
}

// --- shared helpers ---

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

// writeError maps typed service errors to HTTP status codes. Unknown
// errors become 500 with a generic message so store details never leak.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, collection.ErrValidationRejected),
		errors.Is(err, auth.ErrWeakPassword):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		msg = err.Error()
	case errors.Is(err, auth.ErrEmailExists),
		errors.Is(err, service.ErrFrequencyChange),
		errors.Is(err, service.ErrLinkedExpense):
		status = http.StatusConflict
		msg = err.Error()
	case errors.Is(err, collection.ErrNotFound),
		errors.Is(err, service.ErrUnknownHabit),
		errors.Is(err, service.ErrUnknownProject):
		status = http.StatusNotFound
		msg = err.Error()
	case errors.Is(err, collection.ErrMutationRejected):
		// Optimistic change already rolled back; tell the client to retry.
		status = http.StatusBadGateway
		msg = "store rejected the change, please retry"
	}

	writeJSON(w, status, map[string]string{"error": msg})
}
