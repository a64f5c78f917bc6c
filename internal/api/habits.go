package api

import (
	"net/http"
	"time"

	"github.com/agentdash/agentdash/internal/analytics"
	"github.com/agentdash/agentdash/internal/models"
)

type habitRequest struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	Frequency string `json:"frequency"`
	Target    int    `json:"target"`
	Color     string `json:"color"`
	Icon      string `json:"icon"`
}

func (h *Handler) handleListHabits(w http.ResponseWriter, r *http.Request) {
	svc := h.dashboard(r).Habits
	writeJSON(w, http.StatusOK, map[string]any{
		"habits":  svc.Habits(),
		"entries": svc.Entries(),
	})
}

func (h *Handler) handleCreateHabit(w http.ResponseWriter, r *http.Request) {
	var req habitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	habit, err := h.dashboard(r).Habits.CreateHabit(r.Context(), &models.Habit{
		Name:      req.Name,
		Category:  req.Category,
		Frequency: models.HabitFrequency(req.Frequency),
		Target:    req.Target,
		Color:     req.Color,
		Icon:      req.Icon,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, habit)
}

func (h *Handler) handleUpdateHabit(w http.ResponseWriter, r *http.Request) {
	var req habitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	habit, err := h.dashboard(r).Habits.UpdateHabit(r.Context(), r.PathValue("id"), func(hb *models.Habit) {
		hb.Name = req.Name
		hb.Category = req.Category
		if req.Frequency != "" {
			hb.Frequency = models.HabitFrequency(req.Frequency)
		}
		hb.Target = req.Target
		hb.Color = req.Color
		hb.Icon = req.Icon
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

func (h *Handler) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	if err := h.dashboard(r).Habits.DeleteHabit(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type toggleRequest struct {
	// Date defaults to today when omitted.
	Date string `json:"date"`
}

func (h *Handler) handleToggleHabit(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	// An empty body means "toggle today".
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}
	entry, err := h.dashboard(r).Habits.Toggle(r.Context(), r.PathValue("id"), date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) handleHabitStats(w http.ResponseWriter, r *http.Request) {
	mode := analytics.ViewWeek
	if r.URL.Query().Get("mode") == "month" {
		mode = analytics.ViewMonth
	}
	stats, err := h.dashboard(r).Habits.Stats(r.PathValue("id"), mode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
