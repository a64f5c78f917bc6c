package api

import (
	"net/http"

	"github.com/agentdash/agentdash/internal/models"
)

type projectRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Progress    int      `json:"progress"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Team        []string `json:"team"`
	Color       string   `json:"color"`
}

func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	svc := h.dashboard(r).Projects
	writeJSON(w, http.StatusOK, map[string]any{
		"projects": svc.Projects(),
		"tasks":    svc.Tasks(),
	})
}

func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	start, ok := parseDate(req.StartDate)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start_date"})
		return
	}
	project := &models.Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      models.ProjectStatus(req.Status),
		Progress:    req.Progress,
		StartDate:   start,
		Team:        req.Team,
		Color:       req.Color,
	}
	if req.EndDate != "" {
		end, ok := parseDate(req.EndDate)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid end_date"})
			return
		}
		project.EndDate = &end
	}
	created, err := h.dashboard(r).Projects.CreateProject(r.Context(), project)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	project, err := h.dashboard(r).Projects.UpdateProject(r.Context(), r.PathValue("id"), func(p *models.Project) {
		p.Name = req.Name
		p.Description = req.Description
		if req.Status != "" {
			p.Status = models.ProjectStatus(req.Status)
		}
		p.Progress = req.Progress
		p.Team = req.Team
		p.Color = req.Color
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *Handler) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.dashboard(r).Projects.DeleteProject(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type taskRequest struct {
	ProjectID     string  `json:"project_id"`
	Title         string  `json:"title"`
	Status        string  `json:"status"`
	Priority      string  `json:"priority"`
	DueDate       string  `json:"due_date"`
	Assignee      string  `json:"assignee"`
	EstimateHours float64 `json:"estimate_hours"`
}

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	svc := h.dashboard(r).Projects
	if projectID := r.URL.Query().Get("project_id"); projectID != "" {
		writeJSON(w, http.StatusOK, svc.TasksForProject(projectID))
		return
	}
	writeJSON(w, http.StatusOK, svc.Tasks())
}

func (h *Handler) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	task := &models.ProjectTask{
		ProjectID:     req.ProjectID,
		Title:         req.Title,
		Status:        models.TaskStatus(req.Status),
		Priority:      models.TaskPriority(req.Priority),
		Assignee:      req.Assignee,
		EstimateHours: req.EstimateHours,
	}
	if req.DueDate != "" {
		due, ok := parseDate(req.DueDate)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid due_date"})
			return
		}
		task.DueDate = &due
	}
	created, err := h.dashboard(r).Projects.AddTask(r.Context(), task)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	task, err := h.dashboard(r).Projects.UpdateTask(r.Context(), r.PathValue("id"), func(t *models.ProjectTask) {
		t.Title = req.Title
		if req.Status != "" {
			t.Status = models.TaskStatus(req.Status)
		}
		if req.Priority != "" {
			t.Priority = models.TaskPriority(req.Priority)
		}
		t.Assignee = req.Assignee
		t.EstimateHours = req.EstimateHours
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) handleRemoveTask(w http.ResponseWriter, r *http.Request) {
	if err := h.dashboard(r).Projects.RemoveTask(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
