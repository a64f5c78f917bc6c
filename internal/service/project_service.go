package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agentdash/agentdash/internal/collection"
	"github.com/agentdash/agentdash/internal/models"
)

// ProjectService is the projects feature module: project boards plus
// their tasks.
type ProjectService struct {
	projects *collection.Collection[*models.Project]
	tasks    *collection.Collection[*models.ProjectTask]
	logger   *slog.Logger
}

// NewProjectService wires the service to its two collections.
func NewProjectService(projects *collection.Collection[*models.Project], tasks *collection.Collection[*models.ProjectTask], logger *slog.Logger) *ProjectService {
	return &ProjectService{projects: projects, tasks: tasks, logger: logger}
}

// Projects returns the current project snapshot.
func (s *ProjectService) Projects() []*models.Project {
	return s.projects.List()
}

// Tasks returns the current task snapshot across all projects.
func (s *ProjectService) Tasks() []*models.ProjectTask {
	return s.tasks.List()
}

// TasksForProject filters the task snapshot to one project.
func (s *ProjectService) TasksForProject(projectID string) []*models.ProjectTask {
	var out []*models.ProjectTask
	for _, t := range s.tasks.List() {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out
}

// UsingFallback reports whether the module is working offline.
func (s *ProjectService) UsingFallback() bool {
	return s.projects.UsingFallback()
}

// CreateProject inserts a new project. Status defaults to planning and
// progress is clamped to [0, 100].
func (s *ProjectService) CreateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	p = p.Clone()
	if p.Status == "" {
		p.Status = models.ProjectPlanning
	}
	p.Progress = clampPercent(p.Progress)
	return s.projects.Insert(ctx, p)
}

// UpdateProject applies patch to a project, clamping progress.
func (s *ProjectService) UpdateProject(ctx context.Context, id string, patch func(*models.Project)) (*models.Project, error) {
	return s.projects.Update(ctx, id, func(p *models.Project) {
		patch(p)
		p.Progress = clampPercent(p.Progress)
	})
}

// DeleteProject removes the project and cascades to its tasks. Task
// removals are best effort and logged on failure.
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	if err := s.projects.Remove(ctx, id); err != nil {
		return err
	}
	for _, t := range s.tasks.List() {
		if t.ProjectID != id {
			continue
		}
		if err := s.tasks.Remove(ctx, t.ID); err != nil {
			s.logger.Warn("failed to remove task for deleted project",
				"project_id", id, "task_id", t.ID, "error", err)
		}
	}
	return nil
}

// AddTask inserts a task after checking its project exists. Status
// defaults to todo and priority to medium.
func (s *ProjectService) AddTask(ctx context.Context, t *models.ProjectTask) (*models.ProjectTask, error) {
	if !s.projectExists(t.ProjectID) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProject, t.ProjectID)
	}
	t = t.Clone()
	if t.Status == "" {
		t.Status = models.TaskTodo
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	return s.tasks.Insert(ctx, t)
}

// UpdateTask applies patch to a task. The owning project reference is
// immutable.
func (s *ProjectService) UpdateTask(ctx context.Context, id string, patch func(*models.ProjectTask)) (*models.ProjectTask, error) {
	cur, ok := s.findTask(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", collection.ErrNotFound, id)
	}
	projectID := cur.ProjectID
	return s.tasks.Update(ctx, id, func(t *models.ProjectTask) {
		patch(t)
		t.ProjectID = projectID
	})
}

// RemoveTask deletes a task.
func (s *ProjectService) RemoveTask(ctx context.Context, id string) error {
	return s.tasks.Remove(ctx, id)
}

func (s *ProjectService) projectExists(id string) bool {
	for _, p := range s.projects.List() {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (s *ProjectService) findTask(id string) (*models.ProjectTask, bool) {
	for _, t := range s.tasks.List() {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
