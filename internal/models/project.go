package models

import (
	"errors"
	"time"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on-hold"
	ProjectCompleted ProjectStatus = "completed"
)

// Valid reports whether s is one of the known project states.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted:
		return true
	}
	return false
}

// TaskStatus is the board column a task sits in.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in-progress"
	TaskReview     TaskStatus = "review"
	TaskDone       TaskStatus = "done"
)

// Valid reports whether s is one of the known task states.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskReview, TaskDone:
		return true
	}
	return false
}

// TaskPriority is the urgency tag on a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Project represents a tracked project on the dashboard.
type Project struct {
	// ID is the unique identifier for the project (UUID format).
	ID string `json:"id"`

	// Name is the display name of the project.
	Name string `json:"name"`

	// Description is an optional free-form summary.
	Description string `json:"description"`

	// Status is the lifecycle state.
	Status ProjectStatus `json:"status"`

	// Progress is the completion percentage, clamped to [0, 100].
	Progress int `json:"progress"`

	// StartDate and EndDate bound the project schedule (ISO-8601).
	// EndDate is nil for open-ended projects.
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	// Team lists member names shown on the project card.
	Team []string `json:"team"`

	// Color is a presentation tag carried through untouched.
	Color string `json:"color"`

	// CreatedAt is the Unix timestamp when the project was created.
	CreatedAt int64 `json:"created_at"`
}

func (p *Project) RecordID() string          { return p.ID }
func (p *Project) SetRecordID(id string)     { p.ID = id }
func (p *Project) RecordCreatedAt() int64    { return p.CreatedAt }
func (p *Project) StampCreatedAt(unix int64) { p.CreatedAt = unix }

// Clone returns a deep copy of the project, including the team list.
func (p *Project) Clone() *Project {
	c := *p
	if p.EndDate != nil {
		d := *p.EndDate
		c.EndDate = &d
	}
	if p.Team != nil {
		c.Team = append([]string(nil), p.Team...)
	}
	return &c
}

// Validate checks basic invariants before the record reaches a store.
func (p *Project) Validate() error {
	if p.Name == "" {
		return errors.New("project name is required")
	}
	if !p.Status.Valid() {
		return errors.New("project status must be planning, active, on-hold or completed")
	}
	if p.Progress < 0 || p.Progress > 100 {
		return errors.New("project progress must be within [0, 100]")
	}
	return nil
}

// ProjectTask represents one task on a project board.
// A task belongs to exactly one project, referenced by ID.
type ProjectTask struct {
	// ID is the unique identifier for the task (UUID format).
	ID string `json:"id"`

	// ProjectID references the owning project.
	ProjectID string `json:"project_id"`

	// Title is the display name of the task.
	Title string `json:"title"`

	// Status is the board column.
	Status TaskStatus `json:"status"`

	// Priority is the urgency tag.
	Priority TaskPriority `json:"priority"`

	// DueDate is an optional deadline (ISO-8601).
	DueDate *time.Time `json:"due_date,omitempty"`

	// Assignee is an optional member name.
	Assignee string `json:"assignee,omitempty"`

	// EstimateHours is an optional effort estimate.
	EstimateHours float64 `json:"estimate_hours,omitempty"`

	// CreatedAt is the Unix timestamp when the task was created.
	CreatedAt int64 `json:"created_at"`
}

func (t *ProjectTask) RecordID() string          { return t.ID }
func (t *ProjectTask) SetRecordID(id string)     { t.ID = id }
func (t *ProjectTask) RecordCreatedAt() int64    { return t.CreatedAt }
func (t *ProjectTask) StampCreatedAt(unix int64) { t.CreatedAt = unix }

// Clone returns a deep copy of the task.
func (t *ProjectTask) Clone() *ProjectTask {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return &c
}

// Validate checks basic invariants before the record reaches a store.
func (t *ProjectTask) Validate() error {
	if t.ProjectID == "" {
		return errors.New("task requires a project id")
	}
	if t.Title == "" {
		return errors.New("task title is required")
	}
	if !t.Status.Valid() {
		return errors.New("task status must be todo, in-progress, review or done")
	}
	if !t.Priority.Valid() {
		return errors.New("task priority must be low, medium or high")
	}
	if t.EstimateHours < 0 {
		return errors.New("task estimate cannot be negative")
	}
	return nil
}
