package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	UserID      uuid.UUID    `json:"userId"`
	ImageURL    string       `json:"imageUrl,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// TaskFilter narrows a task listing. Zero values mean "not filtered".
type TaskFilter struct {
	Query    string
	Status   TaskStatus
	Priority TaskPriority
}

// TaskView is a task enriched with its owner and assignees.
type TaskView struct {
	Task
	User        UserProfile      `json:"user"`
	Assignments []AssignmentView `json:"assignments"`
}

// TaskDetail is a TaskView plus the task's comments, newest first.
type TaskDetail struct {
	TaskView
	Comments []CommentView `json:"comments"`
}

// CreateTaskRequest leaves status and priority nil when absent. A key that is
// present must hold a valid value, even if empty.
type CreateTaskRequest struct {
	Title       string        `json:"title" validate:"required,min=1,max=255"`
	Description string        `json:"description" validate:"max=10000"`
	Status      *TaskStatus   `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority    *TaskPriority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
}

func (r *CreateTaskRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
}

// NewTask builds the task to insert for owner, defaulting status to TODO and
// priority to MEDIUM.
func (r CreateTaskRequest) NewTask(owner uuid.UUID) Task {
	t := Task{
		Title:       r.Title,
		Description: r.Description,
		Status:      StatusTodo,
		Priority:    PriorityMedium,
		UserID:      owner,
	}
	if r.Status != nil {
		t.Status = *r.Status
	}
	if r.Priority != nil {
		t.Priority = *r.Priority
	}
	return t
}

// UpdateTaskRequest carries a partial update. Nil fields are left untouched.
type UpdateTaskRequest struct {
	Title       *string       `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string       `json:"description" validate:"omitempty,max=10000"`
	Status      *TaskStatus   `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority    *TaskPriority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
}

func (r *UpdateTaskRequest) Normalize() {
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		r.Title = &title
	}
}

func (r UpdateTaskRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.Status == nil && r.Priority == nil
}

// TaskQuery holds the accepted query parameters of the task listing.
type TaskQuery struct {
	Q        string       `json:"q" validate:"max=255"`
	Status   TaskStatus   `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority TaskPriority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
}

func (q TaskQuery) Filter() TaskFilter {
	return TaskFilter{Query: q.Q, Status: q.Status, Priority: q.Priority}
}
