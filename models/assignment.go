package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type TaskAssignment struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"taskId"`
	UserID    uuid.UUID `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// AssignmentView is an assignment with the assignee's public profile.
type AssignmentView struct {
	TaskAssignment
	User UserProfile `json:"user"`
}

type AssignRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

func (r *AssignRequest) Normalize() {
	r.UserID = strings.ToLower(strings.TrimSpace(r.UserID))
}
