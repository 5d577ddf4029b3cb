package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"taskId"`
	UserID    uuid.UUID `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type CommentView struct {
	Comment
	User UserProfile `json:"user"`
}

type CreateCommentRequest struct {
	TaskID  string `json:"taskId" validate:"required,uuid"`
	Content string `json:"content" validate:"required,max=5000"`
}

// Normalize lowercases the task id so it passes the same check as ids in
// paths and query strings.
func (r *CreateCommentRequest) Normalize() {
	r.TaskID = strings.ToLower(strings.TrimSpace(r.TaskID))
}
