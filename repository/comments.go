package repository

import (
	"context"

	"github.com/google/uuid"

	"task-tracker/models"
)

type CommentRepository struct {
	db DBTX
}

func NewCommentRepository(db DBTX) *CommentRepository {
	return &CommentRepository{db: db}
}

const commentColumns = "c.id, c.task_id, c.user_id, c.content, c.created_at"

func commentDest(c *models.CommentView) []any {
	return append([]any{&c.ID, &c.TaskID, &c.UserID, &c.Content, &c.CreatedAt}, profileDest(&c.User)...)
}

func listComments(ctx context.Context, db DBTX, taskID uuid.UUID) ([]models.CommentView, error) {
	rows, err := db.Query(ctx,
		"SELECT "+commentColumns+", "+profileColumns+`
		FROM comments c JOIN users u ON u.id = c.user_id
		WHERE c.task_id = $1
		ORDER BY c.created_at DESC, c.id`, taskID)
	if err != nil {
		return nil, classify("list comments", err)
	}
	defer rows.Close()

	comments := []models.CommentView{}
	for rows.Next() {
		var c models.CommentView
		if err := rows.Scan(commentDest(&c)...); err != nil {
			return nil, classify("scan comment", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list comments", err)
	}
	return comments, nil
}

// ListByTask returns the comments of a task, newest first. An unknown task
// yields an empty list.
func (r *CommentRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]models.CommentView, error) {
	return listComments(ctx, r.db, taskID)
}

// Create stores c and returns it with its author's profile. An unknown task
// yields ErrNotFound.
func (r *CommentRepository) Create(ctx context.Context, c models.Comment) (*models.CommentView, error) {
	var v models.CommentView
	err := r.db.QueryRow(ctx,
		`WITH c AS (
			INSERT INTO comments (task_id, user_id, content) VALUES ($1, $2, $3)
			RETURNING id, task_id, user_id, content, created_at
		)
		SELECT `+commentColumns+`, `+profileColumns+`
		FROM c JOIN users u ON u.id = c.user_id`,
		c.TaskID, c.UserID, c.Content,
	).Scan(commentDest(&v)...)
	if err != nil {
		return nil, classify("create comment", err)
	}
	return &v, nil
}
