package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"task-tracker/models"
)

type TaskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner, t *models.Task, extra ...any) error {
	dest := []any{&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.UserID, &t.ImageURL, &t.CreatedAt, &t.UpdatedAt}
	return row.Scan(append(dest, extra...)...)
}

func profileDest(p *models.UserProfile) []any {
	return []any{&p.ID, &p.Email, &p.Username, &p.Name}
}

// List returns the tasks owned by userID that match f, each with its owner
// and assignees. It always issues at most two queries.
func (r *TaskRepository) List(ctx context.Context, userID uuid.UUID, f models.TaskFilter) ([]models.TaskView, error) {
	if userID == uuid.Nil {
		return nil, errors.New("list tasks: missing user id")
	}

	query, args := buildListQuery(userID, f)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("list tasks", err)
	}
	defer rows.Close()

	tasks := []models.TaskView{}
	ids := []uuid.UUID{}
	for rows.Next() {
		var v models.TaskView
		if err := scanTask(rows, &v.Task, profileDest(&v.User)...); err != nil {
			return nil, classify("scan task", err)
		}
		tasks = append(tasks, v)
		ids = append(ids, v.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list tasks", err)
	}

	assignments, err := r.assignmentsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	attachAssignments(tasks, assignments)
	return tasks, nil
}

func (r *TaskRepository) assignmentsFor(ctx context.Context, taskIDs []uuid.UUID) ([]models.AssignmentView, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, assignmentsByTasksQuery, assignmentsArgs(taskIDs)...)
	if err != nil {
		return nil, classify("load assignments", err)
	}
	defer rows.Close()

	var out []models.AssignmentView
	for rows.Next() {
		var a models.AssignmentView
		dest := append([]any{&a.ID, &a.TaskID, &a.UserID, &a.CreatedAt}, profileDest(&a.User)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, classify("scan assignment", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("load assignments", err)
	}
	return out, nil
}

// Get returns a task with its owner, assignees and comments (newest first).
func (r *TaskRepository) Get(ctx context.Context, id uuid.UUID) (*models.TaskDetail, error) {
	var d models.TaskDetail
	row := r.db.QueryRow(ctx,
		"SELECT "+taskColumnsT+", "+profileColumns+
			" FROM tasks t JOIN users u ON u.id = t.user_id WHERE t.id = $1", id)
	if err := scanTask(row, &d.Task, profileDest(&d.User)...); err != nil {
		return nil, classify("get task", err)
	}

	tasks := []models.TaskView{d.TaskView}
	assignments, err := r.assignmentsFor(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	attachAssignments(tasks, assignments)
	d.TaskView = tasks[0]

	d.Comments, err = listComments(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *TaskRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)", id).Scan(&ok)
	if err != nil {
		return false, classify("check task", err)
	}
	return ok, nil
}

// Create inserts t and fills in its generated id and timestamps.
func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO tasks (title, description, status, priority, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		t.Title, t.Description, string(t.Status), string(t.Priority), t.UserID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	return classify("create task", err)
}

func (r *TaskRepository) Update(ctx context.Context, id uuid.UUID, req models.UpdateTaskRequest) (*models.Task, error) {
	if req.Empty() {
		return nil, errors.New("update task: no fields to update")
	}

	query, args := buildUpdateQuery(id, req)
	var t models.Task
	if err := scanTask(r.db.QueryRow(ctx, query, args...), &t); err != nil {
		return nil, classify("update task", err)
	}
	return &t, nil
}

func (r *TaskRepository) SetImage(ctx context.Context, id uuid.UUID, url string) (*models.Task, error) {
	var t models.Task
	row := r.db.QueryRow(ctx,
		"UPDATE tasks SET image_url = $1, updated_at = now() WHERE id = $2 RETURNING "+taskColumns, url, id)
	if err := scanTask(row, &t); err != nil {
		return nil, classify("set task image", err)
	}
	return &t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return classify("delete task", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Assign links userID to the task. Unknown task or user yields ErrNotFound,
// an existing link ErrConflict.
func (r *TaskRepository) Assign(ctx context.Context, taskID, userID uuid.UUID) (*models.AssignmentView, error) {
	var a models.AssignmentView
	dest := append([]any{&a.ID, &a.TaskID, &a.UserID, &a.CreatedAt}, profileDest(&a.User)...)
	err := r.db.QueryRow(ctx,
		`WITH a AS (
			INSERT INTO task_assignments (task_id, user_id) VALUES ($1, $2)
			RETURNING id, task_id, user_id, created_at
		)
		SELECT a.id, a.task_id, a.user_id, a.created_at, `+profileColumns+`
		FROM a JOIN users u ON u.id = a.user_id`,
		taskID, userID,
	).Scan(dest...)
	if err != nil {
		return nil, classify("assign task", err)
	}
	return &a, nil
}

func (r *TaskRepository) Unassign(ctx context.Context, taskID, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM task_assignments WHERE task_id = $1 AND user_id = $2", taskID, userID)
	if err != nil {
		return classify("unassign task", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
