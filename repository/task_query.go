package repository

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"task-tracker/models"
)

const (
	taskColumns    = "id, title, description, status, priority, user_id, image_url, created_at, updated_at"
	taskColumnsT   = "t.id, t.title, t.description, t.status, t.priority, t.user_id, t.image_url, t.created_at, t.updated_at"
	profileColumns = "u.id, u.email, u.username, u.name"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildListQuery composes the task listing for one owner. The search term
// matches title or description as a case-insensitive substring.
func buildListQuery(userID uuid.UUID, f models.TaskFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT " + taskColumnsT + ", " + profileColumns +
		" FROM tasks t JOIN users u ON u.id = t.user_id WHERE t.user_id = $1")
	args := []any{userID}

	if f.Status != "" {
		args = append(args, string(f.Status))
		fmt.Fprintf(&sb, " AND t.status = $%d", len(args))
	}
	if f.Priority != "" {
		args = append(args, string(f.Priority))
		fmt.Fprintf(&sb, " AND t.priority = $%d", len(args))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+likeEscaper.Replace(q)+"%")
		n := len(args)
		fmt.Fprintf(&sb, " AND (t.title ILIKE $%d OR t.description ILIKE $%d)", n, n)
	}

	sb.WriteString(" ORDER BY t.created_at, t.id")
	return sb.String(), args
}

const assignmentsByTasksQuery = `SELECT a.id, a.task_id, a.user_id, a.created_at, ` + profileColumns + `
	FROM task_assignments a JOIN users u ON u.id = a.user_id
	WHERE a.task_id = ANY($1::uuid[])
	ORDER BY a.created_at, a.id`

func assignmentsArgs(taskIDs []uuid.UUID) []any {
	ids := make([]string, len(taskIDs))
	for i, id := range taskIDs {
		ids[i] = id.String()
	}
	return []any{ids}
}

// buildUpdateQuery writes only the supplied fields and bumps updated_at.
// The request must not be empty.
func buildUpdateQuery(id uuid.UUID, req models.UpdateTaskRequest) (string, []any) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if req.Title != nil {
		set("title", *req.Title)
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.Status != nil {
		set("status", string(*req.Status))
	}
	if req.Priority != nil {
		set("priority", string(*req.Priority))
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	return fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), taskColumns), args
}

// attachAssignments distributes assignments onto their tasks, keeping the
// order in which they were loaded. Every task ends up with a non-nil slice.
func attachAssignments(tasks []models.TaskView, assignments []models.AssignmentView) {
	index := make(map[uuid.UUID]int, len(tasks))
	for i := range tasks {
		tasks[i].Assignments = []models.AssignmentView{}
		index[tasks[i].ID] = i
	}
	for _, a := range assignments {
		if i, ok := index[a.TaskID]; ok {
			tasks[i].Assignments = append(tasks[i].Assignments, a)
		}
	}
}
