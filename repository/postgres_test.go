package repository

import (
	"context"
	"errors"
	"os"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"task-tracker/db"
	"task-tracker/models"
)

// testPool connects to TEST_DATABASE_URL, applies the schema and empties the
// tables. Tests using it are skipped when the variable is unset.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, "TRUNCATE comments, task_assignments, tasks, users CASCADE"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return pool
}

func seedUser(t *testing.T, users *UserRepository, email, username string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Username: username, PasswordHash: "x"}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func seedTask(t *testing.T, tasks *TaskRepository, owner uuid.UUID, title, description string, status models.TaskStatus) *models.Task {
	t.Helper()
	task := &models.Task{Title: title, Description: description, Status: status, Priority: models.PriorityMedium, UserID: owner}
	if err := tasks.Create(context.Background(), task); err != nil {
		t.Fatalf("create task %q: %v", title, err)
	}
	return task
}

func titles(views []models.TaskView) []string {
	out := make([]string, len(views))
	for i, v := range views {
		out[i] = v.Title
	}
	sort.Strings(out)
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPostgres_TaskListFilters(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	tasks := NewTaskRepository(pool)

	ann := seedUser(t, users, "ann@example.com", "ann")
	bob := seedUser(t, users, "bob@example.com", "bob")

	seedTask(t, tasks, ann.ID, "Write report", "", models.StatusDone)
	seedTask(t, tasks, ann.ID, "Write code", "", models.StatusDone)
	seedTask(t, tasks, ann.ID, "Plan", "draft of the quarterly report", models.StatusTodo)
	seedTask(t, tasks, ann.ID, "Budget", `R&D "phase 2" costs 100%`, models.StatusTodo)
	seedTask(t, tasks, bob.ID, "Write report", "", models.StatusDone)

	tests := []struct {
		name   string
		filter models.TaskFilter
		want   []string
	}{
		{name: "all own tasks", filter: models.TaskFilter{}, want: []string{"Budget", "Plan", "Write code", "Write report"}},
		{name: "status and search", filter: models.TaskFilter{Status: models.StatusDone, Query: "report"}, want: []string{"Write report"}},
		{name: "case-insensitive over title and description", filter: models.TaskFilter{Query: "REPORT"}, want: []string{"Plan", "Write report"}},
		{name: "description only", filter: models.TaskFilter{Query: "Quarterly"}, want: []string{"Plan"}},
		{name: "ampersand and quotes", filter: models.TaskFilter{Query: `R&D "phase`}, want: []string{"Budget"}},
		{name: "percent is literal", filter: models.TaskFilter{Query: "100%"}, want: []string{"Budget"}},
		{name: "underscore is literal", filter: models.TaskFilter{Query: "write_"}, want: []string{}},
		{name: "priority", filter: models.TaskFilter{Priority: models.PriorityHigh}, want: []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tasks.List(ctx, ann.ID, tc.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if !equal(titles(got), tc.want) {
				t.Fatalf("got %v, want %v", titles(got), tc.want)
			}
			for _, v := range got {
				if v.UserID != ann.ID || v.User.Username != "ann" {
					t.Fatalf("foreign or unenriched task: %+v", v)
				}
			}
		})
	}
}

func TestPostgres_AssignmentsAndDetail(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	tasks := NewTaskRepository(pool)
	comments := NewCommentRepository(pool)

	ann := seedUser(t, users, "ann@example.com", "ann")
	bob := seedUser(t, users, "bob@example.com", "bob")
	first := seedTask(t, tasks, ann.ID, "First", "", models.StatusTodo)
	second := seedTask(t, tasks, ann.ID, "Second", "", models.StatusTodo)

	if _, err := tasks.Assign(ctx, first.ID, bob.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := tasks.Assign(ctx, first.ID, ann.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := tasks.Assign(ctx, second.ID, bob.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := tasks.Assign(ctx, first.ID, bob.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate assign: got %v", err)
	}
	if _, err := tasks.Assign(ctx, first.ID, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown user: got %v", err)
	}

	// One assignments query binds both task ids as a uuid array.
	views, err := tasks.List(ctx, ann.ID, models.TaskFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	counts := map[uuid.UUID]int{}
	for _, v := range views {
		counts[v.ID] = len(v.Assignments)
	}
	if counts[first.ID] != 2 || counts[second.ID] != 1 {
		t.Fatalf("assignment counts: %v", counts)
	}

	if _, err := comments.Create(ctx, models.Comment{TaskID: first.ID, UserID: bob.ID, Content: "older"}); err != nil {
		t.Fatalf("comment: %v", err)
	}
	if _, err := comments.Create(ctx, models.Comment{TaskID: first.ID, UserID: ann.ID, Content: "newer"}); err != nil {
		t.Fatalf("comment: %v", err)
	}
	if _, err := comments.Create(ctx, models.Comment{TaskID: uuid.New(), UserID: ann.ID, Content: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("comment on unknown task: got %v", err)
	}

	d, err := tasks.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(d.Assignments) != 2 || len(d.Comments) != 2 || d.Comments[0].Content != "newer" {
		t.Fatalf("detail: %+v", d)
	}

	if err := tasks.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := tasks.Get(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get deleted: got %v", err)
	}
}
