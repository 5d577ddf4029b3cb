package handlers

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"task-tracker/events"
	"task-tracker/middlewares"
	"task-tracker/models"
	"task-tracker/repository"
)

type fakeTasks struct {
	tasks       map[uuid.UUID]*models.Task
	assignments map[uuid.UUID][]uuid.UUID
	users       *fakeUsers
	lastFilter  models.TaskFilter
	err         error
}

func newFakeTasks(users *fakeUsers) *fakeTasks {
	return &fakeTasks{tasks: map[uuid.UUID]*models.Task{}, assignments: map[uuid.UUID][]uuid.UUID{}, users: users}
}

func (f *fakeTasks) List(_ context.Context, userID uuid.UUID, filter models.TaskFilter) ([]models.TaskView, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	q := strings.ToLower(strings.TrimSpace(filter.Query))
	out := []models.TaskView{}
	for _, t := range f.tasks {
		switch {
		case t.UserID != userID:
		case filter.Status != "" && t.Status != filter.Status:
		case filter.Priority != "" && t.Priority != filter.Priority:
		case q != "" && !strings.Contains(strings.ToLower(t.Title), q) && !strings.Contains(strings.ToLower(t.Description), q):
		default:
			out = append(out, models.TaskView{Task: *t, Assignments: []models.AssignmentView{}})
		}
	}
	return out, nil
}

func (f *fakeTasks) Get(_ context.Context, id uuid.UUID) (*models.TaskDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &models.TaskDetail{
		TaskView: models.TaskView{Task: *t, Assignments: []models.AssignmentView{}},
		Comments: []models.CommentView{},
	}, nil
}

func (f *fakeTasks) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.tasks[id]
	return ok, f.err
}

func (f *fakeTasks) Create(_ context.Context, t *models.Task) error {
	if f.err != nil {
		return f.err
	}
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeTasks) Update(_ context.Context, id uuid.UUID, req models.UpdateTaskRequest) (*models.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTasks) SetImage(_ context.Context, id uuid.UUID, url string) (*models.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t.ImageURL = url
	cp := *t
	return &cp, nil
}

func (f *fakeTasks) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTasks) Assign(_ context.Context, taskID, userID uuid.UUID) (*models.AssignmentView, error) {
	if _, ok := f.tasks[taskID]; !ok {
		return nil, repository.ErrNotFound
	}
	u, ok := f.users.byID[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for _, id := range f.assignments[taskID] {
		if id == userID {
			return nil, repository.ErrConflict
		}
	}
	f.assignments[taskID] = append(f.assignments[taskID], userID)
	return &models.AssignmentView{
		TaskAssignment: models.TaskAssignment{ID: uuid.New(), TaskID: taskID, UserID: userID, CreatedAt: time.Now()},
		User:           u.Profile(),
	}, nil
}

func (f *fakeTasks) Unassign(_ context.Context, taskID, userID uuid.UUID) error {
	ids := f.assignments[taskID]
	for i, id := range ids {
		if id == userID {
			f.assignments[taskID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeUsers struct {
	byID map[uuid.UUID]*models.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[uuid.UUID]*models.User{}} }

func (f *fakeUsers) add(email, username string) *models.User {
	u := &models.User{ID: uuid.New(), Email: email, Username: username}
	f.byID[u.ID] = u
	return u
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	for _, other := range f.byID {
		if other.Email == u.Email || other.Username == u.Username {
			return repository.ErrConflict
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) List(context.Context) ([]models.UserProfile, error) {
	out := []models.UserProfile{}
	for _, u := range f.byID {
		out = append(out, u.Profile())
	}
	return out, nil
}

type fakeComments struct {
	tasks    *fakeTasks
	comments []models.CommentView
}

func (f *fakeComments) ListByTask(_ context.Context, taskID uuid.UUID) ([]models.CommentView, error) {
	out := []models.CommentView{}
	for _, c := range f.comments {
		if c.TaskID == taskID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeComments) Create(_ context.Context, c models.Comment) (*models.CommentView, error) {
	if _, ok := f.tasks.tasks[c.TaskID]; !ok {
		return nil, repository.ErrNotFound
	}
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	v := models.CommentView{Comment: c}
	f.comments = append(f.comments, v)
	return &v, nil
}

type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordedEvents) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordedEvents) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type sentMail struct{ to, subject, body string }

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.sent = append(m.sent, sentMail{to, subject, body})
	return m.err
}

// asUser stands in for the bearer-token gate.
func asUser(id uuid.UUID) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middlewares.WithUser(r.Context(), id, "session")))
		})
	}
}

type testEnv struct {
	me       *models.User
	users    *fakeUsers
	tasks    *fakeTasks
	comments *fakeComments
	events   *recordedEvents
	mailer   *fakeMailer
	router   *mux.Router
}

func newTestEnv() *testEnv {
	users := newFakeUsers()
	me := users.add("me@example.com", "me")
	tasks := newFakeTasks(users)
	env := &testEnv{
		me:       me,
		users:    users,
		tasks:    tasks,
		comments: &fakeComments{tasks: tasks},
		events:   &recordedEvents{},
		mailer:   &fakeMailer{},
	}
	h := New(Deps{
		Tasks:    env.tasks,
		Users:    env.users,
		Comments: env.comments,
		Events:   env.events,
		Mailer:   env.mailer,
		Log:      zerolog.Nop(),
	})
	env.router = NewRouter(h, asUser(me.ID))
	return env
}

func (e *testEnv) addTask(title string) *models.Task {
	t := &models.Task{
		ID:       uuid.New(),
		Title:    title,
		Status:   models.StatusTodo,
		Priority: models.PriorityMedium,
		UserID:   e.me.ID,
	}
	e.tasks.tasks[t.ID] = t
	return t
}
