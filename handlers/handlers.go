package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"task-tracker/auth"
	"task-tracker/events"
	"task-tracker/middlewares"
	"task-tracker/models"
	"task-tracker/repository"
	"task-tracker/uploads"
	"task-tracker/utils"
	"task-tracker/validation"
)

type TaskStore interface {
	List(ctx context.Context, userID uuid.UUID, f models.TaskFilter) ([]models.TaskView, error)
	Get(ctx context.Context, id uuid.UUID) (*models.TaskDetail, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, t *models.Task) error
	Update(ctx context.Context, id uuid.UUID, req models.UpdateTaskRequest) (*models.Task, error)
	SetImage(ctx context.Context, id uuid.UUID, url string) (*models.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Assign(ctx context.Context, taskID, userID uuid.UUID) (*models.AssignmentView, error)
	Unassign(ctx context.Context, taskID, userID uuid.UUID) error
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]models.UserProfile, error)
}

type CommentStore interface {
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]models.CommentView, error)
	Create(ctx context.Context, c models.Comment) (*models.CommentView, error)
}

// Deps are the collaborators of Handler. Optional ones fall back to no-op
// implementations.
type Deps struct {
	Tasks    TaskStore
	Users    UserStore
	Comments CommentStore
	Tokens   *auth.TokenManager
	Sessions auth.SessionStore
	Events   events.Publisher
	Images   uploads.Store
	Mailer   utils.Mailer
	Log      zerolog.Logger
}

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	tasks    TaskStore
	users    UserStore
	comments CommentStore
	tokens   *auth.TokenManager
	sessions auth.SessionStore
	events   events.Publisher
	images   uploads.Store
	mailer   utils.Mailer
	log      zerolog.Logger
}

func New(d Deps) *Handler {
	h := &Handler{
		tasks:    d.Tasks,
		users:    d.Users,
		comments: d.Comments,
		tokens:   d.Tokens,
		sessions: d.Sessions,
		events:   d.Events,
		images:   d.Images,
		mailer:   d.Mailer,
		log:      d.Log,
	}
	if h.sessions == nil {
		h.sessions = auth.NoSessions{}
	}
	if h.events == nil {
		h.events = events.Discard{}
	}
	if h.mailer == nil {
		h.mailer = utils.NoMail{}
	}
	return h
}

type errorResponse struct {
	Error   string                  `json:"error"`
	Details []validation.FieldError `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, errorResponse{Error: msg})
}

// fail translates err into a response. Expected failures are answered
// directly; anything else is logged and hidden behind a generic message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, resource string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "Validation failed", Details: verr.Details})
	case errors.Is(err, repository.ErrNotFound):
		respondError(w, http.StatusNotFound, resource+" not found")
	case errors.Is(err, repository.ErrConflict):
		respondError(w, http.StatusConflict, resource+" already exists")
	default:
		h.log.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

var errNoUser = errors.New("no authenticated user on request context")

func currentUser(r *http.Request) (uuid.UUID, error) {
	id, ok := middlewares.UserID(r.Context())
	if !ok {
		return uuid.Nil, errNoUser
	}
	return id, nil
}

// publish emits e without tying its lifetime to the client connection.
// Failures are logged; the request has already succeeded.
func (h *Handler) publish(r *http.Request, e events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
	defer cancel()

	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if err := h.events.Publish(ctx, e); err != nil {
		h.log.Warn().Err(err).Str("event", string(e.Type)).Str("task", e.TaskID.String()).Msg("event not published")
	}
}
