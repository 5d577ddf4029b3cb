package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"task-tracker/models"
	"task-tracker/validation"
)

// GetComments godoc
// @Summary      List comments of a task
// @Description  Newest first, with author profiles
// @Tags         comments
// @Produce      json
// @Param        taskId  query  string  true  "Task ID"
// @Success      200  {array}   models.CommentView
// @Failure      400  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/comments [get]
func (h *Handler) GetComments(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	if err := validation.Query(values, "taskId"); err != nil {
		h.fail(w, r, err, "Comment")
		return
	}
	raw := values.Get("taskId")
	if raw == "" {
		h.fail(w, r, validation.Fail("taskId", "taskId is required"), "Comment")
		return
	}
	taskID, err := validation.UUID("taskId", raw)
	if err != nil {
		h.fail(w, r, err, "Comment")
		return
	}

	comments, err := h.comments.ListByTask(r.Context(), taskID)
	if err != nil {
		h.fail(w, r, err, "Comment")
		return
	}
	cleanComments(comments)
	respondJSON(w, http.StatusOK, comments)
}

// CreateComment godoc
// @Summary      Comment on a task
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        comment  body  models.CreateCommentRequest  true  "Comment"
// @Success      201  {object}  models.CommentView
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/comments [post]
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err, "Comment")
		return
	}

	var req models.CreateCommentRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err, "Comment")
		return
	}
	// A comment that is all markup would render as nothing.
	if validation.Sanitize(req.Content) == "" {
		h.fail(w, r, validation.Fail("content", "content cannot be empty"), "Comment")
		return
	}

	c, err := h.comments.Create(r.Context(), models.Comment{
		TaskID:  uuid.MustParse(req.TaskID),
		UserID:  userID,
		Content: req.Content,
	})
	if err != nil {
		// The only foreign key a caller controls is the task.
		h.fail(w, r, err, "Task")
		return
	}
	c.Content = validation.Sanitize(c.Content)
	respondJSON(w, http.StatusCreated, c)
}
