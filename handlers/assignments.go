package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"task-tracker/events"
	"task-tracker/models"
	"task-tracker/repository"
	"task-tracker/validation"
)

// AssignTask godoc
// @Summary      Assign a user to a task
// @Tags         assignments
// @Accept       json
// @Produce      json
// @Param        id          path  string                true  "Task ID"
// @Param        assignment  body  models.AssignRequest  true  "User to assign"
// @Success      201  {object}  models.AssignmentView
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/tasks/{id}/assignments [post]
func (h *Handler) AssignTask(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err, "Assignment")
		return
	}
	taskID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err, "Task")
		return
	}

	var req models.AssignRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err, "Assignment")
		return
	}
	assignee := uuid.MustParse(req.UserID)

	a, err := h.tasks.Assign(r.Context(), taskID, assignee)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Task or user not found")
		return
	}
	if err != nil {
		h.fail(w, r, err, "Assignment")
		return
	}

	subject := "You have been assigned a task"
	body := fmt.Sprintf("Hi %s,\n\nYou have been assigned to task %s.\n", a.User.Username, taskID)
	if err := h.mailer.Send(a.User.Email, subject, body); err != nil {
		h.log.Warn().Err(err).Str("task", taskID.String()).Str("assignee", assignee.String()).Msg("assignment email not sent")
	}

	h.publish(r, events.Event{Type: events.TaskAssigned, TaskID: taskID, UserID: userID, AssigneeID: &assignee})
	respondJSON(w, http.StatusCreated, a)
}

// UnassignTask godoc
// @Summary      Remove a user from a task
// @Tags         assignments
// @Param        id      path  string  true  "Task ID"
// @Param        userId  path  string  true  "Assigned user ID"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/tasks/{id}/assignments/{userId} [delete]
func (h *Handler) UnassignTask(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err, "Assignment")
		return
	}
	taskID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err, "Assignment")
		return
	}
	assignee, err := pathID(r, "userId")
	if err != nil {
		h.fail(w, r, err, "Assignment")
		return
	}

	if err := h.tasks.Unassign(r.Context(), taskID, assignee); err != nil {
		h.fail(w, r, err, "Assignment")
		return
	}

	h.publish(r, events.Event{Type: events.TaskUnassigned, TaskID: taskID, UserID: userID, AssigneeID: &assignee})
	w.WriteHeader(http.StatusNoContent)
}
