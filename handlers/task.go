package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"task-tracker/events"
	"task-tracker/models"
	"task-tracker/validation"
)

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	return validation.UUID(name, mux.Vars(r)[name])
}

// GetTasks godoc
// @Summary      List tasks
// @Description  Lists the caller's tasks with owners and assignees, oldest first
// @Tags         tasks
// @Produce      json
// @Param        q         query  string  false  "Search in title and description"
// @Param        status    query  string  false  "TODO, IN_PROGRESS or DONE"
// @Param        priority  query  string  false  "LOW, MEDIUM or HIGH"
// @Success      200  {array}   models.TaskView
// @Failure      400  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/tasks [get]
func (h *Handler) GetTasks(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err, "Task")
		return
	}

	values := r.URL.Query()
	if err := validation.Query(values, "q", "status", "priority"); err != nil {
		h.fail(w, r, err, "Task")
		return
	}
	q := models.TaskQuery{
		Q:        values.Get("q"),
		Status:   models.TaskStatus(values.Get("status")),
		Priority: models.TaskPriority(values.Get("priority")),
	}
	if err := validation.Struct(q); err != nil {
		h.fail(w, r, err, "Task")
		return
	}

	tasks, err := h.tasks.List(r.Context(), userID, q.Filter())
	if err != nil {
		h.fail(w, r, err, "Task")
		return
	}
	cleanTasks(tasks)
	respondJSON(w, http.StatusOK, tasks)
}

// GetTaskByID godoc
// @Summary      Get a task
// @Description  Returns a task with owner, assignees and comments
// @Tags         tasks
// @Produce      json
// @Param        id   path  string  true  "Task ID"
// @Success      200  {object}  models.TaskDetail
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/tasks/{id} [get]
func (h *Handler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err, "Task")
		return
	}

	task, err := h.tasks.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Task")
		return
	}
	cleanDetail(task)
	respondJSON(w, http.StatusOK, task)
}

// CreateTask godoc
// @Summary      Create a new task
// @Description  Creates a task owned by the caller. Status defaults to TODO and priority to MEDIUM.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        task  body  models.CreateTaskRequest  true  "Task to create"
// @Success      201   {object}  models.Task
// @Failure      400   {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/tasks [post]
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err, "Task")
		return
	}

	var req models.CreateTaskRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err, "Task")
		return
	}

	task := req.NewTask(userID)
	if err := h.tasks.Create(r.Context(), &task); err != nil {
		h.fail(w, r, err, "Task")
		return
	}

	h.publish(r, events.Event{Type: events.TaskCreated, TaskID: task.ID, UserID: userID, Task: &task})
	out := task
	cleanTask(&out)
	respondJSON(w, http.StatusCreated, out)
}

// UpdateTask godoc
// @Summary      Update a task
// @Description  Writes only the supplied fields; at least one is required
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "Task ID"
// @Param        task  body  models.UpdateTaskRequest  true  "Fields to change"
// @Success      200   {object}  models.Task
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/tasks/{id} [put]
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err, "Task")
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err, "Task")
		return
	}

	var req models.UpdateTaskRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err, "Task")
		return
	}
	if req.Empty() {
		h.fail(w, r, validation.Fail("", "At least one field must be provided for update"), "Task")
		return
	}

	task, err := h.tasks.Update(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, err, "Task")
		return
	}

	h.publish(r, events.Event{Type: events.TaskUpdated, TaskID: task.ID, UserID: userID, Task: task})
	out := *task
	cleanTask(&out)
	respondJSON(w, http.StatusOK, out)
}

// DeleteTask godoc
// @Summary      Delete a task
// @Tags         tasks
// @Param        id   path  string  true  "Task ID"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/tasks/{id} [delete]
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err, "Task")
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err, "Task")
		return
	}

	if err := h.tasks.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err, "Task")
		return
	}

	h.publish(r, events.Event{Type: events.TaskDeleted, TaskID: id, UserID: userID})
	w.WriteHeader(http.StatusNoContent)
}
