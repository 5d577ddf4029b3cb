package handlers

import (
	"errors"
	"net/http"

	"task-tracker/events"
	"task-tracker/repository"
	"task-tracker/uploads"
	"task-tracker/validation"
)

// UploadTaskImage godoc
// @Summary      Attach an image to a task
// @Description  Stores the image on Cloudinary when configured, on local disk otherwise
// @Tags         tasks
// @Accept       multipart/form-data
// @Produce      json
// @Param        id     path      string  true  "Task ID"
// @Param        image  formData  file    true  "png, jpg, gif or webp, at most 10MB"
// @Success      200    {object}  models.Task
// @Failure      400    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/tasks/{id}/image [post]
func (h *Handler) UploadTaskImage(w http.ResponseWriter, r *http.Request) {
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
	if h.images == nil {
		respondError(w, http.StatusServiceUnavailable, "Image uploads are not configured")
		return
	}

	// Form overhead on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, uploads.MaxImageSize+1<<20)
	if err := r.ParseMultipartForm(uploads.MaxImageSize); err != nil {
		h.fail(w, r, validation.Fail("image", "Unable to parse form; images must be at most 10MB"), "Task")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		h.fail(w, r, validation.Fail("image", "image is required"), "Task")
		return
	}
	defer file.Close()
	if header.Size > uploads.MaxImageSize {
		h.fail(w, r, validation.Fail("image", "image must be at most 10MB"), "Task")
		return
	}

	ok, err := h.tasks.Exists(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Task")
		return
	}
	if !ok {
		h.fail(w, r, repository.ErrNotFound, "Task")
		return
	}

	url, err := h.images.Save(r.Context(), id.String(), header.Filename, file)
	if errors.Is(err, uploads.ErrUnsupportedType) {
		h.fail(w, r, validation.Fail("image", "image must be a png, jpg, gif or webp file"), "Task")
		return
	}
	if err != nil {
		h.fail(w, r, err, "Task")
		return
	}

	task, err := h.tasks.SetImage(r.Context(), id, url)
	if err != nil {
		h.fail(w, r, err, "Task")
		return
	}

	h.publish(r, events.Event{Type: events.TaskUpdated, TaskID: id, UserID: userID, Task: task})
	out := *task
	cleanTask(&out)
	respondJSON(w, http.StatusOK, out)
}
