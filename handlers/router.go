package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter registers every API route. requireAuth guards everything except
// health, register and login.
func NewRouter(h *Handler, requireAuth mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)

	p := api.NewRoute().Subrouter()
	p.Use(requireAuth)

	p.HandleFunc("/auth/me", h.Me).Methods(http.MethodGet)
	p.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)

	p.HandleFunc("/tasks", h.GetTasks).Methods(http.MethodGet)
	p.HandleFunc("/tasks", h.CreateTask).Methods(http.MethodPost)
	p.HandleFunc("/tasks/{id}", h.GetTaskByID).Methods(http.MethodGet)
	p.HandleFunc("/tasks/{id}", h.UpdateTask).Methods(http.MethodPut)
	p.HandleFunc("/tasks/{id}", h.DeleteTask).Methods(http.MethodDelete)
	p.HandleFunc("/tasks/{id}/image", h.UploadTaskImage).Methods(http.MethodPost)
	p.HandleFunc("/tasks/{id}/assignments", h.AssignTask).Methods(http.MethodPost)
	p.HandleFunc("/tasks/{id}/assignments/{userId}", h.UnassignTask).Methods(http.MethodDelete)

	p.HandleFunc("/comments", h.GetComments).Methods(http.MethodGet)
	p.HandleFunc("/comments", h.CreateComment).Methods(http.MethodPost)

	p.HandleFunc("/users", h.ListUsers).Methods(http.MethodGet)

	return r
}
