package handlers

import (
	"errors"
	"net/http"

	"task-tracker/auth"
	"task-tracker/middlewares"
	"task-tracker/models"
	"task-tracker/repository"
	"task-tracker/validation"
)

type userResponse struct {
	User models.UserProfile `json:"user"`
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request, code int, u *models.User) {
	token, sessionID, err := h.tokens.Issue(u.ID)
	if err != nil {
		h.fail(w, r, err, "User")
		return
	}
	if err := h.sessions.Save(r.Context(), sessionID, u.ID, h.tokens.TTL()); err != nil {
		h.fail(w, r, err, "User")
		return
	}
	respondJSON(w, code, models.AuthResponse{User: u.Profile(), Token: token})
}

// Register godoc
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        user  body  models.RegisterRequest  true  "Account details"
// @Success      201   {object}  models.AuthResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err, "User")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.fail(w, r, err, "User")
		return
	}
	u := &models.User{
		Email:        req.Email,
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: hash,
	}
	if err := h.users.Create(r.Context(), u); err != nil {
		h.fail(w, r, err, "User")
		return
	}

	h.log.Info().Str("user", u.ID.String()).Msg("user registered")
	h.issue(w, r, http.StatusCreated, u)
}

// Login godoc
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body  models.LoginRequest  true  "Email and password"
// @Success      200  {object}  models.AuthResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err, "User")
		return
	}

	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		h.fail(w, r, err, "User")
		return
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	h.issue(w, r, http.StatusOK, u)
}

// Me godoc
// @Summary   Current user
// @Tags      auth
// @Produce   json
// @Success   200  {object}  userResponse
// @Failure   401  {object}  errorResponse
// @Security  BearerAuth
// @Router    /api/auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err, "User")
		return
	}

	u, err := h.users.GetByID(r.Context(), userID)
	if errors.Is(err, repository.ErrNotFound) {
		// Token outlived its account.
		respondError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	if err != nil {
		h.fail(w, r, err, "User")
		return
	}
	respondJSON(w, http.StatusOK, userResponse{User: u.Profile()})
}

// Logout godoc
// @Summary   Log out
// @Tags      auth
// @Success   204
// @Security  BearerAuth
// @Router    /api/auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sid := middlewares.SessionID(r.Context()); sid != "" {
		if err := h.sessions.Revoke(r.Context(), sid); err != nil {
			h.fail(w, r, err, "Session")
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
