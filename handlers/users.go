package handlers

import "net/http"

// ListUsers godoc
// @Summary      List users
// @Description  Public profiles of every user, ordered by username
// @Tags         users
// @Produce      json
// @Success      200  {array}  models.UserProfile
// @Security     BearerAuth
// @Router       /api/users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.fail(w, r, err, "User")
		return
	}
	respondJSON(w, http.StatusOK, users)
}
