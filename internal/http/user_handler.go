package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"booklib/internal/usecase"
)

// UserHandler is the admin-only user management surface.
type UserHandler struct {
	users usecase.UserStore
}

func NewUserHandler(users usecase.UserStore) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /api/users and responds with a bare array of views.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.users.ListAll(r.Context())
	if err != nil {
		JSONFromError(w, err)
		return
	}
	JSON(w, http.StatusOK, views)
}

// UpdateRights handles PUT /api/users/{username}. Only the fields present
// in the body are changed.
func (h *UserHandler) UpdateRights(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/users/"
	username := strings.TrimPrefix(r.URL.Path, prefix)
	if username == "" || strings.Contains(username, "/") {
		http.NotFound(w, r)
		return
	}
	if unescaped, err := url.PathUnescape(username); err == nil {
		username = unescaped
	}

	var patch usecase.RightsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	user, err := h.users.UpdateRights(r.Context(), username, patch)
	if err != nil {
		JSONFromError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"message": "User rights updated",
		"user": map[string]any{
			"username":         user.Username,
			"is_admin":         user.IsAdmin,
			"has_subscription": user.HasSubscription,
		},
	})
}
