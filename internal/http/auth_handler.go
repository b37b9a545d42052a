package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"booklib/internal/auth"
	"booklib/internal/httpx"
	"booklib/internal/usecase"
)

// AuthHandler covers registration, local logins, logout and the auth probe.
// The admin account lives in the environment, not in the user store.
type AuthHandler struct {
	users         usecase.UserStore
	secret        string
	adminUsername string
	adminPassword string
}

func NewAuthHandler(users usecase.UserStore, secret, adminUsername, adminPassword string) *AuthHandler {
	return &AuthHandler{
		users:         users,
		secret:        secret,
		adminUsername: adminUsername,
		adminPassword: adminPassword,
	}
}

type credentialsReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if details := ValidateStruct(req); len(details) > 0 {
		JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		JSONFromError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"message": "User " + user.Username + " registered"})
}

// Login handles POST /api/login. A successful login issues a non-admin
// session; admin sessions come only from AdminLogin or the OAuth bootstrap.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	username := strings.TrimSpace(req.Username)
	password := strings.TrimSpace(req.Password)
	if username == "" || password == "" {
		JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "username and password are required", nil)
		return
	}

	result, err := h.users.Authenticate(r.Context(), username, password)
	if err != nil {
		JSONFromError(w, err)
		return
	}

	if err := h.issueSession(w, auth.SessionClaims{Username: result.Username}); err != nil {
		JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"message":  "Login successful",
		"username": result.Username,
		"source":   result.Source,
	})
}

// AdminLogin handles POST /api/admin/login against the environment-declared
// admin credentials.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	if strings.TrimSpace(req.Username) != h.adminUsername || strings.TrimSpace(req.Password) != h.adminPassword {
		JSONError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
		return
	}

	if err := h.issueSession(w, auth.SessionClaims{Username: h.adminUsername, IsAdmin: true}); err != nil {
		JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"message":  "Login successful",
		"is_admin": true,
	})
}

// Logout handles POST /api/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	httpx.ClearSessionCookie(w)
	JSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// CheckAuth handles GET /api/check-auth.
func (h *AuthHandler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"is_admin": false,
		"username": nil,
	}
	if session := httpx.SessionFrom(r); session != nil {
		resp["is_admin"] = session.IsAdmin
		resp["username"] = session.Username
	}
	JSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) issueSession(w http.ResponseWriter, claims auth.SessionClaims) error {
	token, err := auth.IssueSession(h.secret, claims)
	if err != nil {
		return err
	}
	httpx.SetSessionCookie(w, token)
	return nil
}
