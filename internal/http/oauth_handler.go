package http

import (
	"log"
	"net/http"

	"github.com/google/uuid"

	"booklib/internal/auth"
	"booklib/internal/httpx"
	"booklib/internal/platform/google"
	"booklib/internal/usecase"
)

const oauthStateCookie = "oauth_state"

// OAuthHandler drives the Google login round trip. Failures redirect the
// browser back to the landing page with an error code in the query string;
// this flow is a navigation, not an API call.
type OAuthHandler struct {
	users         usecase.UserStore
	google        *google.Client
	secret        string
	adminUsername string
}

// NewOAuthHandler accepts a nil client when OAuth is not configured.
func NewOAuthHandler(users usecase.UserStore, client *google.Client, secret, adminUsername string) *OAuthHandler {
	return &OAuthHandler{
		users:         users,
		google:        client,
		secret:        secret,
		adminUsername: adminUsername,
	}
}

// Start handles GET /api/auth/google.
func (h *OAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		JSONError(w, http.StatusBadRequest, "OAUTH_NOT_CONFIGURED", "Google OAuth is not configured", nil)
		return
	}

	state := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusFound)
}

// Callback handles GET /api/auth/google/callback.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		h.fail(w, r, "oauth_not_configured")
		return
	}
	if errCode := r.URL.Query().Get("error"); errCode != "" {
		h.fail(w, r, errCode)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		h.fail(w, r, "no_code")
		return
	}
	if cookie, err := r.Cookie(oauthStateCookie); err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		h.fail(w, r, "state_mismatch")
		return
	}

	token, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		log.Printf("oauth: exchange failed: %v", err)
		h.fail(w, r, "no_token")
		return
	}
	identity, err := h.google.Userinfo(r.Context(), token)
	if err != nil {
		log.Printf("oauth: userinfo failed: %v", err)
		h.fail(w, r, "no_email")
		return
	}

	user, err := h.users.AuthenticateExternal(r.Context(), identity.Email, identity.Name)
	if err != nil {
		log.Printf("oauth: upsert failed: %v", err)
		h.fail(w, r, "oauth_error")
		return
	}

	// Admin bootstrap: the configured admin username is admin no matter
	// what the stored record says.
	isAdmin := user.IsAdmin || user.Username == h.adminUsername

	sessionToken, err := auth.IssueSession(h.secret, auth.SessionClaims{
		Username:   user.Username,
		Name:       user.Name,
		IsAdmin:    isAdmin,
		AuthMethod: "google",
	})
	if err != nil {
		h.fail(w, r, "oauth_error")
		return
	}
	httpx.SetSessionCookie(w, sessionToken)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *OAuthHandler) fail(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, "/?error="+code, http.StatusFound)
}
