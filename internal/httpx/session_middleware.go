package httpx

import (
	"net/http"
	"time"

	"booklib/internal/auth"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "library_session"

// SessionMiddleware extracts the session cookie, validates it, and puts the
// claims on the request context. Missing or invalid cookies leave the
// request anonymous; gating happens per route.
func SessionMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := auth.ParseSession(secret, cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), claims)))
		})
	}
}

// AdminRequired rejects requests whose session does not carry the admin flag.
func AdminRequired(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := SessionFrom(r)
		if session == nil || !session.IsAdmin {
			JSONError(w, http.StatusForbidden, "FORBIDDEN", "Administrator access required")
			return
		}
		next(w, r)
	}
}

// SetSessionCookie installs the signed session token on the response.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
