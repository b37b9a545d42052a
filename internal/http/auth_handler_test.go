package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"booklib/internal/auth"
	"booklib/internal/store"
	"booklib/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuthHandler(t *testing.T) (*AuthHandler, *store.UserFS) {
	t.Helper()
	users := store.NewUserFS(filepath.Join(t.TempDir(), "users.json"), nil)
	return NewAuthHandler(users, testSecret, "admin", "admin123"), users
}

func sessionFromRecorder(t *testing.T, w *httptest.ResponseRecorder) *auth.SessionClaims {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "library_session" && c.Value != "" {
			claims, err := auth.ParseSession(testSecret, c.Value)
			require.NoError(t, err)
			return claims
		}
	}
	return nil
}

func TestAuthHandler_Register(t *testing.T) {
	h, _ := newAuthHandler(t)

	r := testutil.NewJSONRequest(http.MethodPost, "/api/register", map[string]string{
		"username": "alice",
		"password": "pw",
	})
	w := httptest.NewRecorder()
	h.Register(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User alice registered", testutil.DecodeBody(w)["message"])
}

func TestAuthHandler_RegisterDuplicate(t *testing.T) {
	h, users := newAuthHandler(t)
	_, err := users.Register(context.Background(), "alice", "pw")
	require.NoError(t, err)

	r := testutil.NewJSONRequest(http.MethodPost, "/api/register", map[string]string{
		"username": "alice",
		"password": "pw",
	})
	w := httptest.NewRecorder()
	h.Register(w, r)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	h, _ := newAuthHandler(t)

	r := testutil.NewJSONRequest(http.MethodPost, "/api/register", map[string]string{"username": "alice"})
	w := httptest.NewRecorder()
	h.Register(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestAuthHandler_Login(t *testing.T) {
	h, users := newAuthHandler(t)
	_, err := users.Register(context.Background(), "alice", "pw")
	require.NoError(t, err)

	r := testutil.NewJSONRequest(http.MethodPost, "/api/login", map[string]string{
		"username": "alice",
		"password": "pw",
	})
	w := httptest.NewRecorder()
	h.Login(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	body := testutil.DecodeBody(w)
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "file", body["source"])

	claims := sessionFromRecorder(t, w)
	require.NotNil(t, claims, "login must set the session cookie")
	assert.Equal(t, "alice", claims.Username)
	assert.False(t, claims.IsAdmin, "local login never grants admin")
}

func TestAuthHandler_LoginWrongPassword(t *testing.T) {
	h, users := newAuthHandler(t)
	_, err := users.Register(context.Background(), "alice", "pw")
	require.NoError(t, err)

	r := testutil.NewJSONRequest(http.MethodPost, "/api/login", map[string]string{
		"username": "alice",
		"password": "nope",
	})
	w := httptest.NewRecorder()
	h.Login(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, sessionFromRecorder(t, w))
}

func TestAuthHandler_LoginUnknownUser(t *testing.T) {
	h, _ := newAuthHandler(t)

	r := testutil.NewJSONRequest(http.MethodPost, "/api/login", map[string]string{
		"username": "nobody",
		"password": "pw",
	})
	w := httptest.NewRecorder()
	h.Login(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthHandler_AdminLogin(t *testing.T) {
	h, _ := newAuthHandler(t)

	r := testutil.NewJSONRequest(http.MethodPost, "/api/admin/login", map[string]string{
		"username": "admin",
		"password": "admin123",
	})
	w := httptest.NewRecorder()
	h.AdminLogin(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, testutil.DecodeBody(w)["is_admin"])

	claims := sessionFromRecorder(t, w)
	require.NotNil(t, claims)
	assert.True(t, claims.IsAdmin)
}

func TestAuthHandler_AdminLoginRejected(t *testing.T) {
	h, _ := newAuthHandler(t)

	r := testutil.NewJSONRequest(http.MethodPost, "/api/admin/login", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	w := httptest.NewRecorder()
	h.AdminLogin(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, sessionFromRecorder(t, w))
}

func TestAuthHandler_Logout(t *testing.T) {
	h, _ := newAuthHandler(t)

	w := httptest.NewRecorder()
	h.Logout(w, httptest.NewRequest(http.MethodPost, "/api/logout", nil))

	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "library_session", cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0, "logout must expire the cookie")
}

func TestAuthHandler_CheckAuth(t *testing.T) {
	h, _ := newAuthHandler(t)

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.CheckAuth(w, httptest.NewRequest(http.MethodGet, "/api/check-auth", nil))

		require.Equal(t, http.StatusOK, w.Code)
		body := testutil.DecodeBody(w)
		assert.Equal(t, false, body["is_admin"])
		assert.Nil(t, body["username"])
	})

	t.Run("admin session", func(t *testing.T) {
		r := testutil.AsAdmin(httptest.NewRequest(http.MethodGet, "/api/check-auth", nil), "admin")
		w := httptest.NewRecorder()
		h.CheckAuth(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		body := testutil.DecodeBody(w)
		assert.Equal(t, true, body["is_admin"])
		assert.Equal(t, "admin", body["username"])
	})
}
