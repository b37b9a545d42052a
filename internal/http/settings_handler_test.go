package http

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"booklib/internal/store"
	"booklib/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettingsHandler(t *testing.T) (*SettingsHandler, *store.SettingsFS) {
	t.Helper()
	dir := t.TempDir()
	s, err := store.NewSettingsFS(filepath.Join(dir, "database.json"),
		filepath.Join(dir, "backgrounds"), []string{"space1.svg"})
	require.NoError(t, err)
	return NewSettingsHandler(s), s
}

func TestSettingsHandler_Get(t *testing.T) {
	h, _ := newSettingsHandler(t)

	w := httptest.NewRecorder()
	h.Get(w, httptest.NewRequest(http.MethodGet, "/api/settings", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := testutil.DecodeBody(w)

	settings := body["settings"].(map[string]any)
	assert.Nil(t, settings["background"])
	assert.Equal(t, "default", settings["backgroundType"])

	backgrounds := body["availableBackgrounds"].([]any)
	require.Len(t, backgrounds, 1)
	first := backgrounds[0].(map[string]any)
	assert.Equal(t, "space1.svg", first["name"])
	assert.Equal(t, "/static/backgrounds/space1.svg", first["url"])
}

func TestSettingsHandler_SaveJSONPatch(t *testing.T) {
	h, _ := newSettingsHandler(t)

	r := testutil.NewJSONRequest(http.MethodPost, "/api/settings", map[string]string{
		"background": "/static/backgrounds/space1.svg",
	})
	w := httptest.NewRecorder()
	h.Save(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	body := testutil.DecodeBody(w)
	assert.Equal(t, "Settings saved", body["message"])

	settings := body["settings"].(map[string]any)
	assert.Equal(t, "/static/backgrounds/space1.svg", settings["background"])
	assert.Equal(t, "default", settings["backgroundType"], "unpatched field keeps its value")
}

func TestSettingsHandler_SaveUpload(t *testing.T) {
	h, s := newSettingsHandler(t)

	r := testutil.NewMultipartRequest(http.MethodPost, "/api/settings", nil,
		"background_file", "stars.png", []byte("png bytes"))
	w := httptest.NewRecorder()
	h.Save(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	body := testutil.DecodeBody(w)
	assert.Equal(t, "Background uploaded and saved", body["message"])

	settings := body["settings"].(map[string]any)
	assert.Equal(t, "/backgrounds/stars.png", settings["background"])
	assert.Equal(t, "custom", settings["backgroundType"])

	options, err := s.AvailableBackgrounds(r.Context())
	require.NoError(t, err)
	assert.Len(t, options, 2)
}

func TestSettingsHandler_SaveUploadMissingFile(t *testing.T) {
	h, _ := newSettingsHandler(t)

	r := testutil.NewMultipartRequest(http.MethodPost, "/api/settings",
		map[string]string{"unrelated": "field"}, "", "", nil)
	w := httptest.NewRecorder()
	h.Save(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "background_file is required")
}

func TestSettingsHandler_SaveUploadBadExtension(t *testing.T) {
	h, _ := newSettingsHandler(t)

	r := testutil.NewMultipartRequest(http.MethodPost, "/api/settings", nil,
		"background_file", "notes.txt", []byte("x"))
	w := httptest.NewRecorder()
	h.Save(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}
