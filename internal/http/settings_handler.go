package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"booklib/internal/usecase"
)

type SettingsHandler struct {
	store usecase.SettingsStore
}

func NewSettingsHandler(store usecase.SettingsStore) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// Get handles GET /api/settings, returning the settings document plus the
// selectable backgrounds.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Get(r.Context())
	if err != nil {
		JSONFromError(w, err)
		return
	}
	backgrounds, err := h.store.AvailableBackgrounds(r.Context())
	if err != nil {
		JSONFromError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"settings":             settings,
		"availableBackgrounds": backgrounds,
	})
}

// Save handles POST /api/settings: a multipart form with background_file
// uploads a new background image, a JSON body patches the document.
func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		h.saveUpload(w, r)
		return
	}

	var patch usecase.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	settings, err := h.store.Save(r.Context(), patch)
	if err != nil {
		JSONFromError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"message":  "Settings saved",
		"settings": settings,
	})
}

func (h *SettingsHandler) saveUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid multipart form", nil)
		return
	}
	file, header, err := r.FormFile("background_file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "background_file is required", nil)
			return
		}
		JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid background upload", nil)
		return
	}
	defer file.Close()

	settings, err := h.store.SaveBackground(r.Context(), header.Filename, file)
	if err != nil {
		JSONFromError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"message":  "Background uploaded and saved",
		"settings": settings,
	})
}
