package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"booklib/internal/httpx"
	"booklib/internal/usecase"
)

// MaxUploadBytes bounds multipart bodies (book files and images).
const MaxUploadBytes = 16 << 20

type BookHandler struct {
	store usecase.BookStore
}

func NewBookHandler(store usecase.BookStore) *BookHandler {
	return &BookHandler{store: store}
}

// List handles GET /api/books?search= and responds with a bare array.
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.store.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		JSONFromError(w, err)
		return
	}
	JSON(w, http.StatusOK, books)
}

type createBookReq struct {
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author" validate:"required"`
	Genre       string `json:"genre" validate:"required"`
	Description string `json:"description"`
	Cover       string `json:"cover"`
}

// Create handles POST /api/books, accepting either a JSON body or a
// multipart form carrying the raw book file.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	params := usecase.CreateBookParams{}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
			JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid multipart form", nil)
			return
		}
		params.Title = r.FormValue("title")
		params.Author = r.FormValue("author")
		params.Genre = r.FormValue("genre")
		params.Description = r.FormValue("description")
		params.Cover = r.FormValue("cover")

		file, header, err := r.FormFile("book_file")
		if err == nil && header.Filename != "" {
			defer file.Close()
			params.Content = file
			params.Filename = header.Filename
		} else if err != nil && err != http.ErrMissingFile {
			JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid book file upload", nil)
			return
		}
	} else {
		var req createBookReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
			return
		}
		if details := ValidateStruct(req); len(details) > 0 {
			JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
			return
		}
		params.Title = req.Title
		params.Author = req.Author
		params.Genre = req.Genre
		params.Description = req.Description
		params.Cover = req.Cover
	}

	if session := httpx.SessionFrom(r); session != nil {
		params.Actor = session.Username
	}

	book, err := h.store.Create(r.Context(), params)
	if err != nil {
		JSONFromError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"message": "Book added",
		"id":      book.ID,
		"book":    book,
	})
}

// GetText handles GET /api/books/{id}/text.
func (h *BookHandler) GetText(w http.ResponseWriter, r *http.Request) {
	id, ok := bookIDFromPath(r.URL.Path, "/text")
	if !ok {
		http.NotFound(w, r)
		return
	}
	text, err := h.store.GetText(r.Context(), id)
	if err != nil {
		JSONFromError(w, err)
		return
	}
	JSON(w, http.StatusOK, text)
}

// Download handles GET /api/books/{id}/download, serving the content file
// inline. .txt files are forced to text/plain so browsers render them.
func (h *BookHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := bookIDFromPath(r.URL.Path, "/download")
	if !ok {
		http.NotFound(w, r)
		return
	}
	path, err := h.store.ResolveFile(r.Context(), id)
	if err != nil {
		JSONFromError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", "inline")
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	http.ServeFile(w, r, path)
}

// Delete handles DELETE /api/books?id=.
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := cleanBookID(r.URL.Query().Get("id"))
	if id == "" {
		JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "id is required", nil)
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		JSONFromError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"message": "Book deleted"})
}

// bookIDFromPath extracts the id from /api/books/{id}<suffix>. The id can
// itself contain dots, so only the trailing suffix is stripped.
func bookIDFromPath(path, suffix string) (string, bool) {
	const prefix = "/api/books/"
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return "", false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix)
	if raw == "" || strings.Contains(raw, "/") {
		return "", false
	}
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	id := cleanBookID(raw)
	if id == "" {
		return "", false
	}
	return id, true
}

// cleanBookID undoes reader-frontend quirks: stray quotes and padding.
func cleanBookID(id string) string {
	id = strings.Trim(id, `"`)
	id = strings.Trim(id, `'`)
	return strings.TrimSpace(id)
}
