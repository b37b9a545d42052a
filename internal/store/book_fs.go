package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"booklib/internal/entity"
	"booklib/internal/usecase"
)

const defaultCoverURL = "https://via.placeholder.com/150"

var allowedBookExtensions = map[string]bool{
	"txt": true,
}

// BookFS keeps the catalog as flat files in one directory: <id> holds the
// raw text and <id>.json the metadata sidecar. There is no cache; every
// call goes back to disk. The mutex serializes writers within this process,
// which is the only one touching the directory (the server holds a lock on
// the data dir).
type BookFS struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

func NewBookFS(dir string) (*BookFS, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create books dir: %w", err)
	}
	return &BookFS{dir: dir, now: time.Now}, nil
}

func (s *BookFS) List(ctx context.Context, search string) ([]entity.Book, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read books dir: %w", err)
	}

	books := []entity.Book{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		b, err := s.readMeta(e.Name())
		if err != nil {
			// One corrupt sidecar must not break the whole listing.
			log.Printf("catalog: skipping %s: %v", e.Name(), err)
			continue
		}
		books = append(books, b)
	}

	q := strings.ToLower(search)
	if q == "" {
		return books, nil
	}
	matched := []entity.Book{}
	for _, b := range books {
		if strings.Contains(strings.ToLower(b.Title), q) ||
			strings.Contains(strings.ToLower(b.Author), q) ||
			strings.Contains(strings.ToLower(b.Genre), q) ||
			strings.Contains(strings.ToLower(b.Description), q) {
			matched = append(matched, b)
		}
	}
	return matched, nil
}

func (s *BookFS) Create(ctx context.Context, p usecase.CreateBookParams) (entity.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	title := strings.TrimSpace(p.Title)
	author := strings.TrimSpace(p.Author)
	genre := strings.TrimSpace(p.Genre)
	if title == "" || author == "" || genre == "" {
		return entity.Book{}, fmt.Errorf("%w: title, author and genre are required", usecase.ErrInvalidInput)
	}

	format := "txt"
	if ext := fileExtension(p.Filename); allowedBookExtensions[ext] {
		format = ext
	}

	id := Slugify(title, format)
	contentPath := filepath.Join(s.dir, id)
	metaPath := contentPath + ".json"

	if fileExists(contentPath) || fileExists(metaPath) {
		return entity.Book{}, fmt.Errorf("%w: book %q", usecase.ErrConflict, title)
	}

	savedFile := ""
	if p.Content != nil {
		if err := writeContent(contentPath, p.Content); err != nil {
			return entity.Book{}, fmt.Errorf("save book file: %w", err)
		}
		savedFile = id
	}

	cover := p.Cover
	if cover == "" {
		cover = defaultCoverURL
	}
	actor := p.Actor
	if actor == "" {
		actor = "admin"
	}

	book := entity.Book{
		ID:          id,
		Title:       title,
		Author:      author,
		Genre:       genre,
		Description: p.Description,
		Cover:       cover,
		AddedBy:     actor,
		AddedAt:     s.now().UTC().Format(time.RFC3339),
		BookFile:    savedFile,
		FileFormat:  format,
	}

	data, err := json.MarshalIndent(book, "", "  ")
	if err == nil {
		err = os.WriteFile(metaPath, data, 0o644)
	}
	if err != nil {
		// The content file must not outlive its metadata.
		if savedFile != "" {
			os.Remove(contentPath)
		}
		return entity.Book{}, fmt.Errorf("save book metadata: %w", err)
	}
	return book, nil
}

func (s *BookFS) GetText(ctx context.Context, id string) (usecase.BookText, error) {
	if !validID(id) {
		return usecase.BookText{}, fmt.Errorf("%w: book %q", usecase.ErrNotFound, id)
	}

	// Tier 1: metadata sidecar addressed by id.
	if b, err := s.readMeta(id + ".json"); err == nil && b.BookFile != "" {
		if text, err := os.ReadFile(filepath.Join(s.dir, b.BookFile)); err == nil {
			return usecase.BookText{Text: string(text), Title: b.Title, Author: b.Author}, nil
		}
	}

	// Tier 2: the id is itself a content filename.
	if !strings.HasSuffix(id, ".json") {
		if text, err := os.ReadFile(filepath.Join(s.dir, id)); err == nil {
			return usecase.BookText{Text: string(text), Title: stripBookExtension(id), Author: "Unknown"}, nil
		}
	}

	// Tier 3: scan sidecars for a matching embedded id (legacy/renamed files).
	b, err := s.scanForID(id)
	if err != nil {
		return usecase.BookText{}, err
	}
	text, err := os.ReadFile(filepath.Join(s.dir, b.BookFile))
	if err != nil {
		return usecase.BookText{}, fmt.Errorf("%w: book %q", usecase.ErrNotFound, id)
	}
	return usecase.BookText{Text: string(text), Title: b.Title, Author: b.Author}, nil
}

// ResolveFile returns the on-disk path of the content file for id, using
// the same resolution order as GetText.
func (s *BookFS) ResolveFile(ctx context.Context, id string) (string, error) {
	if !validID(id) {
		return "", fmt.Errorf("%w: book %q", usecase.ErrNotFound, id)
	}

	if b, err := s.readMeta(id + ".json"); err == nil && b.BookFile != "" {
		path := filepath.Join(s.dir, b.BookFile)
		if fileExists(path) {
			return path, nil
		}
	}

	if !strings.HasSuffix(id, ".json") {
		path := filepath.Join(s.dir, id)
		if fileExists(path) {
			return path, nil
		}
	}

	b, err := s.scanForID(id)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, b.BookFile)
	if !fileExists(path) {
		return "", fmt.Errorf("%w: book %q", usecase.ErrNotFound, id)
	}
	return path, nil
}

func (s *BookFS) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !validID(id) {
		return fmt.Errorf("%w: book %q", usecase.ErrNotFound, id)
	}

	b, err := s.readMeta(id + ".json")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: book %q", usecase.ErrNotFound, id)
		}
		return fmt.Errorf("read book metadata: %w", err)
	}

	if err := os.Remove(filepath.Join(s.dir, id+".json")); err != nil {
		return fmt.Errorf("delete book metadata: %w", err)
	}
	if b.BookFile != "" {
		if err := os.Remove(filepath.Join(s.dir, b.BookFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete book file: %w", err)
		}
	}
	return nil
}

func (s *BookFS) readMeta(name string) (entity.Book, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return entity.Book{}, err
	}
	var b entity.Book
	if err := json.Unmarshal(data, &b); err != nil {
		return entity.Book{}, fmt.Errorf("parse %s: %w", name, err)
	}
	return b, nil
}

func (s *BookFS) scanForID(id string) (entity.Book, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return entity.Book{}, fmt.Errorf("read books dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		b, err := s.readMeta(e.Name())
		if err != nil || b.ID != id || b.BookFile == "" {
			continue
		}
		return b, nil
	}
	return entity.Book{}, fmt.Errorf("%w: book %q", usecase.ErrNotFound, id)
}

func writeContent(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// fileExtension returns the lowercased extension without the dot, or "".
func fileExtension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

func stripBookExtension(name string) string {
	if ext := fileExtension(name); allowedBookExtensions[ext] {
		return name[:len(name)-len(ext)-1]
	}
	return name
}

// validID rejects anything that could escape the catalog directory.
func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}
