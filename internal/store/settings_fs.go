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
	"sync"

	"booklib/internal/entity"
	"booklib/internal/usecase"
)

var allowedImageExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"svg":  true,
	"webp": true,
}

// database is the full shape of database.json. Settings is the only section
// today; keeping the wrapper preserves the on-disk format.
type database struct {
	Settings entity.Settings `json:"settings"`
}

// SettingsFS owns database.json and the uploaded-backgrounds directory.
type SettingsFS struct {
	dbPath         string
	backgroundsDir string
	defaults       []string
	mu             sync.Mutex
}

// NewSettingsFS creates the backgrounds directory if needed. defaults is the
// list of shipped background filenames declared in the environment.
func NewSettingsFS(dbPath, backgroundsDir string, defaults []string) (*SettingsFS, error) {
	if err := os.MkdirAll(backgroundsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backgrounds dir: %w", err)
	}
	return &SettingsFS{dbPath: dbPath, backgroundsDir: backgroundsDir, defaults: defaults}, nil
}

func (s *SettingsFS) Get(ctx context.Context) (entity.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, err := s.readDB()
	if err != nil {
		return entity.Settings{}, err
	}
	return db.Settings, nil
}

func (s *SettingsFS) Save(ctx context.Context, patch usecase.SettingsPatch) (entity.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.readDB()
	if err != nil {
		return entity.Settings{}, err
	}
	if patch.Background != nil {
		db.Settings.Background = patch.Background
	}
	if patch.BackgroundType != nil {
		db.Settings.BackgroundType = *patch.BackgroundType
	}
	if err := s.saveDB(db); err != nil {
		return entity.Settings{}, err
	}
	return db.Settings, nil
}

func (s *SettingsFS) SaveBackground(ctx context.Context, filename string, r io.Reader) (entity.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := filepath.Base(filename)
	if !allowedImageExtensions[fileExtension(name)] {
		return entity.Settings{}, fmt.Errorf("%w: unsupported image format %q", usecase.ErrInvalidInput, filename)
	}

	if err := writeContent(filepath.Join(s.backgroundsDir, name), r); err != nil {
		return entity.Settings{}, fmt.Errorf("save background: %w", err)
	}

	db, err := s.readDB()
	if err != nil {
		return entity.Settings{}, err
	}
	url := "/backgrounds/" + name
	db.Settings.Background = &url
	db.Settings.BackgroundType = "custom"
	if err := s.saveDB(db); err != nil {
		return entity.Settings{}, err
	}
	return db.Settings, nil
}

func (s *SettingsFS) AvailableBackgrounds(ctx context.Context) ([]entity.BackgroundOption, error) {
	options := []entity.BackgroundOption{}
	seen := map[string]bool{}
	for _, name := range s.defaults {
		options = append(options, entity.BackgroundOption{
			Name: name,
			URL:  "/static/backgrounds/" + name,
		})
		seen[name] = true
	}

	entries, err := os.ReadDir(s.backgroundsDir)
	if err != nil {
		return nil, fmt.Errorf("read backgrounds dir: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || seen[name] || !allowedImageExtensions[fileExtension(name)] {
			continue
		}
		options = append(options, entity.BackgroundOption{
			Name: name,
			URL:  "/backgrounds/" + name,
		})
		seen[name] = true
	}
	return options, nil
}

func (s *SettingsFS) readDB() (database, error) {
	defaults := database{Settings: entity.Settings{BackgroundType: "default"}}

	data, err := os.ReadFile(s.dbPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := s.saveDB(defaults); err != nil {
				return database{}, err
			}
			return defaults, nil
		}
		return database{}, fmt.Errorf("read settings file: %w", err)
	}

	var db database
	if err := json.Unmarshal(data, &db); err != nil {
		log.Printf("settings: ignoring unparsable %s: %v", s.dbPath, err)
		return defaults, nil
	}
	if db.Settings.BackgroundType == "" {
		db.Settings.BackgroundType = "default"
	}
	return db, nil
}

func (s *SettingsFS) saveDB(db database) error {
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(s.dbPath, data, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}
