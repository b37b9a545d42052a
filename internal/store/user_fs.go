package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"booklib/internal/auth"
	"booklib/internal/entity"
	"booklib/internal/usecase"
)

// UserFS stores registered users as one JSON array in a single file and
// merges in the read-only environment-declared accounts at query time.
// Writes replace the whole file; the mutex keeps them from interleaving.
type UserFS struct {
	path string
	env  []auth.StaticUser
	mu   sync.Mutex
	now  func() time.Time
}

func NewUserFS(path string, envUsers []auth.StaticUser) *UserFS {
	return &UserFS{path: path, env: envUsers, now: time.Now}
}

func (s *UserFS) ListAll(ctx context.Context) ([]entity.UserView, error) {
	users, err := s.readUsers()
	if err != nil {
		return nil, err
	}

	views := []entity.UserView{}
	for _, u := range s.env {
		views = append(views, entity.UserView{
			Username: u.Username,
			Source:   "env",
		})
	}
	for _, u := range users {
		createdAt := u.CreatedAt
		views = append(views, entity.UserView{
			Username:        u.Username,
			Source:          "file",
			IsAdmin:         u.IsAdmin,
			HasSubscription: u.HasSubscription,
			CreatedAt:       &createdAt,
		})
	}
	return views, nil
}

func (s *UserFS) Register(ctx context.Context, username, password string) (entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return entity.User{}, fmt.Errorf("%w: username and password are required", usecase.ErrInvalidInput)
	}

	for _, u := range s.env {
		if u.Username == username {
			return entity.User{}, fmt.Errorf("%w: user %q", usecase.ErrConflict, username)
		}
	}

	users, err := s.readUsers()
	if err != nil {
		return entity.User{}, err
	}
	for _, u := range users {
		if u.Username == username {
			return entity.User{}, fmt.Errorf("%w: user %q", usecase.ErrConflict, username)
		}
	}

	user := entity.User{
		Username:  username,
		Password:  &password,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
		Role:      "user",
	}
	users = append(users, user)
	if err := s.saveUsers(users); err != nil {
		return entity.User{}, err
	}
	return user, nil
}

func (s *UserFS) Authenticate(ctx context.Context, username, password string) (usecase.AuthResult, error) {
	for _, u := range s.env {
		if u.Username == username && u.Password == password {
			return usecase.AuthResult{Username: username, Source: "env"}, nil
		}
	}

	users, err := s.readUsers()
	if err != nil {
		return usecase.AuthResult{}, err
	}
	for _, u := range users {
		if u.Username == username && u.Password != nil && *u.Password == password {
			return usecase.AuthResult{Username: username, Source: "file"}, nil
		}
	}

	known := false
	for _, u := range s.env {
		if u.Username == username {
			known = true
		}
	}
	for _, u := range users {
		if u.Username == username {
			known = true
		}
	}
	if known {
		return usecase.AuthResult{}, fmt.Errorf("%w: user %q", usecase.ErrInvalidCredentials, username)
	}
	return usecase.AuthResult{}, fmt.Errorf("%w: user %q", usecase.ErrNotFound, username)
}

func (s *UserFS) AuthenticateExternal(ctx context.Context, email, name string) (entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.readUsers()
	if err != nil {
		return entity.User{}, err
	}

	for i := range users {
		if users[i].Email == email || users[i].Username == email {
			users[i].Username = email
			users[i].Email = email
			users[i].Name = name
			users[i].AuthMethod = "google"
			if err := s.saveUsers(users); err != nil {
				return entity.User{}, err
			}
			return users[i], nil
		}
	}

	user := entity.User{
		Username:   email,
		Email:      email,
		Name:       name,
		CreatedAt:  s.now().UTC().Format(time.RFC3339),
		Role:       "user",
		AuthMethod: "google",
	}
	users = append(users, user)
	if err := s.saveUsers(users); err != nil {
		return entity.User{}, err
	}
	return user, nil
}

func (s *UserFS) UpdateRights(ctx context.Context, username string, patch usecase.RightsPatch) (entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.readUsers()
	if err != nil {
		return entity.User{}, err
	}
	for i := range users {
		if users[i].Username != username {
			continue
		}
		if patch.IsAdmin != nil {
			users[i].IsAdmin = *patch.IsAdmin
		}
		if patch.HasSubscription != nil {
			users[i].HasSubscription = *patch.HasSubscription
		}
		if err := s.saveUsers(users); err != nil {
			return entity.User{}, err
		}
		return users[i], nil
	}
	return entity.User{}, fmt.Errorf("%w: user %q", usecase.ErrNotFound, username)
}

func (s *UserFS) readUsers() ([]entity.User, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []entity.User{}, nil
		}
		return nil, fmt.Errorf("read users file: %w", err)
	}
	var users []entity.User
	if err := json.Unmarshal(data, &users); err != nil {
		// A mangled users file means nobody can log in; treat it as empty
		// rather than locking everyone out of registration too.
		log.Printf("users: ignoring unparsable %s: %v", s.path, err)
		return []entity.User{}, nil
	}
	return users, nil
}

func (s *UserFS) saveUsers(users []entity.User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write users file: %w", err)
	}
	return nil
}
