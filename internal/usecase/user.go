package usecase

import (
	"context"

	"booklib/internal/entity"
)

// RightsPatch updates only the fields that are non-nil.
type RightsPatch struct {
	IsAdmin         *bool `json:"is_admin"`
	HasSubscription *bool `json:"has_subscription"`
}

// AuthResult identifies which source matched a credential check.
type AuthResult struct {
	Username string
	Source   string
}

type UserStore interface {
	ListAll(ctx context.Context) ([]entity.UserView, error)
	Register(ctx context.Context, username, password string) (entity.User, error)
	// Authenticate checks environment-declared users before file users.
	// A known username with the wrong password yields ErrInvalidCredentials;
	// an unknown username yields ErrNotFound.
	Authenticate(ctx context.Context, username, password string) (AuthResult, error)
	// AuthenticateExternal upserts the account for an external identity.
	// Absence of a match is not an error; a new user is created.
	AuthenticateExternal(ctx context.Context, email, name string) (entity.User, error)
	UpdateRights(ctx context.Context, username string, patch RightsPatch) (entity.User, error)
}
