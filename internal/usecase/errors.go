package usecase

import "errors"

// Store errors. Handlers map these onto HTTP statuses with errors.Is;
// anything not in this list is treated as a storage failure.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
