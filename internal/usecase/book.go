package usecase

import (
	"context"
	"io"

	"booklib/internal/entity"
)

// CreateBookParams carries everything needed to add one book. Content and
// Filename are optional; Filename drives the stored file format.
type CreateBookParams struct {
	Title       string
	Author      string
	Genre       string
	Description string
	Cover       string
	Actor       string
	Content     io.Reader
	Filename    string
}

// BookText is the reader payload for one book.
type BookText struct {
	Text   string `json:"text"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// BookStore is the catalog contract.
// List filters case-insensitively over title/author/genre/description.
// GetText and ResolveFile share the same three-tier id resolution:
// metadata sidecar, literal content filename, then a scan for a sidecar
// whose embedded id matches.
type BookStore interface {
	List(ctx context.Context, search string) ([]entity.Book, error)
	Create(ctx context.Context, p CreateBookParams) (entity.Book, error)
	GetText(ctx context.Context, id string) (BookText, error)
	ResolveFile(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
}
