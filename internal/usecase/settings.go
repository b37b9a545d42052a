package usecase

import (
	"context"
	"io"

	"booklib/internal/entity"
)

// SettingsPatch changes only the keys that are present.
type SettingsPatch struct {
	Background     *string `json:"background"`
	BackgroundType *string `json:"backgroundType"`
}

type SettingsStore interface {
	Get(ctx context.Context) (entity.Settings, error)
	Save(ctx context.Context, patch SettingsPatch) (entity.Settings, error)
	// SaveBackground stores an uploaded image and points the background
	// setting at its served path.
	SaveBackground(ctx context.Context, filename string, r io.Reader) (entity.Settings, error)
	AvailableBackgrounds(ctx context.Context) ([]entity.BackgroundOption, error)
}
