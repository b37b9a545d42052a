package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"booklib/internal/entity"
	"booklib/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSettingsFS(t *testing.T, defaults []string) *SettingsFS {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSettingsFS(filepath.Join(dir, "database.json"), filepath.Join(dir, "backgrounds"), defaults)
	require.NoError(t, err)
	return s
}

func TestSettingsFS_GetCreatesDefaults(t *testing.T) {
	s := newTestSettingsFS(t, nil)

	settings, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, settings.Background)
	assert.Equal(t, "default", settings.BackgroundType)

	// First access writes the file with the settings wrapper.
	data, err := os.ReadFile(s.dbPath)
	require.NoError(t, err)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "settings")
}

func TestSettingsFS_SaveMergesPatch(t *testing.T) {
	s := newTestSettingsFS(t, nil)
	ctx := context.Background()

	bg := "/static/backgrounds/space1.svg"
	settings, err := s.Save(ctx, usecase.SettingsPatch{Background: &bg})
	require.NoError(t, err)
	require.NotNil(t, settings.Background)
	assert.Equal(t, bg, *settings.Background)
	assert.Equal(t, "default", settings.BackgroundType, "untouched field keeps its value")

	bgType := "custom"
	settings, err = s.Save(ctx, usecase.SettingsPatch{BackgroundType: &bgType})
	require.NoError(t, err)
	require.NotNil(t, settings.Background)
	assert.Equal(t, bg, *settings.Background, "untouched field keeps its value")
	assert.Equal(t, "custom", settings.BackgroundType)

	// Persisted across a fresh store on the same files.
	again, err := NewSettingsFS(s.dbPath, s.backgroundsDir, nil)
	require.NoError(t, err)
	settings, err = again.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, settings.Background)
	assert.Equal(t, bg, *settings.Background)
}

func TestSettingsFS_SaveBackground(t *testing.T) {
	s := newTestSettingsFS(t, nil)

	settings, err := s.SaveBackground(context.Background(), "stars.png", strings.NewReader("png bytes"))
	require.NoError(t, err)
	require.NotNil(t, settings.Background)
	assert.Equal(t, "/backgrounds/stars.png", *settings.Background)
	assert.Equal(t, "custom", settings.BackgroundType)

	data, err := os.ReadFile(filepath.Join(s.backgroundsDir, "stars.png"))
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))
}

func TestSettingsFS_SaveBackgroundRejectsBadExtension(t *testing.T) {
	s := newTestSettingsFS(t, nil)

	_, err := s.SaveBackground(context.Background(), "notes.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, usecase.ErrInvalidInput)
}

func TestSettingsFS_SaveBackgroundStripsPath(t *testing.T) {
	s := newTestSettingsFS(t, nil)

	_, err := s.SaveBackground(context.Background(), "../../escape.png", strings.NewReader("x"))
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(s.backgroundsDir, "escape.png"))
}

func TestSettingsFS_AvailableBackgrounds(t *testing.T) {
	s := newTestSettingsFS(t, []string{"space1.svg", "space2.svg"})

	require.NoError(t, os.WriteFile(filepath.Join(s.backgroundsDir, "custom.png"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.backgroundsDir, "notes.txt"), []byte("x"), 0o644))

	options, err := s.AvailableBackgrounds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []entity.BackgroundOption{
		{Name: "space1.svg", URL: "/static/backgrounds/space1.svg"},
		{Name: "space2.svg", URL: "/static/backgrounds/space2.svg"},
		{Name: "custom.png", URL: "/backgrounds/custom.png"},
	}, options)
}

func TestSettingsFS_AvailableBackgroundsDedupes(t *testing.T) {
	s := newTestSettingsFS(t, []string{"space1.svg"})

	// An upload shadowing a shipped name is listed once, as the default.
	require.NoError(t, os.WriteFile(filepath.Join(s.backgroundsDir, "space1.svg"), []byte("x"), 0o644))

	options, err := s.AvailableBackgrounds(context.Background())
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "/static/backgrounds/space1.svg", options[0].URL)
}

func TestSettingsFS_CorruptFileFallsBackToDefaults(t *testing.T) {
	s := newTestSettingsFS(t, nil)
	require.NoError(t, os.WriteFile(s.dbPath, []byte("{broken"), 0o644))

	settings, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, settings.Background)
	assert.Equal(t, "default", settings.BackgroundType)
}
