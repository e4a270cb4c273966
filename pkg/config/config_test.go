package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 50, cfg.CacheSize)
	assert.Equal(t, 2, cfg.ViewportBuffer)
	assert.Equal(t, 400*time.Millisecond, cfg.ZoomDebounce)
	assert.Equal(t, 300*time.Millisecond, cfg.WheelDebounce)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
dpi: 96
cache_size: 20
wheel_debounce: 150ms
renderer: draft
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 96.0, cfg.DPI)
	assert.Equal(t, 20, cfg.CacheSize)
	assert.Equal(t, 150*time.Millisecond, cfg.WheelDebounce)
	assert.Equal(t, "draft", cfg.Renderer)
	// untouched keys keep their defaults
	assert.Equal(t, 400*time.Millisecond, cfg.ZoomDebounce)
	assert.Equal(t, 150, cfg.ThumbnailWidth)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Unknown key", "cache_sise: 10\n"},
		{"Bad value", "cache_size: 0\n"},
		{"Bad renderer", "renderer: cairo\n"},
		{"Inverted zoom range", "min_zoom: 6\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
