package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "languages: [python]\nformat: mermaid\nworkers: 4\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"python"}, cfg.Languages)
	assert.Equal(t, FormatMermaid, cfg.Format)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, int64(1_000_000), cfg.MaxFileSize)
	assert.Equal(t, 20, cfg.DiagramMaxFiles)
	assert.Equal(t, 10, cfg.CoreFiles)
}

func TestLoadExplicitPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("core_files: 3\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.CoreFiles)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "format: [", "parsing config file"},
		{"unknown format", "format: html\n", "unknown output format"},
		{"unknown language", "languages: [rust]\n", `unsupported language "rust"`},
		{"negative size", "max_file_size: -1\n", "max_file_size must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, err := Load(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateFormat(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Format = "xml"
	assert.ErrorIs(t, cfg.Validate(), ErrUnknownFormat)

	for _, f := range []string{FormatText, FormatMermaid, FormatTOON, FormatAll} {
		cfg.Format = f
		assert.NoError(t, cfg.Validate(), f)
	}
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))
}
