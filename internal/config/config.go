// Package config loads the optional .importmap.yaml project file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/phobologic/importmap/internal/lang"
)

// FileName is looked up in the analyzed root when no explicit path is given.
const FileName = ".importmap.yaml"

// Output formats.
const (
	FormatText    = "text"
	FormatMermaid = "mermaid"
	FormatTOON    = "toon"
	FormatAll     = "all"
)

// ErrUnknownFormat is returned by Validate for an unrecognised format.
var ErrUnknownFormat = errors.New("unknown output format")

// Config holds analysis and output settings.
type Config struct {
	Languages       []string `yaml:"languages"`
	MaxFileSize     int64    `yaml:"max_file_size"`
	DiagramMaxFiles int      `yaml:"diagram_max_files"`
	Format          string   `yaml:"format"`
	CoreFiles       int      `yaml:"core_files"`
	Workers         int      `yaml:"workers"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		MaxFileSize:     1_000_000,
		DiagramMaxFiles: 20,
		Format:          FormatText,
		CoreFiles:       10,
	}
}

// Load reads path, or FileName inside dir when path is a directory. Keys the
// file leaves out keep their defaults. A missing file yields Default().
func Load(path string) (*Config, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, FileName)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !slices.Contains([]string{FormatText, FormatMermaid, FormatTOON, FormatAll}, c.Format) {
		return fmt.Errorf("%w %q (want text, mermaid, toon or all)", ErrUnknownFormat, c.Format)
	}
	for _, name := range c.Languages {
		if _, ok := lang.Languages[name]; !ok {
			return fmt.Errorf("unsupported language %q", name)
		}
	}
	switch {
	case c.MaxFileSize < 0:
		return fmt.Errorf("max_file_size must not be negative")
	case c.DiagramMaxFiles < 0:
		return fmt.Errorf("diagram_max_files must not be negative")
	case c.CoreFiles < 0:
		return fmt.Errorf("core_files must not be negative")
	case c.Workers < 0:
		return fmt.Errorf("workers must not be negative")
	}
	return nil
}
