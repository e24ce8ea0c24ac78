// Package config loads the optional xlfind configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the tunables a scan does not collect from the request.
type Config struct {
	// ScratchDir overrides the directory scratch copies are written to
	// (empty = system temp directory).
	ScratchDir string `yaml:"scratch_dir"`

	// MaxFileMB overrides the per-file size ceiling in mebibytes (0 = 500).
	MaxFileMB int64 `yaml:"max_file_mb"`

	// ColumnWidth is the report column width (0 = 30).
	ColumnWidth float64 `yaml:"column_width"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{}
}

// DefaultPath is the conventional config location under the user's config
// directory.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "xlfind", "config.yaml")
}

// Load reads the config at path. A missing file yields the defaults; a
// malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
