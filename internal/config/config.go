// Package config handles loading and managing mbox2db configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config represents the mbox2db configuration. The config file is optional;
// command-line flags override anything set here.
type Config struct {
	Output    OutputConfig    `toml:"output"`
	Retention RetentionConfig `toml:"retention"`

	// HomeDir is computed, not read from the file.
	HomeDir string `toml:"-"`
}

// OutputConfig controls where database files are written.
type OutputConfig struct {
	Dir string `toml:"dir"`
}

// RetentionConfig sets the default spam/trash retention toggles.
type RetentionConfig struct {
	IncludeSpam         bool `toml:"include_spam"`
	IncludeTrash        bool `toml:"include_trash"`
	IncludeSpamAndTrash bool `toml:"include_spam_and_trash"`
}

// DefaultHome returns the default mbox2db home directory.
// Respects the MBOX2DB_HOME environment variable.
func DefaultHome() string {
	if h := os.Getenv("MBOX2DB_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mbox2db"
	}
	return filepath.Join(home, ".mbox2db")
}

// Load reads the configuration from the specified file. If path is empty,
// the default location (~/.mbox2db/config.toml) is used; a missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	homeDir := DefaultHome()

	if path == "" {
		path = filepath.Join(homeDir, "config.toml")
	}

	cfg := &Config{
		HomeDir: homeDir,
		Output: OutputConfig{
			Dir: ".",
		},
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Output.Dir = expandPath(cfg.Output.Dir)
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "."
	}

	return cfg, nil
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
