package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk client configuration, read from ~/.gdl.yaml.
// Flags override file values; the endpoint has no default because it is
// deployment-specific.
type Config struct {
	Endpoint string `yaml:"endpoint"`
	Database string `yaml:"database"`
}

// DefaultConfigPath returns ~/.gdl.yaml, or a relative fallback when the
// home directory cannot be resolved.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gdl.yaml"
	}
	return filepath.Join(home, ".gdl.yaml")
}

func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "gdl.db"
	}
	return filepath.Join(home, ".gdl", "gdl.db")
}

// LoadConfig reads the config file at path. A missing file yields defaults;
// a malformed file is an error.
func LoadConfig(path string) (Config, error) {
	cfg := Config{Database: defaultDatabasePath()}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Database == "" {
		cfg.Database = defaultDatabasePath()
	}
	return cfg, nil
}
