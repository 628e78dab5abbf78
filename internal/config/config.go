package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultIndexPath     = "symres.db"
	DefaultSearchTimeout = 5 * time.Second
)

type Config struct {
	Workspace struct {
		Root string `yaml:"root"`
	} `yaml:"workspace"`
	Index struct {
		Path string `yaml:"path"`
	} `yaml:"index"`
	Resolver struct {
		SearchTimeout time.Duration `yaml:"search_timeout"`
	} `yaml:"resolver"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // text or json
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Workspace.Root = "."
	cfg.Index.Path = DefaultIndexPath
	cfg.Resolver.SearchTimeout = DefaultSearchTimeout
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return &cfg
}

// LoadConfig reads path on top of the defaults. A missing file is not an
// error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	// 3. Override with Environment Variables if present
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if root := os.Getenv("SYMRES_ROOT"); root != "" {
		c.Workspace.Root = root
	}
	if db := os.Getenv("SYMRES_DB"); db != "" {
		c.Index.Path = db
	}
	if level := os.Getenv("SYMRES_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if format := os.Getenv("SYMRES_LOG_FORMAT"); format != "" {
		c.Log.Format = format
	}
	if timeout := os.Getenv("SYMRES_SEARCH_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("SYMRES_SEARCH_TIMEOUT: %w", err)
		}
		c.Resolver.SearchTimeout = d
	}
	return nil
}
