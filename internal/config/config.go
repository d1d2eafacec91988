// Package config holds ypm's tool-level settings, read from an optional
// YAML file and overridden by command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ralt/ypm/internal/models"
	"github.com/ralt/ypm/internal/remote"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	// AppDir is the directory created under the user config dir
	AppDir = "ypm"
	// ConfigFile is the default config file name inside AppDir
	ConfigFile = "ypm.yaml"
	// IndexFile is the local source index inside IndexDir
	IndexFile = "packages.ini"
)

// Config holds the settings shared by every command
type Config struct {
	IndexDir      string `yaml:"index_dir"`      // Directory holding packages.ini
	DefaultSource string `yaml:"default_source"` // Source used when the index names none
	StagingDir    string `yaml:"staging_dir"`    // Downloads land here (empty = system temp dir)
	InstallRoot   string `yaml:"install_root"`   // Archives are unpacked under this directory
	Quiet         bool   `yaml:"quiet"`          // Disables download progress bars

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn or error
}

// Default returns a Config with defaults rooted in the user config directory
func Default() *Config {
	base := appDir()
	return &Config{
		IndexDir:      base,
		DefaultSource: remote.DefaultSource,
		InstallRoot:   filepath.Join(base, "root"),
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func appDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return AppDir
	}
	return filepath.Join(dir, AppDir)
}

// FindConfigFile returns the default config file path when it exists, or ""
func FindConfigFile() string {
	path := filepath.Join(appDir(), ConfigFile)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// Load reads the YAML file at path over the defaults. An empty path or a
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logrus.Debugf("Config file %s not found, using defaults", path)
			return config, nil
		}
		return nil, &models.YpmError{Type: models.ErrInvalidConfig, Subject: path, Err: err}
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, &models.YpmError{Type: models.ErrInvalidConfig, Subject: path, Err: fmt.Errorf("parsing YAML config: %w", err)}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that the required settings are present
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.IndexDir) == "" {
		problems = append(problems, "index_dir is empty")
	}
	if strings.TrimSpace(c.DefaultSource) == "" {
		problems = append(problems, "default_source is empty")
	}
	if strings.TrimSpace(c.InstallRoot) == "" {
		problems = append(problems, "install_root is empty")
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		problems = append(problems, fmt.Sprintf("logging.level: %v", err))
	}

	if len(problems) > 0 {
		return &models.YpmError{
			Type: models.ErrInvalidConfig,
			Err:  errors.New(strings.Join(problems, "; ")),
		}
	}
	return nil
}

// IndexPath returns the local source index file
func (c *Config) IndexPath() string {
	return filepath.Join(c.IndexDir, IndexFile)
}

// IndexLookup adapts IndexPath for the discovery driver
func (c *Config) IndexLookup() remote.IndexLookup {
	return func() (string, error) {
		if c.IndexDir == "" {
			return "", errors.New("index directory is not configured")
		}
		return c.IndexPath(), nil
	}
}

// LogLevel returns the configured logrus level, defaulting to Info
func (c *Config) LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.Logging.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
