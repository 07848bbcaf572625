// Package config loads the traytime client configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

const AppName = "traytime"

// EnvPrefix namespaces the environment overrides, e.g. TRAYTIME_API_URL.
const EnvPrefix = "TRAYTIME"

type ClientConfig struct {
	// APIURL is the origin serving /api/settings.
	APIURL string `yaml:"api_url" envconfig:"API_URL"`

	// UserID, when set, is sent as a client principal on every request.
	UserID string `yaml:"user_id" envconfig:"USER_ID"`

	// Timeout bounds each load or save.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

func Default() *ClientConfig {
	return &ClientConfig{
		APIURL:  "http://localhost:3000",
		Timeout: 10 * time.Second,
	}
}

// DefaultPath is $XDG_CONFIG_HOME/traytime/config.yaml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// Load reads path (the default path when empty) and applies TRAYTIME_*
// environment overrides. Only an explicitly named file has to exist.
func Load(path string) (*ClientConfig, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("error reading config %s: %w", path, err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error reading environment: %w", err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = Default().Timeout
	}
	return cfg, nil
}
