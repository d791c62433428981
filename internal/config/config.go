// Package config holds the YAML configuration for the dashboard daemon.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Device is the framebuffer node, or a host:port of a serving
	// process to proxy through.
	Device string `yaml:"device"`

	// City queried from the weather API.
	City string `yaml:"city"`

	// APIKey for the weather API; empty serves demo data.
	APIKey string `yaml:"api_key"`

	// Refresh is a cron expression for overlay refreshes.
	Refresh string `yaml:"refresh"`

	// SnapshotDir, when set, receives a PNG snapshot of the canvas
	// after every refresh.
	SnapshotDir string `yaml:"snapshot_dir"`

	// Debug enables development logging.
	Debug bool `yaml:"debug"`
}

func Default() *Config {
	return &Config{
		Device:  "/dev/fb0",
		City:    "San Francisco",
		Refresh: "*/15 * * * *",
	}
}

// Normalize fills zero values so partially written configs behave.
func (c *Config) Normalize() {
	if c.Device == "" {
		c.Device = "/dev/fb0"
	}
	if c.City == "" {
		c.City = "San Francisco"
	}
	if c.Refresh == "" {
		c.Refresh = "*/15 * * * *"
	}
}

// Load reads a YAML config, writing a default file on first run.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if serr := Save(path, cfg); serr != nil {
				return cfg, serr
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes the config with owner-only permissions.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
