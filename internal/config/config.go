// Package config loads client settings from a YAML file and the
// environment. Environment variables win over file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds everything the client needs to run.
type Config struct {
	API struct {
		BaseURL           string        `yaml:"base_url" env:"SMS_API_BASE_URL" env-default:"http://localhost:8080"`
		Timeout           time.Duration `yaml:"timeout" env:"SMS_API_TIMEOUT" env-default:"30s"`
		RequestsPerSecond float64       `yaml:"requests_per_second" env:"SMS_API_RPS" env-default:"10"`
	} `yaml:"api"`

	Data struct {
		Dir string `yaml:"dir" env:"SMS_DATA_DIR"`
	} `yaml:"data"`

	Log struct {
		Level string `yaml:"level" env:"SMS_LOG_LEVEL" env-default:"warn"`
	} `yaml:"log"`
}

// Load reads path when it exists, then overlays the environment. An empty
// path loads from the environment alone.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: read %s: %w", path, err)
			}
			return cfg.withDefaults()
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: read environment: %w", err)
	}
	return cfg.withDefaults()
}

func (c Config) withDefaults() (Config, error) {
	if c.Data.Dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("config: resolve home dir: %w", err)
		}
		c.Data.Dir = filepath.Join(home, ".sms")
	}
	return c, nil
}

// CachePath is the location of the evaluation cache database.
func (c Config) CachePath() string { return filepath.Join(c.Data.Dir, "cache.db") }

// PrefsPath is the location of the encrypted preferences document.
func (c Config) PrefsPath() string { return filepath.Join(c.Data.Dir, "prefs.bin") }
