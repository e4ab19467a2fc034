package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const configFileName = ".roomtour.yaml"

// Config holds the CLI settings. Priority: ENV > YAML > env-default.
type Config struct {
	APIURL        string        `yaml:"api_url" env:"ROOMTOUR_API_URL" env-default:"http://localhost:3000/api"`
	QueuePath     string        `yaml:"queue_path" env:"ROOMTOUR_QUEUE_PATH"`
	CacheTTL      time.Duration `yaml:"cache_ttl" env:"ROOMTOUR_CACHE_TTL" env-default:"60s"`
	Timeout       time.Duration `yaml:"timeout" env:"ROOMTOUR_TIMEOUT" env-default:"10s"`
	ProbeInterval time.Duration `yaml:"probe_interval" env:"ROOMTOUR_PROBE_INTERVAL" env-default:"15s"`
	LogLevel      string        `yaml:"log_level" env:"ROOMTOUR_LOG_LEVEL" env-default:"warn"`
}

// loadConfig reads path, or ~/.roomtour.yaml when path is empty. A missing
// default file is fine; a missing explicit one is not.
func loadConfig(path string) (*Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, configFileName)
		}
	}

	if _, err := os.Stat(path); path != "" && err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if cfg.QueuePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config: queue path: %w", err)
		}
		cfg.QueuePath = filepath.Join(home, ".roomtour", "queue.db")
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.APIURL == "" {
		errs = append(errs, errors.New("api_url is required"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, errors.New("cache_ttl must not be negative"))
	}
	if c.ProbeInterval <= 0 {
		errs = append(errs, errors.New("probe_interval must be positive"))
	}
	return errors.Join(errs...)
}
