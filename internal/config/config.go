package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines bot configuration.
type Config struct {
	DB       DBConfig       `yaml:"db"`
	NATS     NATSConfig     `yaml:"nats"`
	Log      LogConfig      `yaml:"log"`
	Projects ProjectsConfig `yaml:"projects"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type NATSConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// ProjectsConfig controls the project lifecycle module.
type ProjectsConfig struct {
	Enabled bool `yaml:"enabled"`

	// ConfirmTimeoutSeconds bounds the termination decision window.
	ConfirmTimeoutSeconds int `yaml:"confirm_timeout_seconds"`

	// DeleteOnTerminate hard-deletes the project document on confirmed
	// termination instead of marking it terminated.
	DeleteOnTerminate bool `yaml:"delete_on_terminate"`
}

// ConfirmWindow returns the decision window as a duration.
func (p ProjectsConfig) ConfirmWindow() time.Duration {
	return time.Duration(p.ConfirmTimeoutSeconds) * time.Second
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		DB: DBConfig{
			Path: "guardia.db",
		},
		NATS: NATSConfig{
			URL:           "nats://127.0.0.1:4222",
			SubjectPrefix: "guardia",
		},
		Log: LogConfig{
			Level: "info",
		},
		Projects: ProjectsConfig{
			Enabled:               true,
			ConfirmTimeoutSeconds: 15,
			DeleteOnTerminate:     false,
		},
	}

	if path := os.Getenv("GUARDIA_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if dbPath := os.Getenv("GUARDIA_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if url := os.Getenv("GUARDIA_NATS_URL"); url != "" {
		cfg.NATS.URL = url
	}
	if prefix := os.Getenv("GUARDIA_NATS_PREFIX"); prefix != "" {
		cfg.NATS.SubjectPrefix = prefix
	}
	if level := os.Getenv("GUARDIA_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if timeoutStr := os.Getenv("GUARDIA_CONFIRM_TIMEOUT_SECONDS"); timeoutStr != "" {
		timeout, err := strconv.Atoi(timeoutStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GUARDIA_CONFIRM_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Projects.ConfirmTimeoutSeconds = timeout
	}

	if cfg.Projects.ConfirmTimeoutSeconds <= 0 {
		return Config{}, fmt.Errorf("confirm_timeout_seconds must be positive, got %d", cfg.Projects.ConfirmTimeoutSeconds)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
