// Package daemon manages the Inertia service lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all service configuration.
type Config struct {
	API     APIConfig     `toml:"api"`
	Storage StorageConfig `toml:"storage"`
	Engine  EngineConfig  `toml:"engine"`
	Logging LoggingConfig `toml:"logging"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host       string `toml:"host" envconfig:"INERTIA_API_HOST"`
	Port       int    `toml:"port" envconfig:"INERTIA_API_PORT"`
	Prometheus bool   `toml:"prometheus" envconfig:"INERTIA_API_PROMETHEUS"`
}

// StorageConfig controls the record store.
type StorageConfig struct {
	Dir string `toml:"dir" envconfig:"INERTIA_STORAGE_DIR"`
}

// EngineConfig tunes the momentum engine's exercise resolution.
type EngineConfig struct {
	QualifyingExerciseMinutes int `toml:"qualifying_exercise_minutes" envconfig:"INERTIA_QUALIFYING_EXERCISE_MINUTES"`
	DefaultTargetMinutes      int `toml:"default_target_minutes" envconfig:"INERTIA_DEFAULT_TARGET_MINUTES"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `toml:"level" envconfig:"INERTIA_LOG_LEVEL"`
	Format string `toml:"format" envconfig:"INERTIA_LOG_FORMAT"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:       "127.0.0.1",
			Port:       8385,
			Prometheus: false,
		},
		Storage: StorageConfig{
			Dir: inertiaHome(),
		},
		Engine: EngineConfig{
			QualifyingExerciseMinutes: 20,
			DefaultTargetMinutes:      30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig reads config from $INERTIA_HOME/config.toml, falling back
// to defaults, then applies INERTIA_* environment overrides on top.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(inertiaHome(), "config.toml")

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	// Env wins over file, file wins over defaults.
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("apply env overrides: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the config to $INERTIA_HOME/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(inertiaHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// inertiaHome returns the Inertia data directory.
func inertiaHome() string {
	if env := os.Getenv("INERTIA_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".inertia")
}

// InertiaHome is exported for use by other packages.
func InertiaHome() string {
	return inertiaHome()
}
