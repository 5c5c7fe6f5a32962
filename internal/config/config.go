// Package config loads YAML configuration for the healthsync binaries.
//
// Precedence, lowest to highest: built-in defaults, YAML file, environment
// (HEALTHSYNC_* variables). A missing YAML file is not an error. LoadDotEnv
// can populate the environment from a .env file before loading.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "HEALTHSYNC_"

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Enabled turns on the death journal. Without a database the server runs
	// with an in-memory state only.
	Enabled  bool   `yaml:"enabled" env:"ENABLED"`
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	DBName   string `yaml:"dbname" env:"NAME"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE"`

	// JournalQueueSize is the capacity of the async journal writer queue.
	JournalQueueSize int `yaml:"journal_queue_size" env:"JOURNAL_QUEUE_SIZE"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultDatabase returns DatabaseConfig with local development defaults (disabled).
func DefaultDatabase() DatabaseConfig {
	return DatabaseConfig{
		Host:             "127.0.0.1",
		Port:             5432,
		User:             "healthsync",
		Password:         "healthsync",
		DBName:           "healthsync",
		SSLMode:          "disable",
		JournalQueueSize: 1024,
	}
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// into the process environment. Missing files are skipped; variables that
// are already set are not overwritten.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// loadYAML decodes path into cfg. A missing file leaves cfg untouched.
func loadYAML(path string, cfg any) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides tagged fields of target from variables named prefix+tag.
func applyEnv(target any, prefix string) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("parsing environment %s*: %w", prefix, err)
	}
	return nil
}
