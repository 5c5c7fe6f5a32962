package config

import (
	"errors"
	"fmt"
	"time"
)

// Observer holds configuration of the proxy observer binary.
type Observer struct {
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// ServerAddress is the authority server host:port.
	ServerAddress string `yaml:"server_address" env:"SERVER_ADDRESS"`

	DialTimeout time.Duration `yaml:"dial_timeout" env:"DIAL_TIMEOUT"`

	// ReadTimeout drops the connection when the authority is silent this long. 0 disables it.
	ReadTimeout time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
}

// DefaultObserver returns Observer config with sensible defaults.
func DefaultObserver() Observer {
	return Observer{
		LogLevel:      "info",
		ServerAddress: "127.0.0.1:7777",
		DialTimeout:   5 * time.Second,
	}
}

// LoadObserver loads observer config from a YAML file and applies
// HEALTHSYNC_OBSERVER_* environment overrides.
func LoadObserver(path string) (Observer, error) {
	cfg := DefaultObserver()

	if err := loadYAML(path, &cfg); err != nil {
		return cfg, err
	}
	if err := applyEnv(&cfg, EnvPrefix+"OBSERVER_"); err != nil {
		return cfg, err
	}
	if cfg.ServerAddress == "" {
		return cfg, errors.New("server_address is empty")
	}
	if cfg.DialTimeout <= 0 {
		return cfg, fmt.Errorf("dial_timeout must be positive, got %s", cfg.DialTimeout)
	}
	return cfg, nil
}
