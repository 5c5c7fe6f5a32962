package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/udisondev/healthsync/internal/health"
)

// GameServer holds all configuration for the authority server.
type GameServer struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Rules    health.Rules   `yaml:"rules"`

	// Entities are spawned into the world at startup.
	Entities []EntityConfig `yaml:"entities"`
}

// ServerConfig holds network and loop settings of the authority server.
type ServerConfig struct {
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// Network
	BindAddress string `yaml:"bind_address" env:"BIND_ADDRESS"`
	Port        int    `yaml:"port" env:"PORT"`

	// TickInterval is the world frame period.
	TickInterval time.Duration `yaml:"tick_interval" env:"TICK_INTERVAL"`

	// Write queue / timeouts
	WriteTimeout  time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`     // per-write deadline (default: 5s)
	ReadTimeout   time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`       // idle proxy disconnect, 0 disables (observers may stay silent)
	SendQueueSize int           `yaml:"send_queue_size" env:"SEND_QUEUE_SIZE"` // per-client outbox capacity (default: 256)

	// RequestQueueSize is the capacity of the forwarded request queue
	// drained by the single dispatcher goroutine.
	RequestQueueSize int `yaml:"request_queue_size" env:"REQUEST_QUEUE_SIZE"`
}

// EntityConfig describes one entity spawned at startup.
type EntityConfig struct {
	Name      string  `yaml:"name"`
	MaxHealth float64 `yaml:"max_health"`
	// Health is the starting health; nil means MaxHealth.
	Health *float64 `yaml:"health,omitempty"`
}

// DefaultGameServer returns GameServer config with sensible defaults.
func DefaultGameServer() GameServer {
	return GameServer{
		Server: ServerConfig{
			LogLevel:         "info",
			BindAddress:      "0.0.0.0",
			Port:             7777,
			TickInterval:     50 * time.Millisecond,
			WriteTimeout:     5 * time.Second,
			SendQueueSize:    256,
			RequestQueueSize: 1024,
		},
		Database: DefaultDatabase(),
		Rules:    health.DefaultRules(),
		Entities: []EntityConfig{
			{Name: "Training Dummy", MaxHealth: 100},
		},
	}
}

// LoadGameServer loads game server config from a YAML file and applies
// HEALTHSYNC_* environment overrides. If the file doesn't exist, defaults are used.
func LoadGameServer(path string) (GameServer, error) {
	cfg := DefaultGameServer()

	if err := loadYAML(path, &cfg); err != nil {
		return cfg, err
	}
	if err := applyEnv(&cfg.Server, EnvPrefix); err != nil {
		return cfg, err
	}
	if err := applyEnv(&cfg.Database, EnvPrefix+"DB_"); err != nil {
		return cfg, err
	}
	if err := applyEnv(&cfg.Rules, EnvPrefix+"RULES_"); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c GameServer) Validate() error {
	var errs []error

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("server.tick_interval must be positive, got %s", c.Server.TickInterval))
	}

	seen := make(map[string]struct{}, len(c.Entities))
	for i, e := range c.Entities {
		if e.Name == "" {
			errs = append(errs, fmt.Errorf("entities[%d]: name is empty", i))
		}
		if _, dup := seen[e.Name]; dup && e.Name != "" {
			errs = append(errs, fmt.Errorf("entities[%d]: duplicate name %q", i, e.Name))
		}
		seen[e.Name] = struct{}{}

		if e.MaxHealth <= 0 || math.IsInf(e.MaxHealth, 0) || math.IsNaN(e.MaxHealth) {
			errs = append(errs, fmt.Errorf("entities[%d] %q: max_health must be positive", i, e.Name))
		}
		if e.Health != nil && (math.IsNaN(*e.Health) || *e.Health < 0) {
			errs = append(errs, fmt.Errorf("entities[%d] %q: health must be non-negative", i, e.Name))
		}
	}

	return errors.Join(errs...)
}
