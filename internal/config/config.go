// Package config handles loading and parsing application configuration.
// It supports two sources for the config file path (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// Any value in the file can be overridden by the environment variable named
// in its env:"..." tag.
package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aanand-mishra/student-roster/internal/types"
	"github.com/ilyakaznacheev/cleanenv"
)

// Storage backends accepted in storage.backend.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config is the root configuration structure.
//
// env-required:"true" means the app refuses to start if that value is
// missing — better to crash at boot than to silently use a wrong default.
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-required:"true"`

	Storage Storage `yaml:"storage"`

	HTTPServer `yaml:"http_server"`

	// Seed lists students added through the store at startup, in order.
	Seed []SeedStudent `yaml:"seed"`
}

// Storage selects and configures the student store backend.
type Storage struct {
	// Backend is "memory" (default) or "sqlite".
	Backend string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"memory"`

	// Path is the SQLite data source. ":memory:" keeps it process-local.
	// Ignored by the memory backend.
	Path string `yaml:"path" env:"STORAGE_PATH" env-default:":memory:"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr        string        `yaml:"address"      env:"HTTP_SERVER_ADDR" env-required:"true"`
	Timeout     time.Duration `yaml:"timeout"      env:"HTTP_SERVER_TIMEOUT" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_SERVER_IDLE_TIMEOUT" env-default:"60s"`
}

// SeedStudent is one entry of the seed list.
type SeedStudent struct {
	Name    string `yaml:"name"`
	Grade   int    `yaml:"grade"`
	Section string `yaml:"section"`
}

// NewStudent converts the entry into a create request for the store,
// which applies its usual validation.
func (s SeedStudent) NewStudent() types.NewStudent {
	name, grade, section := s.Name, s.Grade, s.Section
	return types.NewStudent{Name: &name, Grade: &grade, Section: &section}
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	// cleanenv.ReadConfig reads the YAML file, then applies env overrides,
	// env-default values and env-required checks.
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	switch cfg.Storage.Backend {
	case BackendMemory, BackendSQLite:
	default:
		return nil, fmt.Errorf("unknown storage backend %q: want %q or %q",
			cfg.Storage.Backend, BackendMemory, BackendSQLite)
	}

	return &cfg, nil
}

// MustLoad resolves the config path, loads it, and exits the process on
// any failure. If this function returns, the config is valid.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}
