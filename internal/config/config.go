// Package config handles loading and parsing application configuration.
// It supports three sources (in priority order):
//  1. An explicit path, usually the --config flag of the serve command
//  2. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  3. The environment alone, when no file is given
//
// A .env file in the working directory, if present, is loaded into the
// environment before any of the above is read.
package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Supported values of Storage.Driver.
const (
	DriverSQLite3  = "sqlite3" // mattn/go-sqlite3, cgo
	DriverSQLite   = "sqlite"  // modernc.org/sqlite, pure Go
	DriverPostgres = "pgx"     // jackc/pgx/v5/stdlib
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	Storage    Storage    `yaml:"storage"`
	HTTPServer HTTPServer `yaml:"http_server"`
	Flash      Flash      `yaml:"flash"`

	// TemplateDir holds layouts/, partials/ and pages/.
	TemplateDir string `yaml:"template_dir" env:"TEMPLATE_DIR" env-default:"web/templates"`

	// StaticDir is served verbatim under /static/.
	StaticDir string `yaml:"static_dir" env:"STATIC_DIR" env-default:"web/static"`
}

// Storage selects the database driver and connection string.
type Storage struct {
	Driver string `yaml:"driver" env:"DATABASE_DRIVER" env-default:"sqlite3"`
	DSN    string `yaml:"dsn" env:"DATABASE_URL" env-required:"true"`

	MaxOpenConns int           `yaml:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleTime  time.Duration `yaml:"max_idle_time" env:"DATABASE_MAX_IDLE_TIME" env-default:"15m"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	Host string `yaml:"host" env:"HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"PORT" env-default:"8082"`

	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Addr is the TCP address the server listens on, e.g. "localhost:8082".
func (h HTTPServer) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// Flash configures the flash message cookie.
type Flash struct {
	CookieName string `yaml:"cookie_name" env:"FLASH_COOKIE_NAME" env-default:"_flash"`
	Secure     bool   `yaml:"secure" env:"FLASH_COOKIE_SECURE" env-default:"false"`
}

// Load reads the configuration. path may be empty, in which case
// CONFIG_PATH is consulted and, failing that, only the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config.Load: read .env: %w", err)
	}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config.Load: read env: %w", err)
		}
	} else {
		// Verify the file exists before trying to read it, so the message
		// names the missing file rather than a generic open error.
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config.Load: config file does not exist: %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: read %s: %w", path, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// MustLoad is Load that exits the process on failure.
// If this returns, the config is guaranteed valid.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("cannot read config: %s", err.Error())
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverSQLite3, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	switch c.Env {
	case "dev", "staging", "prod":
	default:
		return fmt.Errorf("unsupported env %q", c.Env)
	}
	return nil
}
