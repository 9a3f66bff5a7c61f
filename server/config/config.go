// Package config reads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"penney-bench/server/errs"
)

// Config is the typed view of the process environment.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"data/penney.db"`
	Port        string `env:"PORT" envDefault:"8080"`
	Workers     int    `env:"WORKERS" envDefault:"0"`
	HalfSize    int    `env:"HALF_SIZE" envDefault:"26"`
	Decks       int    `env:"DECKS" envDefault:"10000"`
	Seed        int64  `env:"SEED" envDefault:"42"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	NoColor     bool   `env:"NO_COLOR"`
}

// Load reads files (default ".env") into the environment without overriding
// variables already set, then parses the environment into a Config.
// Missing files are ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, errs.Configurationf("load %s: %v", f, err)
		}
	}
	return Parse()
}

// Parse reads the current environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errs.Configurationf("parse env: %v", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects values no command can run with.
func (c Config) Validate() error {
	if c.HalfSize <= 0 {
		return errs.Configurationf("HALF_SIZE must be > 0, got %d", c.HalfSize)
	}
	if c.Decks <= 0 {
		return errs.Configurationf("DECKS must be > 0, got %d", c.Decks)
	}
	if c.Workers < 0 {
		return errs.Configurationf("WORKERS must be >= 0, got %d", c.Workers)
	}
	if strings.TrimSpace(c.DatabaseURL) == "" && strings.TrimSpace(c.SQLitePath) == "" {
		return errs.Configurationf("one of DATABASE_URL or SQLITE_PATH is required")
	}
	return nil
}

// WorkerCount resolves Workers, where 0 means one per CPU.
func (c Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// UsePostgres reports whether the Postgres store is configured.
func (c Config) UsePostgres() bool { return strings.TrimSpace(c.DatabaseURL) != "" }

// StoreName names the configured backend for logs.
func (c Config) StoreName() string {
	if c.UsePostgres() {
		return "postgres"
	}
	return fmt.Sprintf("sqlite:%s", c.SQLitePath)
}
