// Package config reads workprog settings from the environment. Optional
// .env and .env.local files in the working directory are loaded first;
// variables already set in the process win over file values.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Prefix is prepended to every variable name.
const Prefix = "WORKPROG_"

// DefaultEnvFiles are the dotenv files LoadConfig looks for.
var DefaultEnvFiles = []string{".env", ".env.local"}

type Config struct {
	// DBPath defaults to ~/.workprog/workprog.db.
	DBPath string `env:"DB"`
	User   string `env:"USER" envDefault:"local-user"`

	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:"127.0.0.1:8069"`
	HTTPReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// ImportSheet picks the workbook sheet for .xlsx imports; empty means the first.
	ImportSheet string `env:"IMPORT_SHEET"`
}

// LoadEnv loads the given dotenv files that exist and reports how many
// were found.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if stat, err := os.Stat(file); err == nil && !stat.IsDir() {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// LoadConfig loads DefaultEnvFiles and then parses the process environment.
func LoadConfig() (Config, error) {
	if _, err := LoadEnv(DefaultEnvFiles); err != nil {
		return Config{}, fmt.Errorf("loading env files: %w", err)
	}
	return Parse(nil)
}

// Parse reads the configuration from environ, or from the process
// environment when environ is nil.
func Parse(environ map[string]string) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{
		Prefix:      Prefix,
		Environment: environ,
	})
	if err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("finding home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".workprog", "workprog.db")
	}
	if _, err := cfg.Level(); err != nil {
		return Config{}, err
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("%sLOG_FORMAT must be text or json, got %q", Prefix, cfg.LogFormat)
	}
	return cfg, nil
}

// Level maps LogLevel onto a slog level.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("%sLOG_LEVEL: %w", Prefix, err)
	}
	return level, nil
}

// Logger builds the process logger writing to w.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
