package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	envPrefix           = "CATBATTLE_"
	DefaultTickInterval = 50 * time.Millisecond
	minTickInterval     = 5 * time.Millisecond
)

// Config is the process configuration. Gameplay constants live in Tuning.
type Config struct {
	Addr         string
	ClientDir    string
	DBPath       string
	LogFile      string
	LogLevel     string
	Tick         time.Duration
	AdminHash    string
	PublicURL    string
	SchemaOut    string
	HashPassword string
}

// LoadConfig reads .env (if present), then CATBATTLE_* variables, then
// flags. Later sources win.
func LoadConfig(args []string, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		Addr:      envOr("ADDR", ":8080"),
		ClientDir: envOr("CLIENT", ""),
		DBPath:    envOr("DB", "catbattle.db"),
		LogFile:   envOr("LOG", ""),
		LogLevel:  envOr("LOG_LEVEL", "info"),
		AdminHash: envOr("ADMIN_HASH", ""),
		PublicURL: envOr("PUBLIC_URL", "http://localhost:8080"),
	}
	tick, err := time.ParseDuration(envOr("TICK", DefaultTickInterval.String()))
	if err != nil {
		return nil, fmt.Errorf("%sTICK: %w", envPrefix, err)
	}
	cfg.Tick = tick

	fset := flag.NewFlagSet("catbattle", flag.ContinueOnError)
	fset.SetOutput(io.Discard)
	fset.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fset.StringVar(&cfg.ClientDir, "client", cfg.ClientDir, "Path to client directory (empty: API only)")
	fset.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path (empty: no journal)")
	fset.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Rotated log file (empty: stderr only)")
	fset.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fset.DurationVar(&cfg.Tick, "tick", cfg.Tick, "Simulation tick interval")
	fset.StringVar(&cfg.AdminHash, "admin-hash", cfg.AdminHash, "bcrypt hash of the operator password")
	fset.StringVar(&cfg.PublicURL, "public-url", cfg.PublicURL, "Base URL encoded into invite QR codes")
	fset.StringVar(&cfg.SchemaOut, "schema", "", "Write the protocol JSON schema to this path and exit")
	fset.StringVar(&cfg.HashPassword, "hash-password", "", "Print the bcrypt hash of this password and exit")
	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Tick < minTickInterval {
		return fmt.Errorf("tick %s below minimum %s", c.Tick, minTickInterval)
	}
	c.PublicURL = strings.TrimRight(c.PublicURL, "/")
	return nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
		return v
	}
	return fallback
}
