// Package config loads dayplan's configuration.
//
// Precedence, highest first:
//  1. environment variables (DAYPLAN_STORAGE_BACKEND, DAYPLAN_RELAY_PORT, ...)
//  2. a .env file in the working directory
//  3. the YAML config file (~/.config/dayplan/config.yaml)
//  4. defaults
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix         = "DAYPLAN_"
	maxConfigFileSize = 1024 * 1024
)

type Config struct {
	Storage Storage `koanf:"storage"`
	Log     Log     `koanf:"log"`
	Relay   Relay   `koanf:"relay"`
	NATS    NATS    `koanf:"nats"`
}

type Storage struct {
	Backend     string        `koanf:"backend" validate:"oneof=file memory redis postgres"`
	Dir         string        `koanf:"dir" validate:"required_if=Backend file"`
	Namespace   string        `koanf:"namespace"`
	RedisURL    string        `koanf:"redis_url" validate:"required_if=Backend redis"`
	PostgresDSN string        `koanf:"postgres_dsn" validate:"required_if=Backend postgres"`
	Watch       bool          `koanf:"watch"`
	WatchSettle time.Duration `koanf:"watch_settle" validate:"min=0"`
	Timeout     time.Duration `koanf:"timeout" validate:"min=0"`
}

type Log struct {
	Level      string `koanf:"level" validate:"oneof=debug info warn error"`
	Format     string `koanf:"format" validate:"oneof=console json"`
	File       string `koanf:"file"`
	MaxSize    int    `koanf:"max_size" validate:"min=0"`
	MaxBackups int    `koanf:"max_backups" validate:"min=0"`
	MaxAge     int    `koanf:"max_age" validate:"min=0"`
}

type Relay struct {
	Host        string `koanf:"host"`
	Port        int    `koanf:"port" validate:"min=1,max=65535"`
	UpstreamURL string `koanf:"upstream_url" validate:"required,url"`
	APIKey      string `koanf:"api_key"`
	APIVersion  string `koanf:"api_version" validate:"required"`
}

// NATS is optional: goals are only broadcast across processes when URL is
// set.
type NATS struct {
	URL          string `koanf:"url" validate:"omitempty,url"`
	GoalsSubject string `koanf:"goals_subject" validate:"required"`
}

// DefaultPath returns ~/.config/dayplan/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, "dayplan", "config.yaml"), nil
}

// Default returns the configuration used when nothing is configured.
func Default() Config {
	dataDir := filepath.Join(os.TempDir(), "dayplan")
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".local", "share", "dayplan")
	}
	return Config{
		Storage: Storage{
			Backend:     "file",
			Dir:         dataDir,
			WatchSettle: 100 * time.Millisecond,
			Timeout:     5 * time.Second,
		},
		Log: Log{
			Level:      "info",
			Format:     "console",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
		Relay: Relay{
			Host:        "localhost",
			Port:        3001,
			UpstreamURL: "https://api.anthropic.com/v1/messages",
			APIVersion:  "2023-06-01",
		},
		NATS: NATS{
			GoalsSubject: "dayplan.goals",
		},
	}
}

// Load reads the config file at path, or the default path when path is
// empty, then applies the .env file and environment overrides. A missing
// file is only an error when path was given explicitly.
func Load(path string) (*Config, error) {
	return load(path, ".env")
}

func load(path, dotenv string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", dotenv, err)
		}
	}

	def := Default()
	cfg := &def
	k := koanf.New(".")

	content, err := readFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case err != nil:
		return nil, err
	default:
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// DAYPLAN_STORAGE_REDIS_URL -> storage.redis_url
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		section, field, ok := strings.Cut(lower, "_")
		if !ok {
			return lower
		}
		return section + "." + field
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s is larger than %d bytes", path, maxConfigFileSize)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	return validate.Struct(c)
}
