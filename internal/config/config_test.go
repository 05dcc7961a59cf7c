package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults when the default file is missing", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		cfg, err := load("", "")
		require.NoError(t, err)
		def := Default()
		assert.Equal(t, &def, cfg)
	})

	t.Run("explicit missing file", func(t *testing.T) {
		_, err := load(filepath.Join(t.TempDir(), "nope.yaml"), "")
		assert.Error(t, err)
	})

	t.Run("yaml file", func(t *testing.T) {
		path := writeFile(t, "config.yaml", `
storage:
  backend: redis
  redis_url: redis://localhost:6379/1
  namespace: "alice:"
  timeout: 2s
log:
  level: debug
  format: json
relay:
  port: 8080
`)
		cfg, err := load(path, "")
		require.NoError(t, err)
		assert.Equal(t, "redis", cfg.Storage.Backend)
		assert.Equal(t, "redis://localhost:6379/1", cfg.Storage.RedisURL)
		assert.Equal(t, "alice:", cfg.Storage.Namespace)
		assert.Equal(t, 2*time.Second, cfg.Storage.Timeout)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, 8080, cfg.Relay.Port)
		// untouched fields keep their defaults
		assert.Equal(t, "2023-06-01", cfg.Relay.APIVersion)
		assert.Equal(t, "dayplan.goals", cfg.NATS.GoalsSubject)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := writeFile(t, "config.yaml", "relay:\n  port: 8080\n")
		t.Setenv("DAYPLAN_RELAY_PORT", "9090")
		t.Setenv("DAYPLAN_RELAY_API_KEY", "sk-env")
		t.Setenv("DAYPLAN_STORAGE_BACKEND", "memory")

		cfg, err := load(path, "")
		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Relay.Port)
		assert.Equal(t, "sk-env", cfg.Relay.APIKey)
		assert.Equal(t, "memory", cfg.Storage.Backend)
	})

	t.Run("dotenv file", func(t *testing.T) {
		dotenv := writeFile(t, ".env", "DAYPLAN_NATS_URL=nats://127.0.0.1:4222\n")
		t.Cleanup(func() { os.Unsetenv("DAYPLAN_NATS_URL") })

		cfg, err := load(writeFile(t, "config.yaml", "log:\n  level: info\n"), dotenv)
		require.NoError(t, err)
		assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := load(writeFile(t, "config.yaml", "storage: [oops"), "")
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Storage.Backend = "s3" }},
		{"redis without url", func(c *Config) { c.Storage.Backend = "redis" }},
		{"postgres without dsn", func(c *Config) { c.Storage.Backend = "postgres" }},
		{"file without dir", func(c *Config) { c.Storage.Dir = "" }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad port", func(c *Config) { c.Relay.Port = 70000 }},
		{"bad nats url", func(c *Config) { c.NATS.URL = "not a url" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("defaults are valid", func(t *testing.T) {
		cfg := Default()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("memory needs nothing else", func(t *testing.T) {
		cfg := Default()
		cfg.Storage = Storage{Backend: "memory"}
		assert.NoError(t, cfg.Validate())
	})
}
