package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "collaboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestInitializeDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Initialize(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 1*time.Hour, cfg.Cache.LockTTL)
	assert.Equal(t, 10*time.Second, cfg.Session.JoinTimeout)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "media/exports", cfg.Export.Dir)
}

func TestInitializeOverridesFromYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9999
  base_url: "https://boards.example.com"
  write_timeout: "3s"
  send_buffer: 64
database:
  host: db.internal
  port: 5433
  user: boards
  password: hunter2
  database: boards
session:
  ttl: "30m"
  join_timeout: "5s"
llm:
  model: claude-sonnet-4-5
  max_tokens: 2048
  temperature: 0.0
export:
  dir: /var/exports
  retention: "2h"
`)

	cfg, err := Initialize(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "https://boards.example.com", cfg.Server.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 64, cfg.Server.SendBuffer)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 5*time.Second, cfg.Session.JoinTimeout)
	assert.Equal(t, 2048, cfg.LLM.MaxTokens)
	assert.Equal(t, 0.0, cfg.LLM.Temperature)
	assert.Equal(t, "/var/exports", cfg.Export.Dir)
	assert.Equal(t, 2*time.Hour, cfg.Export.Retention)

	// Unset sections keep their defaults.
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
}

func TestInitializeExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "s3cret")
	path := writeConfig(t, `
database:
  password: "{{.TEST_DB_PASSWORD}}"
`)

	cfg, err := Initialize(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Password)
}

func TestInitializeInvalidDurationFallsBack(t *testing.T) {
	path := writeConfig(t, `
session:
  ttl: "not-a-duration"
`)

	cfg, err := Initialize(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1*time.Hour, cfg.Session.TTL)
}

func TestInitializeRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad port", "server:\n  port: -1\n"},
		{"unknown cache backend", "cache:\n  backend: memcached\n"},
		{"redis without addr", "cache:\n  backend: redis\n"},
		{"unknown llm provider", "llm:\n  provider: acme\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Initialize(context.Background(), writeConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestInitializeMalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [this is: not valid\n")
	_, err := Initialize(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidYAML)
}
