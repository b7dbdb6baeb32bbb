package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "devserver.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9100\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, 12, cfg.Workflow.MaxSteps)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 150*time.Millisecond, cfg.Stream.EventDelay)
	assert.False(t, cfg.Seed.Enabled())
	assert.Equal(t, "127.0.0.1:9100", cfg.GetServerAddr())
}

func TestLoadReadsRepositoryConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "devserver.yaml"))
	require.NoError(t, err)
	assert.True(t, cfg.Seed.Enabled())
	assert.Equal(t, "demo@creatory.local", cfg.Seed.Email)
}

func TestEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "workflow:\n  max_steps: 3\n")
	t.Setenv("STUDIO_DEV_WORKFLOW_MAX_STEPS", "5")
	t.Setenv("STUDIO_DEV_STREAM_EVENT_DELAY", "0s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Workflow.MaxSteps)
	assert.Zero(t, cfg.Stream.EventDelay)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"mode", func(c *Config) { c.Server.Mode = "prod" }, "invalid server mode"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "invalid log format"},
		{"short secret", func(c *Config) { c.Auth.Secret = "short" }, "auth.secret"},
		{"ttl", func(c *Config) { c.Auth.TokenTTL = 0 }, "auth.token_ttl"},
		{"seed password", func(c *Config) { c.Seed = SeedConfig{Email: "a@b.c", Password: "x"} }, "seed.password"},
		{"max steps", func(c *Config) { c.Workflow.MaxSteps = 0 }, "workflow.max_steps"},
		{"event delay", func(c *Config) { c.Stream.EventDelay = -time.Second }, "stream.event_delay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
