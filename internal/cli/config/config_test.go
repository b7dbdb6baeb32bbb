package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazo1994/Creatory/internal/cli/types"
	"github.com/chazo1994/Creatory/internal/session"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultServer, cfg.Server)
	assert.False(t, cfg.IsAuthenticated())
	assert.Nil(t, cfg.User)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "stderr", cfg.Log.Output)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	cfg.Server = "http://studio.test:9000"
	cfg.AccessToken = "tok-1"
	cfg.User = &UserInfo{ID: "u-1", Email: "ada@example.com", DisplayName: "Ada"}
	cfg.WorkspaceID = "ws-1"
	cfg.ConversationID = "conv-1"
	cfg.MainThreadID = "main-1"
	cfg.QuickThreadID = "quick-1"
	cfg.Log.Level = "debug"
	require.NoError(t, cfg.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "http://studio.test:9000", loaded.Server)
	assert.Equal(t, "tok-1", loaded.AccessToken)
	require.NotNil(t, loaded.User)
	assert.Equal(t, "Ada", loaded.User.DisplayName)
	assert.Equal(t, "quick-1", loaded.QuickThreadID)
	assert.Equal(t, "debug", loaded.Log.Level)
	assert.Equal(t, path, loaded.Path())
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: http://file:1\nlog:\n  level: info\n"), 0600))

	t.Setenv("STUDIO_SERVER", "http://env:2")
	t.Setenv("STUDIO_LOG_LEVEL", "error")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env:2", cfg.Server)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed\n"), 0600))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestSnapshotRoundTrip(t *testing.T) {
	name := "Ada"
	snap := session.Snapshot{
		Token:          "tok",
		User:           &types.User{ID: "u-1", Email: "ada@example.com", DisplayName: &name},
		WorkspaceID:    "ws-1",
		ConversationID: "conv-1",
		MainThreadID:   "main-1",
		QuickThreadID:  "quick-1",
	}

	cfg := &Config{}
	cfg.ApplySnapshot(snap)
	assert.Equal(t, "Ada", cfg.User.DisplayName)

	got := cfg.Snapshot()
	assert.Equal(t, snap.Token, got.Token)
	assert.Equal(t, snap.QuickThreadID, got.QuickThreadID)
	require.NotNil(t, got.User)
	require.NotNil(t, got.User.DisplayName)
	assert.Equal(t, "Ada", *got.User.DisplayName)

	cfg.ApplySnapshot(session.Snapshot{})
	assert.Nil(t, cfg.User)
	assert.False(t, cfg.IsAuthenticated())
	assert.Empty(t, cfg.WorkspaceID)
}
