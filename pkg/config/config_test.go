package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	cfg, err := NewLoader(filepath.Join(t.TempDir(), "missing.yaml")).Load()
	require.Nil(t, err)

	assert.Equal("localhost:8065", cfg.Server.Addr)
	assert.False(cfg.Server.HideTeamSidebar)
	assert.Equal(3*time.Second, cfg.Client.ToastTimeout)
	assert.Equal(time.Hour, cfg.Client.StaleAfter)
	assert.Equal(filepath.Join(Dir(), "todo.sqlite"), cfg.Server.DBFile)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	err := os.WriteFile(path, []byte(`
server:
  addr: ":9000"
  hide_team_sidebar: true
client:
  user: alice
  toast_timeout: 5s
log:
  level: debug
`), 0o600)
	require.Nil(t, err)

	cfg, err := NewLoader(path).Load()
	require.Nil(t, err)

	assert.Equal(":9000", cfg.Server.Addr)
	assert.True(cfg.Server.HideTeamSidebar)
	assert.Equal("alice", cfg.Client.User)
	assert.Equal(5*time.Second, cfg.Client.ToastTimeout)
	assert.Equal(zerolog.DebugLevel, cfg.Log.LogLevel())
}

func TestInvalidFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.Nil(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := NewLoader(path).Load()
	assert.NotNil(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("TODO_CLIENT_USER", "bob")

	cfg, err := NewLoader(filepath.Join(t.TempDir(), "missing.yaml")).Load()
	require.Nil(t, err)

	assert.Equal(t, "bob", cfg.Client.User)
}

func TestLogLevel(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	assert.Equal(zerolog.InfoLevel, LogConfig{}.LogLevel())
	assert.Equal(zerolog.WarnLevel, LogConfig{Level: "WARN"}.LogLevel())
	assert.Equal(zerolog.InfoLevel, LogConfig{Level: "loud"}.LogLevel())
}
