package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "afterus", cfg.Database.Database)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "canned", cfg.AI.Provider)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "0 3 * * *", cfg.Maintenance.SessionCleanupSchedule)
	assert.Equal(t, 90*24*time.Hour, cfg.Maintenance.AuditRetention)
	assert.True(t, cfg.Auth.UsesDevSecret())
}

func TestLoadFrom_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
ai:
  provider: openai
  model: gpt-4o-mini
log:
  level: debug
`), 0o600))

	t.Setenv("AFTERUS_AI_MODEL", "gpt-4o")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PORT", "6543")
	t.Setenv("AFTERUS_JWT_SECRET", "s3cret")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "gpt-4o", cfg.AI.Model)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.False(t, cfg.Auth.UsesDevSecret())
}

func TestServerConfig_Helpers(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8000, CORSOrigins: " http://a.test, ,http://b.test"}
	assert.Equal(t, "127.0.0.1:8000", s.Addr())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, s.Origins())
}
