package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, []string{"*"}, cfg.Server.CORS.AllowedOrigins)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, time.Hour, cfg.Auth.JWT.TTL)
	require.Equal(t, "admin@mywedding.local", cfg.Seed.AdminEmail)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("server:\n  port: 9001\n  log_level: debug\nauth:\n  jwt:\n    secret: test-secret\n    access_token_ttl: 30m\ndatabase:\n  driver: postgres\n  postgres:\n    host: db.internal\n    database: wedding\n    username: wedding\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9001, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "test-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, 30*time.Minute, cfg.Auth.JWT.TTL)

	dbCfg := cfg.DatabaseServiceConfig()
	require.Equal(t, "postgres", dbCfg.Driver)
	require.Equal(t, "db.internal", dbCfg.Host)
	require.Equal(t, "wedding", dbCfg.Name)
}
