package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "surrealdb", cfg.Storage.Backend)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 10*time.Minute, cfg.Auth.GetTokenExpiry())
	assert.Equal(t, 30*time.Minute, cfg.Auth.GetResetTokenExpiry())
	assert.True(t, cfg.Auth.GetSlidingExpiry())
	assert.NoError(t, cfg.Validate())
}

func TestConfig_PortEnvOverride(t *testing.T) {
	t.Setenv("PORTAFOLIO_PORT", "9090")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestConfig_JWTSecretEnvOverrides(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "legacy")
	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)
	assert.Equal(t, "legacy", cfg.Auth.JWTSecret)

	t.Setenv("PORTAFOLIO_AUTH_JWT_SECRET", "preferred")
	cfg = NewDefaultConfig()
	applyEnvOverrides(cfg)
	assert.Equal(t, "preferred", cfg.Auth.JWTSecret)
}

func TestConfig_AdminEmailsEnv(t *testing.T) {
	t.Setenv("PORTAFOLIO_ADMIN_EMAILS", " root@example.com , ops@example.com,")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, []string{"root@example.com", "ops@example.com"}, cfg.Auth.AdminEmails)
	assert.True(t, cfg.Auth.IsAdminEmail("ROOT@example.com"))
	assert.False(t, cfg.Auth.IsAdminEmail("someone@example.com"))
}

func TestLoadConfig_MergesFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")

	require.NoError(t, os.WriteFile(base, []byte(`
environment = "staging"

[server]
port = 7000

[storage]
backend = "file"
data_path = "/tmp/portafolio"
`), 0o600))
	require.NoError(t, os.WriteFile(override, []byte(`
[server]
port = 7100

[auth]
token_expiry = "15m"
sliding_expiry = false
`), 0o600))

	cfg, err := LoadConfig(base, filepath.Join(dir, "missing.toml"), override)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, 7100, cfg.Server.Port)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/portafolio", cfg.Storage.DataPath)
	assert.Equal(t, 15*time.Minute, cfg.Auth.GetTokenExpiry())
	assert.False(t, cfg.Auth.GetSlidingExpiry())
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport="), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"unknown storage", func(c *Config) { c.Storage.Backend = "mongo" }, false},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }, false},
		{"redis without address", func(c *Config) { c.Cache.Backend = "redis" }, false},
		{"redis with address", func(c *Config) {
			c.Cache.Backend = "redis"
			c.Cache.RedisAddress = "localhost:6379"
		}, true},
		{"empty secret", func(c *Config) { c.Auth.JWTSecret = "" }, false},
		{"production default secret", func(c *Config) { c.Environment = "production" }, false},
		{"production real secret", func(c *Config) {
			c.Environment = "prod"
			c.Auth.JWTSecret = "a-real-secret"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestConfig_DurationFallbacks(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.TokenExpiry = "soon"
	cfg.Cache.TTL = "-5s"
	cfg.Scheduler.LogRetention = ""
	cfg.Clients.EODHD.Timeout = "x"

	assert.Equal(t, 10*time.Minute, cfg.Auth.GetTokenExpiry())
	assert.Equal(t, time.Minute, cfg.Cache.GetTTL())
	assert.Equal(t, 90*24*time.Hour, cfg.Scheduler.GetLogRetention())
	assert.Equal(t, 30*time.Second, cfg.Clients.EODHD.GetTimeout())
}

func TestLoadVersionFile(t *testing.T) {
	origVersion, origBuild, origCommit := Version, Build, GitCommit
	t.Cleanup(func() { Version, Build, GitCommit = origVersion, origBuild, origCommit })
	Version, Build, GitCommit = "dev", "unknown", "unknown"

	path := filepath.Join(t.TempDir(), ".version")
	require.NoError(t, os.WriteFile(path, []byte("# build info\nversion: 1.2.3\nbuild: 2026-01-01\ncommit: abc123\n"), 0o600))

	loadVersionFile(path)

	assert.Equal(t, VersionInfo{Version: "1.2.3", Build: "2026-01-01", Commit: "abc123"}, GetVersionInfo())
}
