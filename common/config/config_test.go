package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ORGSPACE_CONFIG_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, ":3000", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "th-TH", cfg.Web.Locale)
	assert.Equal(t, "orgspace_session", cfg.Web.CookieName)

	loc, err := cfg.Web.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Bangkok", loc.String())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
gateway:
  base_url: https://records.example.com/api
session:
  store: redis
  ttl: 2h
redis:
  url: redis://cache:6379/1
web:
  cors_origins: ["https://console.example.com"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("ORGSPACE_CONFIG_DIR", dir)
	t.Setenv("ORGSPACE_SERVER_PORT", "8081")
	t.Setenv("ORGSPACE_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://records.example.com/api", cfg.Gateway.BaseURL)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, []string{"https://console.example.com"}, cfg.Web.CORSOrigins)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0o600))
	t.Setenv("ORGSPACE_CONFIG_DIR", dir)

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Gateway: GatewayConfig{BaseURL: "http://api"},
		Session: SessionConfig{Store: "memory", TTL: time.Hour},
	}
	require.NoError(t, valid.Validate())

	tests := map[string]func(*Config){
		"missing base url":   func(c *Config) { c.Gateway.BaseURL = "" },
		"unknown store":      func(c *Config) { c.Session.Store = "etcd" },
		"redis without url":  func(c *Config) { c.Session.Store = "redis" },
		"zero ttl":           func(c *Config) { c.Session.TTL = 0 },
		"bad timezone":       func(c *Config) { c.Web.Timezone = "Mars/Olympus" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
