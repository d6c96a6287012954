// Package config loads the console service configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ORGSPACE_GATEWAY_BASE_URL.
const EnvPrefix = "ORGSPACE"

// Config is the full service configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	Session SessionConfig `mapstructure:"session"`
	Redis   RedisConfig   `mapstructure:"redis"`
	NATS    NATSConfig    `mapstructure:"nats"`
	Logging LoggingConfig `mapstructure:"logging"`
	Web     WebConfig     `mapstructure:"web"`
	Reports ReportsConfig `mapstructure:"reports"`
	Auth    AuthConfig    `mapstructure:"auth"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// GatewayConfig points at the remote record API.
type GatewayConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// SessionConfig selects the session store.
type SessionConfig struct {
	// Store is "memory" or "redis".
	Store         string        `mapstructure:"store"`
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// RedisConfig is used when the session store is redis.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// NATSConfig holds change-event messaging settings.
type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	Enabled       bool          `mapstructure:"enabled"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// WebConfig holds console-facing settings.
type WebConfig struct {
	StaticDir   string   `mapstructure:"static_dir"`
	PublicURL   string   `mapstructure:"public_url"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	DevMode     bool     `mapstructure:"dev_mode"`
	// CookieName names the session cookie.
	CookieName   string `mapstructure:"cookie_name"`
	CookieDomain string `mapstructure:"cookie_domain"`
	CookieSecure bool   `mapstructure:"cookie_secure"`
	// Locale drives sorting and number formatting, e.g. "th-TH".
	Locale string `mapstructure:"locale"`
	// Timezone interprets masked booking dates, e.g. "Asia/Bangkok".
	Timezone string        `mapstructure:"timezone"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Location loads Timezone, falling back to UTC when it is unset.
func (w WebConfig) Location() (*time.Location, error) {
	if w.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(w.Timezone)
}

// ReportsConfig holds export settings.
type ReportsConfig struct {
	SigningSecret string `mapstructure:"signing_secret"`
	Organization  string `mapstructure:"organization"`
}

// AuthConfig holds optional token verification settings. With an empty
// JWTSecret tokens are decoded without verification.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// Load reads $ORGSPACE_CONFIG_DIR/config.yaml when present, then applies
// ORGSPACE_* environment overrides on top of defaults.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	configDir := os.Getenv(EnvPrefix + "_CONFIG_DIR")
	if configDir == "" {
		configDir = "/etc/orgspace"
	}
	v.SetConfigFile(filepath.Join(configDir, "config.yaml"))
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var problems []string
	if c.Gateway.BaseURL == "" {
		problems = append(problems, "gateway.base_url is required")
	}
	switch c.Session.Store {
	case "memory":
	case "redis":
		if c.Redis.URL == "" {
			problems = append(problems, "redis.url is required for the redis session store")
		}
	default:
		problems = append(problems, fmt.Sprintf("session.store %q is not memory or redis", c.Session.Store))
	}
	if c.Session.TTL <= 0 {
		problems = append(problems, "session.ttl must be positive")
	}
	if _, err := c.Web.Location(); err != nil {
		problems = append(problems, fmt.Sprintf("web.timezone: %v", err))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("gateway.base_url", "http://localhost:5000/api")
	v.SetDefault("gateway.timeout", "10s")
	v.SetDefault("gateway.user_agent", "orgspace-web")

	v.SetDefault("session.store", "memory")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.sweep_interval", "5m")

	v.SetDefault("redis.url", "redis://localhost:6379/0")

	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.max_reconnects", -1)
	v.SetDefault("nats.reconnect_wait", "2s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("web.static_dir", "./frontend/dist")
	v.SetDefault("web.public_url", "http://localhost:3000")
	v.SetDefault("web.cors_origins", []string{})
	v.SetDefault("web.dev_mode", false)
	v.SetDefault("web.cookie_name", "orgspace_session")
	v.SetDefault("web.cookie_domain", "")
	v.SetDefault("web.cookie_secure", true)
	v.SetDefault("web.locale", "th-TH")
	v.SetDefault("web.timezone", "Asia/Bangkok")
	v.SetDefault("web.cache_ttl", "30s")

	v.SetDefault("reports.signing_secret", "change-this-in-production")
	v.SetDefault("reports.organization", "Orgspace")

	v.SetDefault("auth.jwt_secret", "")
}
