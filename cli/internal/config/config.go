// Package config loads and saves orgctl's profile file.
//
// Settings are read with viper, so every top-level key can be overridden by
// an ORGCTL_ environment variable (ORGCTL_API_URL, ORGCTL_TOKEN, ...).
// Profiles are written back with yaml.v3, leaving any other keys in the file
// untouched and never persisting environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/orgspace-systems/orgspace-stack/common/records"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ORGCTL"

// DefaultProfile is used when nothing else selects a profile.
const DefaultProfile = "default"

// Settings are the tunables shared by every profile.
type Settings struct {
	// APIURL is used when the active profile has none.
	APIURL string `mapstructure:"api_url"`
	// Token, when set, replaces the stored profile token. Meant for scripts.
	Token        string        `mapstructure:"token"`
	Output       string        `mapstructure:"output"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Locale       string        `mapstructure:"locale"`
	Timezone     string        `mapstructure:"timezone"`
	PublicURL    string        `mapstructure:"public_url"`
	ReportSecret string        `mapstructure:"report_secret"`
	Organization string        `mapstructure:"organization"`
}

type Config struct {
	CurrentProfile string              `mapstructure:"current_profile"`
	Profiles       map[string]*Profile `mapstructure:"profiles"`
	Settings       `mapstructure:",squash"`

	path string
}

// Profile is one saved sign-in.
type Profile struct {
	APIURL      string    `yaml:"api_url" mapstructure:"api_url"`
	AccessToken string    `yaml:"access_token,omitempty" mapstructure:"access_token"`
	Session     *Actor    `yaml:"session,omitempty" mapstructure:"session"`
	ExpiresAt   time.Time `yaml:"expires_at,omitempty" mapstructure:"expires_at"`
}

// Expired reports whether the stored sign-in is past its lifetime at now.
func (p *Profile) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && !now.Before(p.ExpiresAt)
}

// SignedIn reports whether the profile holds a credential.
func (p *Profile) SignedIn() bool {
	return p != nil && p.AccessToken != ""
}

// Actor is the snapshot of the signed-in user kept with a profile.
type Actor struct {
	ID             string `yaml:"id" mapstructure:"id"`
	UserID         string `yaml:"user_id" mapstructure:"user_id"`
	FullName       string `yaml:"full_name,omitempty" mapstructure:"full_name"`
	Role           string `yaml:"role" mapstructure:"role"`
	DepartmentID   string `yaml:"department_id,omitempty" mapstructure:"department_id"`
	DepartmentName string `yaml:"department_name,omitempty" mapstructure:"department_name"`
}

// SnapshotActor captures a for storage.
func SnapshotActor(a records.Actor) *Actor {
	return &Actor{
		ID:             a.ID,
		UserID:         a.UserID,
		FullName:       a.FullName,
		Role:           string(a.Role),
		DepartmentID:   records.RefID(a.Department),
		DepartmentName: records.RefName(a.Department),
	}
}

// Record restores the actor. An unknown stored role grants nothing.
func (a *Actor) Record() records.Actor {
	if a == nil {
		return records.Actor{}
	}
	role, _ := records.ParseRole(a.Role)
	out := records.Actor{
		ID:       a.ID,
		UserID:   a.UserID,
		FullName: a.FullName,
		Role:     role,
	}
	if a.DepartmentID != "" {
		out.Department = &records.Ref{ID: a.DepartmentID, Name: a.DepartmentName}
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("current_profile", DefaultProfile)
	v.SetDefault("api_url", "http://localhost:3000/api")
	v.SetDefault("token", "")
	v.SetDefault("output", "table")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("locale", "en")
	v.SetDefault("timezone", "Asia/Bangkok")
	v.SetDefault("public_url", "http://localhost:5173")
	v.SetDefault("report_secret", "")
	v.SetDefault("organization", "OrgSpace")
}

// DefaultPath returns ~/.orgctl/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".orgctl", "config.yaml"), nil
}

// Default returns a config holding only defaults, saved to path.
func Default(path string) *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{path: path}
	_ = v.Unmarshal(cfg, decodeHooks())
	cfg.Profiles = make(map[string]*Profile)
	return cfg
}

func decodeHooks() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
	))
}

// Load reads cfgFile, or DefaultPath when empty. A missing file is not an
// error; it yields defaults plus environment overrides.
func Load(cfgFile string) (*Config, error) {
	if cfgFile == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		cfgFile = p
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(cfgFile)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", cfgFile, err)
	}

	cfg := &Config{path: cfgFile}
	if err := v.Unmarshal(cfg, decodeHooks()); err != nil {
		return nil, fmt.Errorf("decode %s: %w", cfgFile, err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]*Profile)
	}
	return cfg, nil
}

// Path returns the file the config is saved to.
func (c *Config) Path() string {
	return c.path
}

// Save writes current_profile and profiles into the config file, keeping
// whatever else the file holds.
func (c *Config) Save() error {
	doc := map[string]any{}
	data, err := os.ReadFile(c.path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse %s: %w", c.path, err)
		}
		if doc == nil {
			doc = map[string]any{}
		}
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}

	doc["current_profile"] = c.CurrentProfile
	doc["profiles"] = c.Profiles

	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return err
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, out, 0o600)
}

// ProfileName resolves name, falling back to the current profile.
func (c *Config) ProfileName(name string) string {
	if name != "" {
		return name
	}
	if c.CurrentProfile != "" {
		return c.CurrentProfile
	}
	return DefaultProfile
}

// SaveProfile stores p under name and makes it current.
func (c *Config) SaveProfile(name string, p *Profile) error {
	if c.Profiles == nil {
		c.Profiles = make(map[string]*Profile)
	}
	name = c.ProfileName(name)
	c.Profiles[name] = p
	c.CurrentProfile = name
	return c.Save()
}

func (c *Config) GetProfile(name string) (*Profile, error) {
	name = c.ProfileName(name)
	profile, ok := c.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("profile '%s' not found", name)
	}
	return profile, nil
}

// APIURLFor returns the profile's API URL, or the shared setting.
func (c *Config) APIURLFor(name string) string {
	if p, err := c.GetProfile(name); err == nil && p.APIURL != "" {
		return p.APIURL
	}
	return c.APIURL
}

func (c *Config) RemoveProfile(name string) error {
	name = c.ProfileName(name)
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("profile '%s' not found", name)
	}

	delete(c.Profiles, name)

	if c.CurrentProfile == name {
		c.CurrentProfile = ""
	}

	return c.Save()
}

// Location loads the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
