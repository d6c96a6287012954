package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/orgspace-systems/orgspace-stack/common/records"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultProfile, cfg.CurrentProfile)
	assert.Equal(t, "http://localhost:3000/api", cfg.APIURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "table", cfg.Output)
	assert.Empty(t, cfg.Profiles)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
current_profile: work
timeout: 5s
timezone: UTC
profiles:
  work:
    api_url: https://records.example.com/api
    access_token: abc
    expires_at: 2026-03-01T00:00:00Z
    session:
      id: u1
      user_id: hr1
      role: HR
      department_id: d1
      department_name: People
`), 0o600))
	t.Setenv("ORGCTL_OUTPUT", "json")
	t.Setenv("ORGCTL_TOKEN", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "work", cfg.CurrentProfile)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, "from-env", cfg.Token)

	p, err := cfg.GetProfile("")
	require.NoError(t, err)
	assert.Equal(t, "abc", p.AccessToken)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), p.ExpiresAt.UTC())
	assert.Equal(t, "https://records.example.com/api", cfg.APIURLFor("work"))
	assert.Equal(t, "http://localhost:3000/api", cfg.APIURLFor("other"))

	actor := p.Session.Record()
	assert.Equal(t, records.RoleHR, actor.Role)
	assert.Equal(t, "d1", records.RefID(actor.Department))

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestSave_KeepsOtherKeysAndSkipsEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("organization: Acme\n"), 0o600))
	t.Setenv("ORGCTL_TOKEN", "secret-from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	expires := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, cfg.SaveProfile("lab", &Profile{
		APIURL:      "http://lab/api",
		AccessToken: "tok",
		Session:     SnapshotActor(records.Actor{ID: "u9", UserID: "admin", Role: records.RoleAdmin}),
		ExpiresAt:   expires,
	}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-from-env")

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &doc))
	assert.Equal(t, "Acme", doc["organization"])
	assert.Equal(t, "lab", doc["current_profile"])

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reloaded, err := Load(path)
	require.NoError(t, err)
	p, err := reloaded.GetProfile("lab")
	require.NoError(t, err)
	assert.Equal(t, "tok", p.AccessToken)
	assert.True(t, expires.Equal(p.ExpiresAt))
	assert.Equal(t, records.RoleAdmin, p.Session.Record().Role)
}

func TestRemoveProfile(t *testing.T) {
	cfg := Default(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, cfg.SaveProfile("a", &Profile{AccessToken: "x"}))

	require.NoError(t, cfg.RemoveProfile("a"))
	assert.Empty(t, cfg.CurrentProfile)
	assert.Error(t, cfg.RemoveProfile("a"))

	_, err := cfg.GetProfile("a")
	assert.Error(t, err)
}

func TestProfile_Expired(t *testing.T) {
	now := time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)

	assert.False(t, (&Profile{}).Expired(now))
	assert.False(t, (&Profile{ExpiresAt: now.Add(time.Minute)}).Expired(now))
	assert.True(t, (&Profile{ExpiresAt: now}).Expired(now))
}

func TestActor_UnknownRoleGrantsNothing(t *testing.T) {
	a := (&Actor{UserID: "x", Role: "ROOT"}).Record()
	assert.False(t, a.Role.Valid())
	assert.Nil(t, a.Department)
}
