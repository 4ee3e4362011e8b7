package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	var cfg Config
	cfg.App.Port = 8790
	cfg.Pipeline.IngestMinutes = 180
	cfg.Pipeline.SweepMinutes = 360
	cfg.Sources.RemoteOK.Enabled = true
	return cfg
}

func TestNormalizeAndValidateAcceptsDefaults(t *testing.T) {
	_, vr := NormalizeAndValidate(validConfig())
	assert.True(t, vr.OK(), "errors: %v", vr.Errors)
}

func TestNormalizeAndValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "bad port",
			mutate: func(c *Config) { c.App.Port = 0 },
			want:   "app.port",
		},
		{
			name:   "zero ingest cadence",
			mutate: func(c *Config) { c.Pipeline.IngestMinutes = 0 },
			want:   "ingest_minutes",
		},
		{
			name: "greenhouse without roster",
			mutate: func(c *Config) {
				c.Sources.Greenhouse.Enabled = true
			},
			want: "greenhouse.companies",
		},
		{
			name: "lever without roster",
			mutate: func(c *Config) {
				c.Sources.Lever.Enabled = true
			},
			want: "lever.companies",
		},
		{
			name: "smartrecruiters without roster",
			mutate: func(c *Config) {
				c.Sources.SmartRecruiters.Enabled = true
			},
			want: "smartrecruiters.companies",
		},
		{
			name: "workday slug must be a url",
			mutate: func(c *Config) {
				c.Sources.Workday.Enabled = true
				c.Sources.Workday.Companies = []Company{{Name: "Acme", Slug: "acme"}}
			},
			want: "full board URL",
		},
		{
			name: "email without host",
			mutate: func(c *Config) {
				c.Email.Enabled = true
				c.Email.IMAPPort = 993
				c.Email.Username = "me@example.com"
				c.Email.Mailbox = "INBOX"
			},
			want: "imap_host",
		},
		{
			name: "notify without chat id",
			mutate: func(c *Config) {
				c.Notify.Enabled = true
			},
			want: "telegram_chat_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			_, vr := NormalizeAndValidate(cfg)
			require.False(t, vr.OK())
			found := false
			for _, e := range vr.Errors {
				if strings.Contains(e, tt.want) {
					found = true
				}
			}
			assert.True(t, found, "no error mentioning %q in %v", tt.want, vr.Errors)
		})
	}
}

func TestNormalizeTrimsAndDedupesRosters(t *testing.T) {
	cfg := validConfig()
	cfg.Sources.Lever.Enabled = true
	cfg.Sources.Lever.Companies = []Company{
		{Name: " Plaid ", Slug: " plaid "},
		{Name: "Plaid again", Slug: "PLAID"},
		{Name: "blank", Slug: "  "},
		{Name: "Ramp", Slug: "ramp"},
	}

	out, vr := NormalizeAndValidate(cfg)
	require.True(t, vr.OK(), "errors: %v", vr.Errors)
	require.Len(t, out.Sources.Lever.Companies, 2)
	assert.Equal(t, "plaid", out.Sources.Lever.Companies[0].Slug)
	assert.Equal(t, "ramp", out.Sources.Lever.Companies[1].Slug)
}

func TestNoSourcesIsAWarningNotAnError(t *testing.T) {
	cfg := validConfig()
	cfg.Sources.RemoteOK.Enabled = false

	_, vr := NormalizeAndValidate(cfg)
	assert.True(t, vr.OK())
	assert.NotEmpty(t, vr.Warnings)
}

func TestEnsureUserConfigCopiesDefaultOnce(t *testing.T) {
	dataDir := t.TempDir()
	defaultPath := filepath.Join(t.TempDir(), "default.yml")
	require.NoError(t, os.WriteFile(defaultPath, []byte("app:\n  port: 8790\n"), 0o644))

	userPath, err := EnsureUserConfig(dataDir, defaultPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "config.yml"), userPath)

	// user edits survive a second bootstrap
	require.NoError(t, os.WriteFile(userPath, []byte("app:\n  port: 9999\n"), 0o644))
	again, err := EnsureUserConfig(dataDir, defaultPath)
	require.NoError(t, err)
	assert.Equal(t, userPath, again)

	cfg, err := Load(userPath)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.App.Port)
}

func TestSaveAtomicKeepsBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	first := validConfig()
	require.NoError(t, SaveAtomic(path, first))

	second := validConfig()
	second.App.Port = 9000
	require.NoError(t, SaveAtomic(path, second))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.App.Port)

	bak, err := Load(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, 8790, bak.App.Port)
}

func TestSaveAtomicRejectsInvalidConfig(t *testing.T) {
	cfg := validConfig()
	cfg.App.Port = -1
	err := SaveAtomic(filepath.Join(t.TempDir(), "config.yml"), cfg)
	assert.Error(t, err)
}

func TestOverlayRosters(t *testing.T) {
	dir := t.TempDir()
	rosters := filepath.Join(dir, "rosters.yml")
	require.NoError(t, os.WriteFile(rosters, []byte(`
sources:
  greenhouse:
    companies:
      - { name: Stripe, slug: stripe }
  workday:
    companies:
      - { name: Acme, slug: "https://acme.wd1.myworkdayjobs.com/External" }
`), 0o644))

	cfg := validConfig()
	cfg.Sources.Greenhouse.Companies = []Company{{Name: "Old", Slug: "old"}}
	require.NoError(t, OverlayRosters(&cfg, rosters))

	require.Len(t, cfg.Sources.Greenhouse.Companies, 1)
	assert.Equal(t, "stripe", cfg.Sources.Greenhouse.Companies[0].Slug)
	require.Len(t, cfg.Sources.Workday.Companies, 1)

	// a missing rosters file is not an error
	require.NoError(t, OverlayRosters(&cfg, filepath.Join(dir, "missing.yml")))
}
