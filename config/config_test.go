package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/beeperdesk/beeper"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv(beeper.EnvAccessToken, "")
	t.Setenv(beeper.EnvBaseURL, "")

	path := writeConfig(t, `
beeper:
  access_token: file-token
  base_url: http://127.0.0.1:23373
  timeout: 5s
  max_retries: 4
logging:
  level: debug
  format: json
archive:
  formats: [md, html]
filter:
  default_expression: "UnreadCount > 0"
  presets:
    stale: "inactiveDays() > 90"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.Beeper.AccessToken)
	assert.Equal(t, "http://127.0.0.1:23373", cfg.Beeper.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Beeper.Timeout)
	assert.Equal(t, 4, cfg.Beeper.MaxRetries)
	assert.Equal(t, beeper.DefaultUserAgent, cfg.Beeper.UserAgent)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"md", "html"}, cfg.Archive.Formats)
	assert.Equal(t, 4, cfg.Archive.Concurrency)
	assert.Equal(t, 100, cfg.Archive.PageSize)
	assert.Equal(t, "inactiveDays() > 90", cfg.Filter.Presets["stale"])
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv(beeper.EnvAccessToken, "env-token")
	t.Setenv(beeper.EnvBaseURL, "http://localhost:9999")

	path := writeConfig(t, "beeper:\n  access_token: file-token\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Beeper.AccessToken)
	assert.Equal(t, "http://localhost:9999", cfg.Beeper.BaseURL)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "error reading config")
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv(beeper.EnvAccessToken, "env-token")
	t.Setenv(beeper.EnvBaseURL, "")
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, beeper.DefaultBaseURL, cfg.Beeper.BaseURL)
	assert.Equal(t, beeper.DefaultTimeout, cfg.Beeper.Timeout)
	assert.Equal(t, beeper.DefaultMaxRetries, cfg.Beeper.MaxRetries)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadReadsDotEnv(t *testing.T) {
	t.Setenv(beeper.EnvAccessToken, "")
	os.Unsetenv(beeper.EnvAccessToken)
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(beeper.EnvAccessToken+"=dotenv-token\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-token", cfg.Beeper.AccessToken)
}

func validConfig() *Config {
	return &Config{
		Beeper:  BeeperConfig{BaseURL: beeper.DefaultBaseURL},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Archive: ArchiveConfig{Formats: []string{"md"}, Concurrency: 1, PageSize: 50},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			modify: func(*Config) {},
		},
		{
			name:    "missing base URL",
			modify:  func(c *Config) { c.Beeper.BaseURL = "" },
			wantErr: "beeper.base_url is required",
		},
		{
			name:    "negative retries",
			modify:  func(c *Config) { c.Beeper.MaxRetries = -1 },
			wantErr: "beeper.max_retries must not be negative",
		},
		{
			name:    "invalid level",
			modify:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "invalid logging level: verbose",
		},
		{
			name:    "invalid format",
			modify:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "invalid logging format: xml",
		},
		{
			name:    "invalid archive format",
			modify:  func(c *Config) { c.Archive.Formats = []string{"md", "pdf"} },
			wantErr: "invalid archive format: pdf",
		},
		{
			name:    "zero concurrency",
			modify:  func(c *Config) { c.Archive.Concurrency = 0 },
			wantErr: "archive.concurrency must be at least 1",
		},
		{
			name:    "broken preset",
			modify:  func(c *Config) { c.Filter.Presets = map[string]string{"bad": "UnreadCount >"} },
			wantErr: `invalid filter preset "bad"`,
		},
		{
			name:    "broken default expression",
			modify:  func(c *Config) { c.Filter.DefaultExpression = "NoSuchField" },
			wantErr: "invalid filter.default_expression",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestClientConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Beeper.AccessToken = "tok"
	cfg.Beeper.MaxRetries = 1

	clientCfg := cfg.ClientConfig()
	assert.Equal(t, "tok", clientCfg.AccessToken)
	assert.Equal(t, beeper.DefaultBaseURL, clientCfg.BaseURL)
	assert.Equal(t, 1, clientCfg.MaxRetries)
	assert.NoError(t, clientCfg.Validate())
}

func TestExpression(t *testing.T) {
	cfg := validConfig()
	cfg.Filter.DefaultExpression = "UnreadCount > 0"
	cfg.Filter.Presets = map[string]string{"stale": "inactiveDays() > 90"}

	assert.Equal(t, "UnreadCount > 0", cfg.Expression(""))
	assert.Equal(t, "inactiveDays() > 90", cfg.Expression("stale"))
	assert.Equal(t, "IsMuted", cfg.Expression("IsMuted"))
}
