package beeper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		t.Setenv(EnvAccessToken, "")
		_, err := ConfigFromEnv()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfig)
		assert.Contains(t, err.Error(), EnvAccessToken)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv(EnvAccessToken, "tok")
		t.Setenv(EnvBaseURL, "")
		cfg, err := ConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "tok", cfg.AccessToken)
		assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
		assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
		assert.Equal(t, DefaultTimeout, cfg.Timeout)
	})

	t.Run("base URL override", func(t *testing.T) {
		t.Setenv(EnvAccessToken, "tok")
		t.Setenv(EnvBaseURL, "http://127.0.0.1:9999")
		cfg, err := ConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "http://127.0.0.1:9999", cfg.BaseURL)
	})
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate())

	cfg.AccessToken = "tok"
	assert.NoError(t, cfg.Validate())

	cfg.Timeout = -time.Second
	assert.ErrorContains(t, cfg.Validate(), "timeout must not be negative")
}

func TestNormalizeDoesNotTouchCaller(t *testing.T) {
	cfg := Config{AccessToken: "tok", BaseURL: "http://localhost:23373/api"}
	normalized, err := cfg.normalize()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:23373/api/", normalized.BaseURL)
	assert.Equal(t, "http://localhost:23373/api", cfg.BaseURL)
	assert.Empty(t, cfg.UserAgent)
}
