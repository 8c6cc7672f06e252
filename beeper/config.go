package beeper

import (
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Version is the library version reported in the default user agent.
const Version = "0.3.0"

const (
	// DefaultBaseURL is where Beeper Desktop serves its local API.
	DefaultBaseURL = "http://localhost:23373"

	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 2

	// Environment variables read by ConfigFromEnv.
	EnvAccessToken = "BEEPER_ACCESS_TOKEN"
	EnvBaseURL     = "BEEPER_DESKTOP_BASE_URL"
)

// DefaultUserAgent identifies this client to the API
var DefaultUserAgent = "beeperdesk-go/" + Version

// Config holds everything a Client needs to reach the API. It is copied into
// the Client on construction and never modified afterwards.
type Config struct {
	// AccessToken is sent as a bearer token on every request. Required.
	AccessToken string

	// BaseURL is the absolute API root. Normalized to end with "/".
	BaseURL string

	// Timeout bounds a single HTTP exchange. Ignored when HTTPClient is set.
	Timeout time.Duration

	// MaxRetries is the number of additional attempts made for retryable
	// failures. Zero disables retries.
	MaxRetries int

	UserAgent string

	// HTTPClient replaces the default transport. Optional.
	HTTPClient *http.Client
}

// DefaultConfig returns a Config with every optional field set to its default.
// AccessToken is left empty.
func DefaultConfig() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		Timeout:    DefaultTimeout,
		MaxRetries: DefaultMaxRetries,
		UserAgent:  DefaultUserAgent,
	}
}

// ConfigFromEnv builds a Config from BEEPER_ACCESS_TOKEN and
// BEEPER_DESKTOP_BASE_URL on top of the defaults.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	cfg.AccessToken = os.Getenv(EnvAccessToken)
	if baseURL := os.Getenv(EnvBaseURL); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if cfg.AccessToken == "" {
		return Config{}, configError("%s environment variable is required", EnvAccessToken)
	}
	return cfg, nil
}

// Validate checks the invariants NewClient relies on
func (c Config) Validate() error {
	_, err := c.normalize()
	return err
}

// normalize validates c and returns a copy with defaults applied and the base
// URL parsed.
func (c Config) normalize() (Config, error) {
	if strings.TrimSpace(c.AccessToken) == "" {
		return c, configError("access token is required")
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		return c, configError("base URL is required")
	}
	if c.MaxRetries < 0 {
		return c, configError("max retries must not be negative (got %d)", c.MaxRetries)
	}
	if c.Timeout < 0 {
		return c, configError("timeout must not be negative (got %s)", c.Timeout)
	}

	parsed, err := url.Parse(c.BaseURL)
	if err != nil {
		return c, &Error{Kind: KindConfig, Message: "invalid base URL", Err: err}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return c, configError("base URL must be absolute (got %q)", c.BaseURL)
	}

	if !strings.HasSuffix(c.BaseURL, "/") {
		c.BaseURL += "/"
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c, nil
}
