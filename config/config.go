package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/s0up4200/beeperdesk/beeper"
	"github.com/s0up4200/beeperdesk/filter"
)

// ArchiveFormats lists the export formats the archive command can write
var ArchiveFormats = []string{"md", "json", "html", "txt"}

// Load loads the configuration. configPath may be empty, in which case the
// standard locations are searched and a missing file is not an error.
// Values from the environment (and a .env file in the working directory)
// override the file.
func Load(configPath string) (*Config, error) {
	// A missing .env is the common case.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := viper.New()

	// Set default values
	setDefaults(v)
	bindEnv(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".beeperdesk"))
		}

		v.AddConfigPath("/etc/beeperdesk/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ClientConfig converts the beeper section into a client configuration
func (c *Config) ClientConfig() beeper.Config {
	return beeper.Config{
		AccessToken: c.Beeper.AccessToken,
		BaseURL:     c.Beeper.BaseURL,
		Timeout:     c.Beeper.Timeout,
		MaxRetries:  c.Beeper.MaxRetries,
		UserAgent:   c.Beeper.UserAgent,
	}
}

// Expression resolves a --filter argument. A preset name expands to its
// expression, anything else is used verbatim and an empty argument falls back
// to filter.default_expression.
func (c *Config) Expression(arg string) string {
	if arg == "" {
		return c.Filter.DefaultExpression
	}
	if expr, ok := c.Filter.Presets[arg]; ok {
		return expr
	}
	return arg
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Beeper defaults
	v.SetDefault("beeper.base_url", beeper.DefaultBaseURL)
	v.SetDefault("beeper.timeout", beeper.DefaultTimeout)
	v.SetDefault("beeper.max_retries", beeper.DefaultMaxRetries)
	v.SetDefault("beeper.user_agent", beeper.DefaultUserAgent)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)

	// Archive defaults
	v.SetDefault("archive.dir", "beeper-archive")
	v.SetDefault("archive.formats", []string{"md", "json"})
	v.SetDefault("archive.concurrency", 4)
	v.SetDefault("archive.page_size", 100)
}

// bindEnv maps the environment variables the client library also reads
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("beeper.access_token", beeper.EnvAccessToken)
	_ = v.BindEnv("beeper.base_url", beeper.EnvBaseURL)
	_ = v.BindEnv("logging.level", "BEEPERDESK_LOG_LEVEL")
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Beeper.BaseURL == "" {
		return fmt.Errorf("beeper.base_url is required")
	}
	if cfg.Beeper.MaxRetries < 0 {
		return fmt.Errorf("beeper.max_retries must not be negative: %d", cfg.Beeper.MaxRetries)
	}
	if cfg.Beeper.Timeout < 0 {
		return fmt.Errorf("beeper.timeout must not be negative: %s", cfg.Beeper.Timeout)
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	for _, format := range cfg.Archive.Formats {
		if !slices.Contains(ArchiveFormats, format) {
			return fmt.Errorf("invalid archive format: %s (must be one of %v)", format, ArchiveFormats)
		}
	}
	if cfg.Archive.Concurrency < 1 {
		return fmt.Errorf("archive.concurrency must be at least 1: %d", cfg.Archive.Concurrency)
	}
	if cfg.Archive.PageSize < 1 {
		return fmt.Errorf("archive.page_size must be at least 1: %d", cfg.Archive.PageSize)
	}

	// Presets are compiled up front so typos surface at startup
	for name, expression := range cfg.Filter.Presets {
		if err := filter.Validate(expression); err != nil {
			return fmt.Errorf("invalid filter preset %q: %w", name, err)
		}
	}
	if cfg.Filter.DefaultExpression != "" {
		if err := filter.Validate(cfg.Filter.DefaultExpression); err != nil {
			return fmt.Errorf("invalid filter.default_expression: %w", err)
		}
	}

	return nil
}
