package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Beeper  BeeperConfig  `mapstructure:"beeper"`
	Logging LoggingConfig `mapstructure:"logging"`
	Archive ArchiveConfig `mapstructure:"archive"`
	Filter  FilterConfig  `mapstructure:"filter"`
}

// BeeperConfig holds Beeper Desktop API connection details
type BeeperConfig struct {
	AccessToken string        `mapstructure:"access_token"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	UserAgent   string        `mapstructure:"user_agent"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// ArchiveConfig controls chat archive exports
type ArchiveConfig struct {
	Dir         string   `mapstructure:"dir"`
	Formats     []string `mapstructure:"formats"`
	Concurrency int      `mapstructure:"concurrency"`
	PageSize    int      `mapstructure:"page_size"`
}

// FilterConfig contains chat filter expressions. Presets are referenced by
// name from the command line.
type FilterConfig struct {
	DefaultExpression string            `mapstructure:"default_expression"`
	Presets           map[string]string `mapstructure:"presets"`
}
