// Package config provides configuration loading and validation for the
// gitbridge tools.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidTunnelLen = errors.New("tunnel max length must not be negative")
	ErrInvalidLogLevel  = errors.New("invalid log level")
)

// Default configuration values.
const (
	defaultLogLevel = "info"
	envPrefix       = "GITBRIDGE"
)

// Config holds all configuration for the gitbridge tools.
type Config struct {
	Assign  AssignConfig  `mapstructure:"assign"`
	Index   IndexConfig   `mapstructure:"index"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// AssignConfig holds the assignment engine's behavioral flags.
type AssignConfig struct {
	// Previous honors the persisted commit→branch index before walking.
	Previous bool `mapstructure:"previous"`

	// ConnectToPreviousHead restricts named walks to the old head's
	// reachable set.
	ConnectToPreviousHead bool `mapstructure:"connect_to_previous_head"`

	// CompactOnFinish discards working node state after assignment.
	CompactOnFinish bool `mapstructure:"compact_on_finish"`

	// Tunnel configures crossings of foreign-owned history.
	Tunnel TunnelConfig `mapstructure:"tunnel"`
}

// TunnelConfig bounds and shapes tunneling behavior.
type TunnelConfig struct {
	// MaxLen bounds consecutive foreign crossings; zero means unbounded.
	MaxLen int `mapstructure:"max_len"`

	// Assign stamps the walking branch onto foreign nodes while
	// tunneling.
	Assign bool `mapstructure:"assign"`
}

// IndexConfig locates the persisted commit→branch index.
type IndexConfig struct {
	// Directory is the badger database directory. Empty disables the
	// persisted index (offline use).
	Directory string `mapstructure:"directory"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
}

// Load reads configuration from the given file (optional), the
// environment (GITBRIDGE_ prefix) and defaults, in that precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("assign.previous", true)
	v.SetDefault("assign.connect_to_previous_head", true)
	v.SetDefault("assign.compact_on_finish", true)
	v.SetDefault("assign.tunnel.max_len", 0)
	v.SetDefault("assign.tunnel.assign", false)
	v.SetDefault("index.directory", "")
	v.SetDefault("logging.level", defaultLogLevel)
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Assign.Tunnel.MaxLen < 0 {
		return fmt.Errorf("assign.tunnel.max_len %d: %w", c.Assign.Tunnel.MaxLen, ErrInvalidTunnelLen)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q: %w", c.Logging.Level, ErrInvalidLogLevel)
	}

	return nil
}
