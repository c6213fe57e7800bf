// Package config loads and validates gateway configuration.
//
// DESIGN: YAML file with ${ENV_VAR} expansion; Config applies the
// defaults and runs Validate() across the server, upstream and logging
// sections. Missing file is not an error — the gateway
// runs on defaults with no persisted state.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/relaymesh/inference-gateway/internal/monitoring"
)

// Config is the full gateway configuration.
type Config struct {
	Server    ServerConfig                `yaml:"server"`
	Upstream  UpstreamConfig              `yaml:"upstream"`
	Logging   LoggingConfig               `yaml:"logging"`
	Telemetry monitoring.TelemetryConfig  `yaml:"telemetry"`
	Usage     UsageConfig                 `yaml:"usage"`
	Bedrock   BedrockConfig               `yaml:"bedrock"`
}

// ServerConfig holds the listener settings.
type ServerConfig struct {
	Port         int      `yaml:"port"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
}

// UpstreamConfig bounds outgoing connections.
type UpstreamConfig struct {
	ConnectTimeout Duration `yaml:"connect_timeout"`
	IdleTimeout    Duration `yaml:"idle_timeout"`
}

// LoggingConfig controls zerolog.
type LoggingConfig struct {
	Level string `yaml:"level"` // trace, debug, info, warn, error
}

// UsageConfig selects optional usage sinks beyond the default log.
type UsageConfig struct {
	SQLitePath  string `yaml:"sqlite_path"`  // empty disables persistence
	FeedEnabled bool   `yaml:"feed_enabled"` // /events websocket
}

// BedrockConfig enables gateway-side SigV4 signing for aws-bedrock.
type BedrockConfig struct {
	SignRequests  bool   `yaml:"sign_requests"`
	DefaultRegion string `yaml:"default_region"`
}

// Load reads the config file when it exists, expands ${ENV} references,
// applies defaults, and validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else {
			expanded := os.Expand(string(data), func(key string) string {
				return os.Getenv(key)
			})
			if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the zero-file configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(DefaultReadTimeout)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(DefaultWriteTimeout)
	}
	if c.Upstream.ConnectTimeout == 0 {
		c.Upstream.ConnectTimeout = Duration(DefaultConnectTimeout)
	}
	if c.Upstream.IdleTimeout == 0 {
		c.Upstream.IdleTimeout = Duration(DefaultIdleTimeout)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Upstream.ConnectTimeout < 0 {
		return fmt.Errorf("upstream.connect_timeout must be >= 0")
	}
	if c.Upstream.IdleTimeout < 0 {
		return fmt.Errorf("upstream.idle_timeout must be >= 0")
	}
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not a zerolog level", c.Logging.Level)
	}
	return nil
}
