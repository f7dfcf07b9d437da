// Package config loads volley configuration from a yaml file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/volleyhq/volley/internal/config/envutil"
)

// Transport names accepted in configuration and flags.
const (
	TransportRedis = "redis"
	TransportMQTT  = "mqtt"
)

// Config holds all CLI configuration
type Config struct {
	Transport string        `yaml:"transport"`
	Publish   PublishConfig `yaml:"publish"`
	Redis     RedisConfig   `yaml:"redis"`
	MQTT      MQTTConfig    `yaml:"mqtt"`
	Logging   LoggingConfig `yaml:"logging"`
}

// PublishConfig holds batch publish defaults, overridable per invocation
// by flags.
type PublishConfig struct {
	Count int      `yaml:"count"`
	Delay Duration `yaml:"delay"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MQTTConfig holds MQTT broker settings
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(configPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// File doesn't exist - continue with defaults
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	// Expand environment variables in credential fields
	cfg.expandEnvVars()

	// Validate
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// configPath resolves the config file location: VOLLEY_CONFIG if set,
// then ./volley.yaml, then ~/.volley.yaml.
func configPath() string {
	if path := os.Getenv("VOLLEY_CONFIG"); path != "" {
		return path
	}
	if _, err := os.Stat("volley.yaml"); err == nil {
		return "volley.yaml"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "volley.yaml"
	}
	return filepath.Join(home, ".volley.yaml")
}

// defaultConfig returns configuration with sensible defaults
func defaultConfig() *Config {
	return &Config{
		Transport: TransportRedis,
		Publish: PublishConfig{
			Count: 1,
			Delay: Duration(40 * time.Millisecond),
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			DB:   0,
		},
		MQTT: MQTTConfig{
			Broker: "tcp://localhost:1883",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// applyEnvOverrides applies environment variable overrides
func (c *Config) applyEnvOverrides() {
	c.Transport = envutil.GetStringEnv("VOLLEY_TRANSPORT", c.Transport)

	c.Publish.Count = envutil.GetIntEnv("VOLLEY_PUBLISH_COUNT", c.Publish.Count)
	c.Publish.Delay = Duration(envutil.GetDurationEnv("VOLLEY_PUBLISH_DELAY", c.Publish.Delay.Std()))

	c.Redis.Addr = envutil.GetStringEnv("VOLLEY_REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = envutil.GetStringEnv("VOLLEY_REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = envutil.GetIntEnv("VOLLEY_REDIS_DB", c.Redis.DB)

	c.MQTT.Broker = envutil.GetStringEnv("VOLLEY_MQTT_BROKER", c.MQTT.Broker)
	c.MQTT.ClientID = envutil.GetStringEnv("VOLLEY_MQTT_CLIENT_ID", c.MQTT.ClientID)
	c.MQTT.Username = envutil.GetStringEnv("VOLLEY_MQTT_USERNAME", c.MQTT.Username)
	c.MQTT.Password = envutil.GetStringEnv("VOLLEY_MQTT_PASSWORD", c.MQTT.Password)

	c.Logging.Level = envutil.GetStringEnv("VOLLEY_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = envutil.GetStringEnv("VOLLEY_LOG_FORMAT", c.Logging.Format)
}

// expandEnvVars expands ${VAR} patterns in credential fields
func (c *Config) expandEnvVars() {
	c.Redis.Password = expandEnv(c.Redis.Password)
	c.MQTT.Username = expandEnv(c.MQTT.Username)
	c.MQTT.Password = expandEnv(c.MQTT.Password)
}

// expandEnv expands ${VAR} patterns in a string
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		varName := s[2 : len(s)-1]
		return os.Getenv(varName)
	}
	return os.ExpandEnv(s)
}

// validate checks configuration validity
func (c *Config) validate() error {
	switch c.Transport {
	case TransportRedis, TransportMQTT:
	default:
		return fmt.Errorf("unknown transport %q (expected %s or %s)",
			c.Transport, TransportRedis, TransportMQTT)
	}

	if c.Publish.Count < 1 {
		return fmt.Errorf("publish.count must be >= 1, got %d", c.Publish.Count)
	}
	if c.Publish.Delay < 0 {
		return fmt.Errorf("publish.delay must be >= 0, got %s", c.Publish.Delay.Std())
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr must not be empty")
	}
	if c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker must not be empty")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown logging.format %q (expected text or json)", c.Logging.Format)
	}

	return nil
}
