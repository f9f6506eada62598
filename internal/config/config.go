package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultBillingURL is the public billing-by-month endpoint
	DefaultBillingURL = "http://sqzls.com/api/market/bill/listByMonth"
	// DefaultHouseURL is the account detail endpoint, templated by house id
	DefaultHouseURL = "http://sqzls.com/api/market/house/%s"

	// DefaultUpdateInterval is the refresh cadence in seconds (2 hours)
	DefaultUpdateInterval = 7200
	// MinUpdateInterval and MaxUpdateInterval bound the configurable cadence
	MinUpdateInterval = 300
	MaxUpdateInterval = 86400
)

// Config holds the application configuration
type Config struct {
	HouseID        string       `yaml:"house_id"`
	UpdateInterval int          `yaml:"update_interval,omitempty"` // Seconds between refreshes (default 7200)
	BillingURL     string       `yaml:"billing_url,omitempty"`     // Override for the billing-list endpoint
	HouseURL       string       `yaml:"house_url,omitempty"`       // Override for the house detail endpoint
	LogLevel       string       `yaml:"log_level,omitempty"`       // zerolog level (default info)
	MQTT           MQTTConfig   `yaml:"mqtt,omitempty"`
	Server         ServerConfig `yaml:"server,omitempty"`
}

// MQTTConfig holds the Home Assistant MQTT broker settings
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"` // host:port
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"` // defaults to "waterwatch"
}

// ServerConfig holds the HTTP status server settings
type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen,omitempty"` // defaults to ":8094"
}

// Load reads the config file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty config if file doesn't exist
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// GetUpdateInterval returns the refresh interval in seconds, defaulted and
// clamped to the supported 300-86400 range
func (c *Config) GetUpdateInterval() int {
	switch {
	case c.UpdateInterval == 0:
		return DefaultUpdateInterval
	case c.UpdateInterval < MinUpdateInterval:
		return MinUpdateInterval
	case c.UpdateInterval > MaxUpdateInterval:
		return MaxUpdateInterval
	}
	return c.UpdateInterval
}

// GetBillingURL returns the billing-list endpoint
func (c *Config) GetBillingURL() string {
	if c.BillingURL != "" {
		return c.BillingURL
	}
	return DefaultBillingURL
}

// GetHouseURL returns the house detail endpoint template
func (c *Config) GetHouseURL() string {
	if c.HouseURL != "" {
		return c.HouseURL
	}
	return DefaultHouseURL
}

// GetLogLevel returns the configured log level, defaulting to info
func (c *Config) GetLogLevel() string {
	if c.LogLevel != "" {
		return c.LogLevel
	}
	return "info"
}

// GetTopicPrefix returns the MQTT topic prefix
func (c *MQTTConfig) GetTopicPrefix() string {
	if c.TopicPrefix != "" {
		return c.TopicPrefix
	}
	return "waterwatch"
}

// GetListen returns the HTTP listen address
func (c *ServerConfig) GetListen() string {
	if c.Listen != "" {
		return c.Listen
	}
	return ":8094"
}
