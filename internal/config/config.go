package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Serial        SerialConfig    `yaml:"serial"`
	MQTT          MQTTConfig      `yaml:"mqtt"`
	HomeAssistant HAConfig        `yaml:"homeassistant"`
	Polling       PollingConfig   `yaml:"polling"`
	Channels      []ChannelConfig `yaml:"channels"`
	Metrics       MetricsConfig   `yaml:"metrics"`
	Logging       LoggingConfig   `yaml:"logging"`
}

// SerialConfig contains the WSS module serial line settings.
// The line parameters themselves (115200 8N1) are fixed by the module and
// not configurable.
type SerialConfig struct {
	Device  string `yaml:"device"`
	Timeout int    `yaml:"timeout"` // Receive timeout per round trip in milliseconds
}

// MQTTConfig contains MQTT broker settings
type MQTTConfig struct {
	Broker     string `yaml:"broker"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	ClientID   string `yaml:"client_id"`
	RetryDelay int    `yaml:"retry_delay"` // Delay between connection retries in milliseconds
}

// HAConfig contains Home Assistant MQTT Discovery settings
type HAConfig struct {
	DiscoveryPrefix string `yaml:"discovery_prefix"`
	DeviceName      string `yaml:"device_name"`
	DeviceID        string `yaml:"device_id"`
	Manufacturer    string `yaml:"manufacturer"`
	Model           string `yaml:"model"`
	StatusTopic     string `yaml:"status_topic"`
	DiagnosticTopic string `yaml:"diagnostic_topic"`
	BaseTopic       string `yaml:"base_topic"`
}

// PollingConfig contains the bridge poll intervals
type PollingConfig struct {
	StatusInterval  int `yaml:"status_interval"`  // Module status/alarm poll interval in milliseconds
	ChannelInterval int `yaml:"channel_interval"` // Channel attenuation/power poll interval in milliseconds
}

// ChannelConfig identifies one monitored channel on the switch
type ChannelConfig struct {
	Name         string `yaml:"name"`
	SubAddress   uint8  `yaml:"sub_address"`
	ChannelGroup uint8  `yaml:"channel_group"`
	Channel      uint8  `yaml:"channel"`
}

// MetricsConfig contains the Prometheus exposition settings
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"` // host:port for the /metrics endpoint
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// LoadConfig loads configuration from specified file
func LoadConfig(configPath string) (*Config, error) {
	// Try to find configuration file in different locations
	paths := []string{
		configPath,
		"/etc/mqtt-wss-bridge/config.yaml",
		"/etc/mqtt-wss-bridge.yaml",
		"./config.yaml",
	}

	var data []byte
	var err error
	var usedPath string

	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err = os.ReadFile(path)
		if err == nil {
			usedPath = path
			break
		}
	}

	if err != nil {
		return nil, fmt.Errorf("cannot read configuration file from any of the locations: %v. Last error: %w", paths, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing configuration from %s: %w", usedPath, err)
	}

	// Configuration validation
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", usedPath, err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Serial.Device == "" {
		return fmt.Errorf("serial.device is required")
	}
	if c.Serial.Timeout < 0 {
		return fmt.Errorf("serial.timeout must not be negative")
	}
	if c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required")
	}
	if c.MQTT.Port <= 0 || c.MQTT.Port > 65535 {
		return fmt.Errorf("mqtt.port must be between 1 and 65535, got %d", c.MQTT.Port)
	}
	if c.MQTT.ClientID == "" {
		return fmt.Errorf("mqtt.client_id is required")
	}
	if c.Polling.StatusInterval <= 0 {
		return fmt.Errorf("polling.status_interval must be positive, got %d", c.Polling.StatusInterval)
	}
	if c.Polling.ChannelInterval <= 0 {
		return fmt.Errorf("polling.channel_interval must be positive, got %d", c.Polling.ChannelInterval)
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return fmt.Errorf("metrics.listen is required when metrics are enabled")
	}

	seen := make(map[string]bool)
	for i, ch := range c.Channels {
		if ch.Name == "" {
			return fmt.Errorf("channels[%d].name is required", i)
		}
		if seen[ch.Name] {
			return fmt.Errorf("duplicate channel name %q", ch.Name)
		}
		seen[ch.Name] = true
		if ch.SubAddress > 0x0F {
			return fmt.Errorf("channels[%d].sub_address %d exceeds 4 bits", i, ch.SubAddress)
		}
		if ch.ChannelGroup > 0x0F {
			return fmt.Errorf("channels[%d].channel_group %d exceeds 4 bits", i, ch.ChannelGroup)
		}
	}

	return nil
}
