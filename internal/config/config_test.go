package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validYAML = `
serial:
  device: /dev/ttyUSB0
  timeout: 2000

mqtt:
  broker: localhost
  port: 1883
  client_id: mqtt-wss-bridge
  retry_delay: 5000

homeassistant:
  discovery_prefix: homeassistant
  device_name: WSS Switch
  device_id: wss_switch
  status_topic: wss/status
  diagnostic_topic: wss/diagnostic
  base_topic: wss

polling:
  status_interval: 30000
  channel_interval: 10000

channels:
  - name: ch1
    sub_address: 2
    channel_group: 1
    channel: 5
  - name: ch2
    sub_address: 2
    channel_group: 1
    channel: 6

metrics:
  enabled: true
  listen: ":9105"

logging:
  level: info
`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("cannot write temp config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeTempConfig(t, validYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Serial.Device != "/dev/ttyUSB0" {
		t.Errorf("serial device %q, expected /dev/ttyUSB0", cfg.Serial.Device)
	}
	if cfg.Serial.Timeout != 2000 {
		t.Errorf("serial timeout %d, expected 2000", cfg.Serial.Timeout)
	}
	if cfg.MQTT.Broker != "localhost" || cfg.MQTT.Port != 1883 {
		t.Errorf("mqtt %s:%d, expected localhost:1883", cfg.MQTT.Broker, cfg.MQTT.Port)
	}
	if len(cfg.Channels) != 2 {
		t.Fatalf("%d channels, expected 2", len(cfg.Channels))
	}
	if cfg.Channels[0].Name != "ch1" || cfg.Channels[0].SubAddress != 2 || cfg.Channels[0].Channel != 5 {
		t.Errorf("unexpected first channel: %+v", cfg.Channels[0])
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Listen != ":9105" {
		t.Errorf("unexpected metrics config: %+v", cfg.Metrics)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing configuration file")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	_, err := LoadConfig(writeTempConfig(t, "serial: [unclosed"))
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Serial: SerialConfig{Device: "/dev/ttyUSB0", Timeout: 2000},
			MQTT:   MQTTConfig{Broker: "localhost", Port: 1883, ClientID: "bridge"},
			Polling: PollingConfig{
				StatusInterval:  30000,
				ChannelInterval: 10000,
			},
			Channels: []ChannelConfig{
				{Name: "ch1", SubAddress: 2, ChannelGroup: 1, Channel: 5},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing serial device",
			mutate:  func(c *Config) { c.Serial.Device = "" },
			wantErr: "serial.device",
		},
		{
			name:    "negative serial timeout",
			mutate:  func(c *Config) { c.Serial.Timeout = -1 },
			wantErr: "serial.timeout",
		},
		{
			name:    "missing broker",
			mutate:  func(c *Config) { c.MQTT.Broker = "" },
			wantErr: "mqtt.broker",
		},
		{
			name:    "port too large",
			mutate:  func(c *Config) { c.MQTT.Port = 70000 },
			wantErr: "mqtt.port",
		},
		{
			name:    "missing client id",
			mutate:  func(c *Config) { c.MQTT.ClientID = "" },
			wantErr: "mqtt.client_id",
		},
		{
			name:    "zero status interval",
			mutate:  func(c *Config) { c.Polling.StatusInterval = 0 },
			wantErr: "polling.status_interval",
		},
		{
			name:    "zero channel interval",
			mutate:  func(c *Config) { c.Polling.ChannelInterval = 0 },
			wantErr: "polling.channel_interval",
		},
		{
			name: "metrics enabled without listen address",
			mutate: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.Listen = ""
			},
			wantErr: "metrics.listen",
		},
		{
			name:    "unnamed channel",
			mutate:  func(c *Config) { c.Channels[0].Name = "" },
			wantErr: "name is required",
		},
		{
			name: "duplicate channel names",
			mutate: func(c *Config) {
				c.Channels = append(c.Channels, c.Channels[0])
			},
			wantErr: "duplicate channel name",
		},
		{
			name:    "sub-address exceeds 4 bits",
			mutate:  func(c *Config) { c.Channels[0].SubAddress = 16 },
			wantErr: "sub_address",
		},
		{
			name:    "channel-group exceeds 4 bits",
			mutate:  func(c *Config) { c.Channels[0].ChannelGroup = 16 },
			wantErr: "channel_group",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate failed on valid config: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate error %v, expected mention of %q", err, tt.wantErr)
			}
		})
	}
}
