package mqtt

import (
	"context"
	"fmt"
	"time"

	"mqtt-wss-bridge/internal/logger"
)

// ChannelState is the polled state of one monitored channel
type ChannelState struct {
	AttenuationDB float32 `json:"attenuation_db"`
	Blocked       bool    `json:"blocked"`
	PowerDBm      float64 `json:"power_dbm"`
	Timestamp     string  `json:"timestamp"`
}

// SensorConfig is the Home Assistant MQTT Discovery sensor configuration
type SensorConfig struct {
	Name                string     `json:"name"`
	UniqueID            string     `json:"unique_id"`
	StateTopic          string     `json:"state_topic"`
	UnitOfMeasurement   string     `json:"unit_of_measurement,omitempty"`
	DeviceClass         string     `json:"device_class,omitempty"`
	StateClass          string     `json:"state_class,omitempty"`
	ValueTemplate       string     `json:"value_template,omitempty"`
	AvailabilityTopic   string     `json:"availability_topic,omitempty"`
	PayloadAvailable    string     `json:"payload_available,omitempty"`
	PayloadNotAvailable string     `json:"payload_not_available,omitempty"`
	EntityCategory      string     `json:"entity_category,omitempty"`
	Device              DeviceInfo `json:"device"`
}

// DeviceInfo identifies the bridge device in Home Assistant
type DeviceInfo struct {
	Name         string   `json:"name"`
	Identifiers  []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Model        string   `json:"model,omitempty"`
}

// channelStateTopic returns the state topic for one channel
func (p *Publisher) channelStateTopic(name string) string {
	return fmt.Sprintf("%s/channel/%s/state", p.config.BaseTopic, name)
}

// PublishChannelState publishes the polled state of one channel
func (p *Publisher) PublishChannelState(ctx context.Context, name string, state *ChannelState) error {
	state.Timestamp = time.Now().Format(time.RFC3339)
	if err := p.publishJSON(ctx, p.channelStateTopic(name), false, state); err != nil {
		return err
	}
	logger.LogTrace("📡 Published channel %s: %.1f dB blocked=%v %.2f dBm",
		name, state.AttenuationDB, state.Blocked, state.PowerDBm)
	return nil
}

// PublishChannelDiscovery publishes Home Assistant discovery configurations
// for one channel's attenuation and optical power sensors
func (p *Publisher) PublishChannelDiscovery(ctx context.Context, name string) error {
	device := DeviceInfo{
		Name:         p.config.DeviceName,
		Identifiers:  []string{p.config.DeviceID},
		Manufacturer: p.config.Manufacturer,
		Model:        p.config.Model,
	}

	sensors := []SensorConfig{
		{
			Name:                fmt.Sprintf("%s attenuation", name),
			UniqueID:            fmt.Sprintf("%s_%s_attenuation", p.config.DeviceID, name),
			StateTopic:          p.channelStateTopic(name),
			ValueTemplate:       "{{ value_json.attenuation_db }}",
			StateClass:          "measurement",
			UnitOfMeasurement:   "dB",
			AvailabilityTopic:   p.config.StatusTopic,
			PayloadAvailable:    "online",
			PayloadNotAvailable: "offline",
			Device:              device,
		},
		{
			Name:                fmt.Sprintf("%s optical power", name),
			UniqueID:            fmt.Sprintf("%s_%s_power", p.config.DeviceID, name),
			StateTopic:          p.channelStateTopic(name),
			ValueTemplate:       "{{ value_json.power_dbm }}",
			StateClass:          "measurement",
			UnitOfMeasurement:   "dBm",
			AvailabilityTopic:   p.config.StatusTopic,
			PayloadAvailable:    "online",
			PayloadNotAvailable: "offline",
			Device:              device,
		},
	}

	for _, sensor := range sensors {
		discoveryTopic := fmt.Sprintf("%s/sensor/%s/config", p.config.DiscoveryPrefix, sensor.UniqueID)
		if err := p.publishJSON(ctx, discoveryTopic, true, sensor); err != nil {
			return fmt.Errorf("error publishing discovery for %s: %w", sensor.UniqueID, err)
		}
		logger.LogDebug("📡 Published discovery config: %s", discoveryTopic)
	}

	return nil
}
