package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"mqtt-wss-bridge/internal/config"
	"mqtt-wss-bridge/internal/logger"
)

// Publisher publishes bridge and module state to the MQTT broker
// Single Responsibility Principle - only handles publishing
type Publisher struct {
	client     mqtt.Client
	config     *config.HAConfig
	mqttConfig *config.MQTTConfig
}

// NewPublisher creates a new publisher
func NewPublisher(cfg *config.MQTTConfig, haCfg *config.HAConfig) *Publisher {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port))
	opts.SetClientID(cfg.ClientID + "_publisher")
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	// Last will: mark the bridge offline if the connection drops uncleanly
	opts.SetWill(haCfg.StatusTopic, "offline", 0, true)

	publisher := &Publisher{
		config:     haCfg,
		mqttConfig: cfg,
	}

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		logger.LogInfo("✅ Publisher connected to MQTT broker")
	})

	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		logger.LogError("❌ Publisher disconnected: %v", err)
	})

	publisher.client = mqtt.NewClient(opts)
	return publisher
}

// Connect connects the publisher to the broker with infinite retry
func (p *Publisher) Connect(ctx context.Context) error {
	retryDelay := time.Duration(p.mqttConfig.RetryDelay) * time.Millisecond
	if retryDelay == 0 {
		retryDelay = 5000 * time.Millisecond // Default 5 seconds
	}

	attempt := 1
	for {
		logger.LogDebug("🔄 Attempting to connect publisher to MQTT broker (attempt %d)...", attempt)

		if token := p.client.Connect(); token.Wait() && token.Error() != nil {
			logger.LogError("❌ Publisher connection failed (attempt %d): %v", attempt, token.Error())
			logger.LogInfo("⏳ Retrying in %.0f seconds...", retryDelay.Seconds())

			select {
			case <-ctx.Done():
				return fmt.Errorf("publisher connection cancelled: %w", ctx.Err())
			case <-time.After(retryDelay):
				attempt++
				continue
			}
		}

		// Connection successful, wait for full connection establishment
		connected := false
		for i := 0; i < 50; i++ {
			if p.client.IsConnected() {
				connected = true
				break
			}
			select {
			case <-ctx.Done():
				return fmt.Errorf("publisher connection cancelled during establishment: %w", ctx.Err())
			case <-time.After(100 * time.Millisecond):
			}
		}

		if connected {
			logger.LogInfo("✅ Publisher successfully connected to MQTT broker after %d attempts", attempt)
			return nil
		}

		logger.LogWarn("⚠️ Publisher connection not fully established, retrying...")
		if p.client.IsConnected() {
			p.client.Disconnect(250)
		}
		attempt++
		select {
		case <-ctx.Done():
			return fmt.Errorf("publisher connection cancelled: %w", ctx.Err())
		case <-time.After(retryDelay):
		}
	}
}

// Disconnect disconnects the publisher
func (p *Publisher) Disconnect() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}

// IsConnected checks if the publisher is connected
func (p *Publisher) IsConnected() bool {
	return p.client.IsConnected()
}

// publish sends one payload, honoring context cancellation
func (p *Publisher) publish(ctx context.Context, topic string, retained bool, payload interface{}) error {
	if !p.client.IsConnected() {
		return fmt.Errorf("publisher not connected")
	}

	token := p.client.Publish(topic, 0, retained, payload)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
		if token.Error() != nil {
			return fmt.Errorf("error publishing to %s: %w", topic, token.Error())
		}
	}
	return nil
}

// publishJSON marshals payload and publishes it
func (p *Publisher) publishJSON(ctx context.Context, topic string, retained bool, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error serializing payload for %s: %w", topic, err)
	}
	return p.publish(ctx, topic, retained, data)
}

// PublishStatusOnline publishes the retained online status
func (p *Publisher) PublishStatusOnline(ctx context.Context) error {
	if err := p.publish(ctx, p.config.StatusTopic, true, "online"); err != nil {
		return err
	}
	logger.LogDebug("📡 Published bridge status: online")
	return nil
}

// PublishStatusOffline publishes the retained offline status
func (p *Publisher) PublishStatusOffline(ctx context.Context) error {
	if err := p.publish(ctx, p.config.StatusTopic, true, "offline"); err != nil {
		return err
	}
	logger.LogDebug("📡 Published bridge status: offline")
	return nil
}

// PublishDiagnostic publishes a diagnostic code and message as JSON
func (p *Publisher) PublishDiagnostic(ctx context.Context, code int, message string) error {
	diagnostic := map[string]interface{}{
		"code":      code,
		"message":   message,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	return p.publishJSON(ctx, p.config.DiagnosticTopic, false, diagnostic)
}
