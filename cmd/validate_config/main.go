package main

import (
	"fmt"
	"os"

	"mqtt-wss-bridge/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: validate_config <config-file>")
		os.Exit(1)
	}

	configPath := os.Args[1]
	fmt.Printf("📄 Loading config from: %s\n", configPath)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("❌ Error loading config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Config loaded successfully!\n")
	fmt.Printf("   Serial device: %s (115200 8N1)\n", cfg.Serial.Device)
	fmt.Printf("   MQTT Broker: %s:%d\n", cfg.MQTT.Broker, cfg.MQTT.Port)
	fmt.Printf("   Status poll interval: %d ms\n", cfg.Polling.StatusInterval)
	fmt.Printf("   Channel poll interval: %d ms\n", cfg.Polling.ChannelInterval)
	if cfg.Metrics.Enabled {
		fmt.Printf("   Metrics: %s\n", cfg.Metrics.Listen)
	}

	fmt.Printf("   Channels: %d\n", len(cfg.Channels))
	for _, ch := range cfg.Channels {
		fmt.Printf("     - %s: sub=%d group=%d channel=%d\n",
			ch.Name, ch.SubAddress, ch.ChannelGroup, ch.Channel)
	}

	fmt.Println("\n✅ Configuration is valid!")
}
