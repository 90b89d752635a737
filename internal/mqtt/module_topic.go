package mqtt

import (
	"context"
	"fmt"
	"time"

	"mqtt-wss-bridge/internal/logger"
)

// ModuleInfo is the static module identification published once at startup
type ModuleInfo struct {
	Vendor          string  `json:"vendor"`
	FirmwareVersion string  `json:"firmware_version"`
	MinFrequencyGHz float64 `json:"min_frequency_ghz"`
	MaxFrequencyGHz float64 `json:"max_frequency_ghz"`
	MinBandwidthGHz float64 `json:"min_bandwidth_ghz"`
	MaxWSSID        int16   `json:"max_wss_id"`
	MaxOCMID        int16   `json:"max_ocm_id"`
	MaxWaveplanID   int16   `json:"max_waveplan_id"`
}

// ModuleStatus is the periodically polled module state
type ModuleStatus struct {
	UptimeSeconds     uint32 `json:"uptime_seconds"`
	OperationalStatus byte   `json:"operational_status"`
	Alarms            uint16 `json:"alarms"`
	Timestamp         string `json:"timestamp"`
}

// PublishModuleInfo publishes the retained module identification
func (p *Publisher) PublishModuleInfo(ctx context.Context, info *ModuleInfo) error {
	topic := fmt.Sprintf("%s/module/info", p.config.BaseTopic)
	if err := p.publishJSON(ctx, topic, true, info); err != nil {
		return err
	}
	logger.LogDebug("📡 Published module info: %s fw %s", info.Vendor, info.FirmwareVersion)
	return nil
}

// PublishModuleStatus publishes the polled module status
func (p *Publisher) PublishModuleStatus(ctx context.Context, status *ModuleStatus) error {
	status.Timestamp = time.Now().Format(time.RFC3339)
	topic := fmt.Sprintf("%s/module/status", p.config.BaseTopic)
	if err := p.publishJSON(ctx, topic, false, status); err != nil {
		return err
	}
	logger.LogTrace("📡 Published module status: uptime=%ds alarms=0x%04X",
		status.UptimeSeconds, status.Alarms)
	return nil
}
