package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"mqtt-wss-bridge/internal/config"
	"mqtt-wss-bridge/internal/logger"
	"mqtt-wss-bridge/internal/metrics"
	"mqtt-wss-bridge/internal/mqtt"
	"mqtt-wss-bridge/internal/transport"
	"mqtt-wss-bridge/internal/wss"
)

// Diagnostic error codes
const (
	DiagnosticOK               = 0
	DiagnosticMQTTDisconnected = 1001
	DiagnosticModuleTimeout    = 1002
	DiagnosticModuleError      = 1003
	DiagnosticConfigError      = 1004
	DiagnosticSerialError      = 1005
)

// Application main application class
// Facade Pattern - simplified interface for complex system
type Application struct {
	config    *config.Config
	serial    *transport.Serial
	driver    *wss.Driver
	publisher *mqtt.Publisher

	// Module status tracking, shared by the status and channel polling
	// loops; stateMu guards every field below
	stateMu           sync.Mutex
	consecutiveErrors int
	isModuleOnline    bool

	// Grace period for offline status - avoid oscillation for temporary errors
	errorGracePeriod   time.Duration // Waiting time before marking as offline
	firstErrorTime     time.Time     // First error in the current sequence
	statusSetToOffline bool          // Flag to avoid repeatedly setting offline status

	// Performance tracking for cleaner output
	lastSummaryTime time.Time
	successfulReads int
	errorReads      int
}

// NewApplication creates a new application instance
func NewApplication(configPath string) (*Application, error) {
	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	// Initialize logging with level
	logger.Init(&logger.LoggingConfig{Level: cfg.Logging.Level, File: cfg.Logging.File})
	logger.LogStartup("Logging initialized with level: %s", cfg.Logging.Level)

	// Open the module's serial line
	serial, err := transport.Open(cfg.Serial.Device)
	if err != nil {
		return nil, fmt.Errorf("error opening serial transport: %w", err)
	}

	// Create the module driver
	driver := wss.NewDriver(serial, time.Duration(cfg.Serial.Timeout)*time.Millisecond)

	// Create publisher
	publisher := mqtt.NewPublisher(&cfg.MQTT, &cfg.HomeAssistant)

	app := &Application{
		config:    cfg,
		serial:    serial,
		driver:    driver,
		publisher: publisher,
		// Initialize module status tracking
		consecutiveErrors: 0,
		isModuleOnline:    true,
		// 15 seconds grace before marking offline
		errorGracePeriod:   15 * time.Second,
		firstErrorTime:     time.Time{},
		statusSetToOffline: false,
		// Initialize performance tracking
		lastSummaryTime: time.Now(),
		successfulReads: 0,
		errorReads:      0,
	}

	return app, nil
}

// Start starts the application
func (app *Application) Start(ctx context.Context) error {
	logger.LogInfo("🚀 Starting MQTT-WSS Bridge...")

	// Connect publisher
	if err := app.publisher.Connect(ctx); err != nil {
		return fmt.Errorf("error connecting publisher: %w", err)
	}

	// Read and publish module identification once at startup
	if err := app.publishModuleInfo(ctx); err != nil {
		logger.LogError("⚠️ Error reading module info: %v", err)
		app.publisher.PublishDiagnostic(ctx, DiagnosticModuleError, fmt.Sprintf("Module info error: %v", err))
	}

	// Publish discovery configurations for Home Assistant
	if err := app.publishDiscoveryConfigs(ctx); err != nil {
		logger.LogError("⚠️ Error publishing discovery configs: %v", err)
		app.publisher.PublishDiagnostic(ctx, DiagnosticConfigError, fmt.Sprintf("Discovery config error: %v", err))
	}

	// Publish online status
	if err := app.publisher.PublishStatusOnline(ctx); err != nil {
		logger.LogError("⚠️ Error publishing online status: %v", err)
	} else {
		app.publisher.PublishDiagnostic(ctx, DiagnosticOK, "MQTT-WSS Bridge started successfully")
	}

	// Start polling loops
	go app.statusLoop(ctx)
	go app.channelLoop(ctx)

	// Start heartbeat to maintain online status
	go app.heartbeatLoop(ctx)

	// Start metrics endpoint
	if app.config.Metrics.Enabled {
		go metrics.Serve(ctx, app.config.Metrics.Listen)
	}

	logger.LogInfo("✅ MQTT-WSS Bridge started successfully")
	return nil
}

// Stop stops the application
func (app *Application) Stop() {
	logger.LogInfo("🛑 Stopping MQTT-WSS Bridge...")

	// Publish offline status before disconnecting
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.publisher.PublishStatusOffline(ctx); err != nil {
		logger.LogError("⚠️ Error publishing offline status: %v", err)
	} else {
		app.publisher.PublishDiagnostic(ctx, DiagnosticOK, "MQTT-WSS Bridge stopped gracefully")
	}

	app.publisher.Disconnect()
	if err := app.serial.Close(); err != nil {
		logger.LogError("⚠️ Error closing serial device: %v", err)
	}

	logger.LogInfo("✅ MQTT-WSS Bridge stopped")
}

// publishModuleInfo reads the static module identification and publishes it
func (app *Application) publishModuleInfo(ctx context.Context) error {
	info := &mqtt.ModuleInfo{}
	var err error

	start := time.Now()
	info.Vendor, err = app.driver.VendorName(ctx)
	metrics.ObserveCommand(wss.CmdVendorName, start, err)
	if err != nil {
		return err
	}
	if info.FirmwareVersion, err = app.driver.FirmwareVersion(ctx); err != nil {
		return err
	}
	if info.MinFrequencyGHz, err = app.driver.MinFrequencyBound(ctx); err != nil {
		return err
	}
	if info.MaxFrequencyGHz, err = app.driver.MaxFrequencyBound(ctx); err != nil {
		return err
	}
	if info.MinBandwidthGHz, err = app.driver.MinChannelBandwidth(ctx); err != nil {
		return err
	}
	if info.MaxWSSID, err = app.driver.MaxWSSID(ctx); err != nil {
		return err
	}
	if info.MaxOCMID, err = app.driver.MaxOCMID(ctx); err != nil {
		return err
	}
	if info.MaxWaveplanID, err = app.driver.MaxWaveplanID(ctx); err != nil {
		return err
	}

	logger.LogInfo("ℹ️ Module: %s, firmware %s, range %.3f-%.3f GHz",
		info.Vendor, info.FirmwareVersion, info.MinFrequencyGHz, info.MaxFrequencyGHz)

	return app.publisher.PublishModuleInfo(ctx, info)
}

// publishDiscoveryConfigs publishes discovery configurations for Home Assistant
func (app *Application) publishDiscoveryConfigs(ctx context.Context) error {
	logger.LogDebug("🔍 Publishing discovery configurations for Home Assistant...")

	for _, ch := range app.config.Channels {
		if err := app.publisher.PublishChannelDiscovery(ctx, ch.Name); err != nil {
			return err
		}
	}
	return nil
}

// statusLoop polls module status and alarms
func (app *Application) statusLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(app.config.Polling.StatusInterval) * time.Millisecond)
	defer ticker.Stop()

	logger.LogDebug("🔄 Status polling started (interval: %dms)", app.config.Polling.StatusInterval)

	for {
		select {
		case <-ctx.Done():
			logger.LogDebug("🔄 Status polling stopped")
			return
		case <-ticker.C:
			app.readModuleStatus(ctx)
		}
	}
}

// channelLoop polls the configured channels
func (app *Application) channelLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(app.config.Polling.ChannelInterval) * time.Millisecond)
	defer ticker.Stop()

	logger.LogDebug("🔄 Channel polling started (interval: %dms, channels: %d)",
		app.config.Polling.ChannelInterval, len(app.config.Channels))

	for {
		select {
		case <-ctx.Done():
			logger.LogDebug("🔄 Channel polling stopped")
			return
		case <-ticker.C:
			for _, ch := range app.config.Channels {
				app.readChannel(ctx, ch)
			}
		}
	}
}

// readModuleStatus reads uptime, operational status and alarms and publishes
// them
func (app *Application) readModuleStatus(ctx context.Context) {
	status := &mqtt.ModuleStatus{}

	start := time.Now()
	uptime, err := app.driver.Uptime(ctx)
	metrics.ObserveCommand(wss.CmdUptime, start, err)
	if err != nil {
		app.handleModuleError(ctx, wss.CmdUptime, err)
		return
	}
	status.UptimeSeconds = uptime

	start = time.Now()
	oper, err := app.driver.OperationalStatus(ctx)
	metrics.ObserveCommand(wss.CmdOperationalStatus, start, err)
	if err != nil {
		app.handleModuleError(ctx, wss.CmdOperationalStatus, err)
		return
	}
	status.OperationalStatus = oper

	start = time.Now()
	alarms, err := app.driver.Alarms(ctx)
	metrics.ObserveCommand(wss.CmdAlarms, start, err)
	if err != nil {
		app.handleModuleError(ctx, wss.CmdAlarms, err)
		return
	}
	status.Alarms = alarms

	app.handleModuleSuccess(ctx)

	if alarms != 0 {
		logger.LogWarn("⚠️ Module alarms active: 0x%04X", alarms)
		app.publisher.PublishDiagnostic(ctx, DiagnosticModuleError,
			fmt.Sprintf("Module alarms active: 0x%04X", alarms))
	}

	if err := app.publisher.PublishModuleStatus(ctx, status); err != nil {
		metrics.MQTTPublishErrors.Inc()
		logger.LogError("❌ Error publishing module status: %v", err)
	}
}

// readChannel reads one channel's attenuation and monitored power and
// publishes them
func (app *Application) readChannel(ctx context.Context, ch config.ChannelConfig) {
	start := time.Now()
	db, blocked, err := app.driver.ChannelAttenuation(ctx, ch.SubAddress, ch.ChannelGroup, ch.Channel)
	metrics.ObserveCommand(wss.CmdGetChannelAtten, start, err)
	if err != nil {
		app.handleModuleError(ctx, ch.Name, err)
		return
	}

	start = time.Now()
	power, err := app.driver.OCMPower(ctx, ch.SubAddress, ch.ChannelGroup, ch.Channel)
	metrics.ObserveCommand(wss.CmdOCMPower, start, err)
	if err != nil {
		app.handleModuleError(ctx, ch.Name, err)
		return
	}

	app.handleModuleSuccess(ctx)

	app.stateMu.Lock()
	app.successfulReads++

	// Periodic summary instead of per-read logging
	if time.Since(app.lastSummaryTime) >= 30*time.Second {
		logger.LogInfo("📊 Summary - Success: %d, Errors: %d, Last 30s", app.successfulReads, app.errorReads)
		app.lastSummaryTime = time.Now()
		app.successfulReads = 0
		app.errorReads = 0
	}
	app.stateMu.Unlock()

	state := &mqtt.ChannelState{AttenuationDB: db, Blocked: blocked, PowerDBm: power}
	if err := app.publisher.PublishChannelState(ctx, ch.Name, state); err != nil {
		metrics.MQTTPublishErrors.Inc()
		logger.LogError("❌ Error publishing channel %s: %v", ch.Name, err)
	}
}

// handleModuleError manages error counting and offline status with grace period
func (app *Application) handleModuleError(ctx context.Context, source string, err error) {
	app.stateMu.Lock()
	defer app.stateMu.Unlock()

	app.consecutiveErrors++
	app.errorReads++

	// Only log errors occasionally to avoid spam
	if app.consecutiveErrors == 1 || app.consecutiveErrors%10 == 0 {
		logger.LogError("❌ Module error (%s): %v", source, err)
	}

	code := DiagnosticModuleError
	var terr *wss.TransportError
	if wss.IsDeviceRejected(err) {
		// The module answered; the line is fine
		app.publisher.PublishDiagnostic(ctx, DiagnosticModuleError,
			fmt.Sprintf("Module rejected %s: %v", source, err))
		return
	} else if errors.As(err, &terr) {
		code = DiagnosticModuleTimeout
	}

	// If this is the first error in the sequence, record the time
	if app.firstErrorTime.IsZero() {
		app.firstErrorTime = time.Now()
		logger.LogWarn("⚠️ First error detected, starting grace period of %.0f seconds", app.errorGracePeriod.Seconds())
	}

	app.publisher.PublishDiagnostic(ctx, code, fmt.Sprintf("%s read error: %v", source, err))

	// Check if we're still in grace period
	timeSinceFirstError := time.Since(app.firstErrorTime)
	if timeSinceFirstError < app.errorGracePeriod {
		logger.LogDebug("🕐 Error %d in grace period (%.1fs/%.0fs) - keeping status online",
			app.consecutiveErrors, timeSinceFirstError.Seconds(), app.errorGracePeriod.Seconds())
		return
	}

	// Grace period expired - set status to offline if not already done
	if app.isModuleOnline && !app.statusSetToOffline {
		app.isModuleOnline = false
		app.statusSetToOffline = true
		metrics.ModuleOnline.Set(0)
		logger.LogError("🔴 Grace period expired - module marked as OFFLINE after %d errors over %.1f seconds",
			app.consecutiveErrors, timeSinceFirstError.Seconds())

		if err := app.publisher.PublishStatusOffline(ctx); err != nil {
			logger.LogError("⚠️ Error publishing offline status: %v", err)
		}
	}
}

// handleModuleSuccess resets error counter and changes status to online when
// the module answers again
func (app *Application) handleModuleSuccess(ctx context.Context) {
	app.stateMu.Lock()
	defer app.stateMu.Unlock()

	app.consecutiveErrors = 0
	app.firstErrorTime = time.Time{}
	app.statusSetToOffline = false
	metrics.ModuleOnline.Set(1)

	if !app.isModuleOnline {
		app.isModuleOnline = true
		logger.LogInfo("🟢 Module marked as ONLINE - communication restored")

		if err := app.publisher.PublishStatusOnline(ctx); err != nil {
			logger.LogError("⚠️ Error publishing online status: %v", err)
		}

		if err := app.publisher.PublishDiagnostic(ctx, DiagnosticOK, "Module communication restored"); err != nil {
			logger.LogError("⚠️ Error publishing recovery diagnostic: %v", err)
		}
	}
}

// moduleOnline reports the tracked module status
func (app *Application) moduleOnline() bool {
	app.stateMu.Lock()
	defer app.stateMu.Unlock()
	return app.isModuleOnline
}

// heartbeatLoop sends periodic "online" status to maintain availability
func (app *Application) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if app.moduleOnline() {
				if err := app.publisher.PublishStatusOnline(ctx); err != nil {
					logger.LogDebug("⚠️ Heartbeat publish failed: %v", err)
				}
			}
		}
	}
}

func main() {
	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT and SIGTERM for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	configPath := ""
	for _, arg := range os.Args[1:] {
		if arg == "--help" || arg == "-h" {
			fmt.Printf("Usage: %s [config_path]\n", os.Args[0])
			fmt.Printf("  config_path: Path to configuration file (optional)\n")
			return
		}
		configPath = arg
	}

	// Create application
	app, err := NewApplication(configPath)
	if err != nil {
		logger.LogError("Application creation error: %v", err)
		os.Exit(1)
	}

	// Start application
	if err := app.Start(ctx); err != nil {
		logger.LogError("Application start error: %v", err)
		os.Exit(1)
	}

	// Wait for stop signal
	<-sigChan
	logger.LogInfo("📢 Stop signal received...")
	cancel()

	// Stop application
	app.Stop()
}
