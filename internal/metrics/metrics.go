// Package metrics exposes bridge instrumentation in Prometheus format.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mqtt-wss-bridge/internal/logger"
)

var (
	// CommandsTotal counts completed module round trips by command and outcome
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wss_bridge_commands_total",
		Help: "Module command round trips by command name and outcome.",
	}, []string{"command", "outcome"})

	// RoundTripDuration observes the duration of one module round trip
	RoundTripDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wss_bridge_round_trip_seconds",
		Help:    "Duration of one command round trip over the serial line.",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})

	// ModuleOnline reports whether the module is currently answering
	ModuleOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wss_bridge_module_online",
		Help: "1 when the module answers commands, 0 when it is offline.",
	})

	// MQTTPublishErrors counts failed MQTT publishes
	MQTTPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wss_bridge_mqtt_publish_errors_total",
		Help: "MQTT publish failures.",
	})
)

// ObserveCommand records one round trip outcome and duration
func ObserveCommand(command string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	CommandsTotal.WithLabelValues(command, outcome).Inc()
	RoundTripDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
}

// Serve runs the /metrics endpoint until the context is cancelled
func Serve(ctx context.Context, listen string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: listen, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.LogInfo("📊 Metrics endpoint listening on %s", listen)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.LogError("❌ Metrics endpoint failed: %v", err)
	}
}
