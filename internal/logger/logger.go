package logger

import (
	"log"
	"os"
	"strings"
)

// LogLevel constants
const (
	LogLevelError = "error"
	LogLevelWarn  = "warn"
	LogLevelInfo  = "info"
	LogLevelDebug = "debug"
	LogLevelTrace = "trace"
)

// LoggingConfig represents the logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Global logging configuration
var GlobalLogging *LoggingConfig

// Init applies the logging configuration: sets the global level and
// redirects output to the configured file when one is given
func Init(config *LoggingConfig) {
	GlobalLogging = config

	if config.File != "" {
		// 0600: owner read/write only
		output, err := os.OpenFile(config.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			log.Printf("Failed to open log file %s: %v", config.File, err)
			return
		}
		log.SetOutput(output)
	}
}

// shouldLog checks if a message should be logged based on current level
func shouldLog(currentLevel, messageLevel string) bool {
	levels := []string{LogLevelError, LogLevelWarn, LogLevelInfo, LogLevelDebug, LogLevelTrace}

	currentIndex := -1
	messageIndex := -1

	for i, level := range levels {
		if level == currentLevel {
			currentIndex = i
		}
		if level == messageLevel {
			messageIndex = i
		}
	}

	// If either level is not found, default to allowing the message
	if currentIndex == -1 || messageIndex == -1 {
		return true
	}

	return messageIndex <= currentIndex
}

// LogStartup logs startup messages that should always be visible regardless of log level
func LogStartup(format string, args ...interface{}) {
	log.Printf("🔧 "+format, args...)
}

// Helper functions for global logging
func LogError(format string, args ...interface{}) {
	if GlobalLogging != nil && shouldLog(strings.ToLower(GlobalLogging.Level), LogLevelError) {
		log.Printf("❌ "+format, args...)
	}
}

func LogWarn(format string, args ...interface{}) {
	if GlobalLogging != nil && shouldLog(strings.ToLower(GlobalLogging.Level), LogLevelWarn) {
		log.Printf("⚠️ "+format, args...)
	}
}

func LogInfo(format string, args ...interface{}) {
	if GlobalLogging != nil && shouldLog(strings.ToLower(GlobalLogging.Level), LogLevelInfo) {
		log.Printf("ℹ️ "+format, args...)
	}
}

func LogDebug(format string, args ...interface{}) {
	if GlobalLogging != nil && shouldLog(strings.ToLower(GlobalLogging.Level), LogLevelDebug) {
		log.Printf("🔧 "+format, args...)
	}
}

func LogTrace(format string, args ...interface{}) {
	if GlobalLogging != nil && shouldLog(strings.ToLower(GlobalLogging.Level), LogLevelTrace) {
		log.Printf("🔍 "+format, args...)
	}
}

// IsDebugEnabled checks if debug logging is enabled
func IsDebugEnabled() bool {
	return GlobalLogging != nil && shouldLog(strings.ToLower(GlobalLogging.Level), LogLevelDebug)
}

// IsTraceEnabled checks if trace logging is enabled
func IsTraceEnabled() bool {
	return GlobalLogging != nil && shouldLog(strings.ToLower(GlobalLogging.Level), LogLevelTrace)
}
