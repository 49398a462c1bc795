// Package logging provides structured logging functionality.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       true,
		FilePath:   filepath.Join(home, ".config", "ibkr-trader", "logs", "trader.log"),
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     30,
	}
}

// NewLogger creates a new logger with default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(DefaultLogConfig())
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
			FormatLevel: func(i interface{}) string {
				if ll, ok := i.(string); ok {
					switch ll {
					case "debug":
						return "\033[36mDBG\033[0m"
					case "info":
						return "\033[32mINF\033[0m"
					case "warn":
						return "\033[33mWRN\033[0m"
					case "error":
						return "\033[31mERR\033[0m"
					default:
						return ll
					}
				}
				return "???"
			},
		}
		writers = append(writers, consoleWriter)
	}

	// File writer with rotation
	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			fileWriter := &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			}
			writers = append(writers, fileWriter)
		}
	}

	var writer io.Writer
	if len(writers) == 0 {
		writer = os.Stdout
	} else if len(writers) == 1 {
		writer = writers[0]
	} else {
		writer = zerolog.MultiLevelWriter(writers...)
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	return zerolog.New(writer).
		With().
		Timestamp().
		Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithStrategy adds strategy identifiers to the logger context.
func WithStrategy(logger zerolog.Logger, id, name string) zerolog.Logger {
	return logger.With().Str("strategy_id", id).Str("strategy", name).Logger()
}

// WithOrderID adds an order ID to the logger context.
func WithOrderID(logger zerolog.Logger, orderID string) zerolog.Logger {
	return logger.With().Str("order_id", orderID).Logger()
}

// LogOrder logs an order lifecycle event.
func LogOrder(logger zerolog.Logger, kind, coid, orderID string, price float64) {
	logger.Info().
		Str("event", "order").
		Str("kind", kind).
		Str("coid", coid).
		Str("order_id", orderID).
		Float64("price", price).
		Msg("Order placed")
}

// LogAbort logs an aborted execution attempt with its reason.
func LogAbort(logger zerolog.Logger, strategy, reason string, err error) {
	event := logger.Warn().
		Str("event", "abort").
		Str("strategy", strategy).
		Str("reason", reason)
	if err != nil {
		event = event.Err(err)
	}
	event.Msg("Execution aborted")
}

// LogTrigger logs a strategy trigger.
func LogTrigger(logger zerolog.Logger, strategy, source string) {
	logger.Info().
		Str("event", "trigger").
		Str("strategy", strategy).
		Str("source", source).
		Msg("Strategy triggered")
}

// LogAPICall logs a gateway call.
func LogAPICall(logger zerolog.Logger, method, endpoint string, duration time.Duration, err error) {
	event := logger.Debug().
		Str("event", "api_call").
		Str("method", method).
		Str("endpoint", endpoint).
		Dur("duration", duration)

	if err != nil {
		event.Err(err).Msg("API call failed")
	} else {
		event.Msg("API call completed")
	}
}
