package telemetry

import (
	"log"

	"mech-arena/server/logging"
)

// Logger is the printf-style surface hub and loop components log through.
type Logger interface {
	Printf(format string, args ...any)
}

// Metrics is the counter surface those components report through.
type Metrics interface {
	Add(key string, delta uint64)
	Store(key string, value uint64)
}

// LoggerFunc adapts a function into a Logger.
type LoggerFunc func(format string, args ...any)

func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// NopLogger returns a logger that discards everything.
func NopLogger() Logger {
	return LoggerFunc(func(string, ...any) {})
}

// WrapLogger adapts a standard library logger.
func WrapLogger(logger *log.Logger) Logger {
	if logger == nil {
		return NopLogger()
	}
	return LoggerFunc(logger.Printf)
}

// WrapMetrics adapts the logging metrics store. A nil store yields a
// no-op recorder.
func WrapMetrics(metrics *logging.Metrics) Metrics {
	return metricsBridge{store: metrics}
}

type metricsBridge struct {
	store *logging.Metrics
}

func (b metricsBridge) Add(key string, delta uint64) {
	if b.store != nil {
		b.store.TelemetryAdd(key, delta)
	}
}

func (b metricsBridge) Store(key string, value uint64) {
	if b.store != nil {
		b.store.TelemetryStore(key, value)
	}
}
