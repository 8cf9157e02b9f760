// Package observability provides the structured logger and prometheus
// metrics used across the middleware chain and the upstream clients.
package observability

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
)

// LogLevel defines the logging verbosity level.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// LogFormat defines the output format for logs.
type LogFormat int

const (
	LogFormatHuman LogFormat = iota
	LogFormatJSON
)

// Logger writes leveled, structured log lines. The zero value is unusable;
// construct with NewLogger.
type Logger struct {
	level  LogLevel
	format LogFormat
}

// NewLogger creates a logger with the given threshold and format.
func NewLogger(level LogLevel, format LogFormat) *Logger {
	return &Logger{level: level, format: format}
}

// ParseLevel maps a config string to a LogLevel, defaulting to info.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// ParseFormat maps a config string to a LogFormat, defaulting to human.
func ParseFormat(s string) LogFormat {
	if strings.EqualFold(s, "json") {
		return LogFormatJSON
	}
	return LogFormatHuman
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, fields map[string]any) { l.emit(LogLevelDebug, "debug", msg, fields) }

// Info logs at info level.
func (l *Logger) Info(msg string, fields map[string]any) { l.emit(LogLevelInfo, "info", msg, fields) }

// Warn logs at warning level.
func (l *Logger) Warn(msg string, fields map[string]any) { l.emit(LogLevelWarn, "warn", msg, fields) }

// Error logs at error level.
func (l *Logger) Error(msg string, fields map[string]any) { l.emit(LogLevelError, "error", msg, fields) }

func (l *Logger) emit(level LogLevel, name, msg string, fields map[string]any) {
	if l == nil || level < l.level {
		return
	}

	if l.format == LogFormatJSON {
		entry := map[string]any{"level": name, "message": msg}
		for k, v := range fields {
			entry[k] = v
		}
		data, err := json.Marshal(entry)
		if err != nil {
			log.Printf(`{"level":"%s","message":%q}`, name, msg)
			return
		}
		log.Print(string(data))
		return
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", strings.ToUpper(name), msg)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, fields[k])
	}
	log.Print(sb.String())
}

// RedactAPIKey shows only the last 4 characters of an API key.
func RedactAPIKey(key string) string {
	if len(key) <= 4 {
		return "[REDACTED]"
	}
	return fmt.Sprintf("[REDACTED-%s]", key[len(key)-4:])
}

// TruncateForLogging caps a body string for log output so diff patches and
// model responses do not flood log aggregators.
func TruncateForLogging(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + fmt.Sprintf("... [truncated, total length=%d bytes]", len(s))
}
