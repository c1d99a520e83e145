// Package observability supplies the structured logging backend, otel
// tracing helpers, and layered Config that the rest of cmdforge builds
// its logging/tracing/metrics behavior on top of.
package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"cmdforge/internal/security/redaction"
)

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// LogConfig configures a structured Logger.
type LogConfig struct {
	Level  string
	Format string // "text" or "json"
	Output io.Writer
}

// Logger is the structured logging backend. It satisfies
// internal/logging.Backend via Log.
type Logger struct {
	mu     sync.Mutex
	level  int
	format string
	out    io.Writer
}

// NewLogger builds a Logger from config, defaulting to info/text/stderr.
func NewLogger(config LogConfig) *Logger {
	level, ok := levelRank[config.Level]
	if !ok {
		level = levelRank["info"]
	}
	format := config.Format
	if format == "" {
		format = "text"
	}
	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	return &Logger{level: level, format: format, out: out}
}

// Log writes a message at level if it meets the configured threshold.
func (l *Logger) Log(level, format string, args ...any) {
	rank, ok := levelRank[level]
	if !ok {
		rank = levelRank["info"]
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if rank < l.level {
		return
	}

	msg := fmt.Sprintf(format, args...)
	switch l.format {
	case "json":
		line, err := json.Marshal(map[string]string{
			"time":    time.Now().UTC().Format(time.RFC3339Nano),
			"level":   level,
			"message": msg,
		})
		if err != nil {
			return
		}
		fmt.Fprintln(l.out, string(line))
	default:
		fmt.Fprintf(l.out, "%s [%s] %s\n", time.Now().UTC().Format(time.RFC3339), level, msg)
	}
}

// LogFields writes msg at level alongside structured fields, with any
// field whose name or value looks like a credential masked first. Used
// for logging things like MCP server env or runbook variable bindings,
// where the values passed through are not controlled by cmdforge itself.
func (l *Logger) LogFields(level, msg string, fields map[string]any) {
	rank, ok := levelRank[level]
	if !ok {
		rank = levelRank["info"]
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if rank < l.level {
		return
	}

	safe := redaction.RedactMap(fields)

	switch l.format {
	case "json":
		record := map[string]any{
			"time":    time.Now().UTC().Format(time.RFC3339Nano),
			"level":   level,
			"message": msg,
		}
		for k, v := range safe {
			record[k] = v
		}
		line, err := json.Marshal(record)
		if err != nil {
			return
		}
		fmt.Fprintln(l.out, string(line))
	default:
		fmt.Fprintf(l.out, "%s [%s] %s %v\n", time.Now().UTC().Format(time.RFC3339), level, msg, safe)
	}
}
