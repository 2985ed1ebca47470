// Package logging provides structured JSON line logging with levels and categories.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log entry.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a case-insensitive level name to a Level.
func ParseLevel(raw string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return DEBUG, nil
	case "", "info":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	case "fatal":
		return FATAL, nil
	default:
		return INFO, fmt.Errorf("logging: unknown level %q", raw)
	}
}

// Entry represents a single log entry with structured fields.
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Category  string         `json:"category"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Duration  *int64         `json:"duration_ms,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Logger is a structured logger that writes to multiple outputs.
type Logger struct {
	mu       sync.RWMutex
	minLevel Level
	writers  []io.Writer
	site     string
	now      func() time.Time
}

// New creates a Logger for the named site. With no writers it logs to stdout.
func New(site string, minLevel Level, writers ...io.Writer) *Logger {
	if len(writers) == 0 {
		writers = []io.Writer{os.Stdout}
	}
	return &Logger{
		minLevel: minLevel,
		writers:  writers,
		site:     site,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Discard returns a logger that drops every entry. Handy in tests.
func Discard() *Logger {
	return New("", FATAL+1, io.Discard)
}

// Site reports the site name the logger was created for.
func (l *Logger) Site() string {
	return l.site
}

// SetLevel changes the minimum level at runtime.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.minLevel = level
	l.mu.Unlock()
}

func (l *Logger) enabled(level Level) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.minLevel
}

// Log writes a log entry at the specified level.
func (l *Logger) Log(level Level, category, message string, fields map[string]any) {
	if !l.enabled(level) {
		return
	}
	l.write(Entry{
		Timestamp: l.now(),
		Level:     level.String(),
		Category:  category,
		Message:   message,
		Fields:    fields,
	})
}

// Debug logs a debug message.
func (l *Logger) Debug(category, message string, fields map[string]any) {
	l.Log(DEBUG, category, message, fields)
}

// Info logs an info message.
func (l *Logger) Info(category, message string, fields map[string]any) {
	l.Log(INFO, category, message, fields)
}

// Warn logs a warning message.
func (l *Logger) Warn(category, message string, fields map[string]any) {
	l.Log(WARN, category, message, fields)
}

// Error logs an error message.
func (l *Logger) Error(category, message string, err error, fields map[string]any) {
	if !l.enabled(ERROR) {
		return
	}
	entry := Entry{
		Timestamp: l.now(),
		Level:     ERROR.String(),
		Category:  category,
		Message:   message,
		Fields:    fields,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	l.write(entry)
}

func (l *Logger) write(entry Entry) {
	if l.site != "" {
		if entry.Fields == nil {
			entry.Fields = make(map[string]any, 1)
		}
		if _, ok := entry.Fields["site"]; !ok {
			entry.Fields["site"] = l.site
		}
	}
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal log entry: %v\n", err)
		return
	}
	data = append(data, '\n')

	l.mu.RLock()
	writers := l.writers
	l.mu.RUnlock()

	for _, w := range writers {
		_, _ = w.Write(data)
	}
}

// LogContext carries a request ID, category and fields for a series of entries.
type LogContext struct {
	logger    *Logger
	requestID string
	category  string
	fields    map[string]any
}

// WithRequestID creates a logging context with a request ID.
func (l *Logger) WithRequestID(requestID string) *LogContext {
	return &LogContext{
		logger:    l,
		requestID: requestID,
		fields:    make(map[string]any),
	}
}

// FromContext builds a LogContext using the request ID stored in ctx, if any.
func (l *Logger) FromContext(ctx context.Context) *LogContext {
	return l.WithRequestID(RequestIDFromContext(ctx))
}

// WithCategory sets the category for this context.
func (c *LogContext) WithCategory(category string) *LogContext {
	c.category = category
	return c
}

// WithField adds a field to this context.
func (c *LogContext) WithField(key string, value any) *LogContext {
	if c.fields == nil {
		c.fields = make(map[string]any)
	}
	c.fields[key] = value
	return c
}

// WithFields adds multiple fields to this context.
func (c *LogContext) WithFields(fields map[string]any) *LogContext {
	if c.fields == nil {
		c.fields = make(map[string]any)
	}
	for k, v := range fields {
		c.fields[k] = v
	}
	return c
}

func (c *LogContext) entry(level Level, message string) Entry {
	fields := make(map[string]any, len(c.fields))
	for k, v := range c.fields {
		fields[k] = v
	}
	return Entry{
		Timestamp: c.logger.now(),
		Level:     level.String(),
		Category:  c.category,
		Message:   message,
		Fields:    fields,
		RequestID: c.requestID,
	}
}

// Info logs an info message with the context's request ID and fields.
func (c *LogContext) Info(message string) {
	if !c.logger.enabled(INFO) {
		return
	}
	c.logger.write(c.entry(INFO, message))
}

// Warn logs a warning message with the context's request ID and fields.
func (c *LogContext) Warn(message string) {
	if !c.logger.enabled(WARN) {
		return
	}
	c.logger.write(c.entry(WARN, message))
}

// Error logs an error message with the context's request ID and fields.
func (c *LogContext) Error(message string, err error) {
	if !c.logger.enabled(ERROR) {
		return
	}
	entry := c.entry(ERROR, message)
	if err != nil {
		entry.Error = err.Error()
	}
	c.logger.write(entry)
}

type requestIDKey struct{}

// ContextWithRequestID stores a request ID on ctx.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request ID stored by the HTTP middleware.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
