package logging

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxCapturedBody = 10 * 1024
	maxRequestIDLen = 64
)

// HTTPLogger logs HTTP requests and responses.
type HTTPLogger struct {
	logger      *Logger
	maxBodySize int
}

// NewHTTPLogger creates a new HTTP logger.
func NewHTTPLogger(logger *Logger, maxBodySize int) *HTTPLogger {
	if maxBodySize == 0 {
		maxBodySize = maxCapturedBody
	}
	return &HTTPLogger{
		logger:      logger,
		maxBodySize: maxBodySize,
	}
}

// responseRecorder captures the response for logging.
type responseRecorder struct {
	http.ResponseWriter
	status      int
	size        int
	body        *bytes.Buffer
	wroteHeader bool
}

func (r *responseRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
		r.ResponseWriter.WriteHeader(status)
	}
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	if r.body != nil && r.body.Len() < maxCapturedBody {
		r.body.Write(b[:min(len(b), maxCapturedBody-r.body.Len())])
	}
	return n, err
}

func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := r.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("responseRecorder does not support hijacking")
}

func (r *responseRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Middleware returns an HTTP middleware that logs requests and responses.
// Every request gets an X-Request-ID that is also stored on the request context.
func (h *HTTPLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := requestIDFrom(r)
		r = r.WithContext(ContextWithRequestID(r.Context(), requestID))

		var requestBody string
		if r.Body != nil && r.ContentLength > 0 && r.ContentLength < int64(h.maxBodySize) {
			bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, int64(h.maxBodySize)))
			if err == nil {
				requestBody = string(bodyBytes)
				r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			}
		}

		recorder := &responseRecorder{
			ResponseWriter: w,
			status:         http.StatusOK,
			body:           &bytes.Buffer{},
		}
		recorder.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(recorder, r)

		duration := time.Since(start).Milliseconds()

		fields := map[string]any{
			"method":         r.Method,
			"path":           r.URL.Path,
			"query":          r.URL.RawQuery,
			"status":         recorder.status,
			"size":           recorder.size,
			"remote_addr":    r.RemoteAddr,
			"user_agent":     r.UserAgent(),
			"referer":        r.Referer(),
			"content_type":   r.Header.Get("Content-Type"),
			"content_length": r.ContentLength,
		}

		// Email local parts never reach the log.
		if requestBody != "" {
			fields["request_body"] = redactEmails(truncate(requestBody, 1000))
		}

		if recorder.body.Len() > 0 && strings.HasPrefix(recorder.Header().Get("Content-Type"), "application/json") {
			fields["response_body"] = truncate(recorder.body.String(), 1000)
		}

		headers := make(map[string]string)
		for name, values := range r.Header {
			if !isSensitiveHeader(name) && name != "X-Request-Id" {
				headers[name] = strings.Join(values, ", ")
			}
		}
		if len(headers) > 0 {
			fields["request_headers"] = headers
		}

		entry := Entry{
			Timestamp: time.Now().UTC(),
			Level:     INFO.String(),
			Category:  "http",
			Message:   fmt.Sprintf("%s %s %d", r.Method, r.URL.Path, recorder.status),
			Fields:    fields,
			RequestID: requestID,
			Duration:  &duration,
		}

		if recorder.status >= 400 {
			entry.Level = WARN.String()
		}
		if recorder.status >= 500 {
			entry.Level = ERROR.String()
		}

		if h.logger.enabled(levelFromString(entry.Level)) {
			h.logger.write(entry)
		}
	})
}

// requestIDFrom reuses the caller's X-Request-ID when it is short and made
// of token characters only. Anything else is replaced with a fresh uuid so
// client input never lands unchecked in logs or response headers.
func requestIDFrom(r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
	if id == "" || len(id) > maxRequestIDLen {
		return uuid.New().String()
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return uuid.New().String()
		}
	}
	return id
}

func levelFromString(s string) Level {
	lvl, err := ParseLevel(s)
	if err != nil {
		return INFO
	}
	return lvl
}

func isSensitiveHeader(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "auth") ||
		strings.Contains(lower, "token") ||
		strings.Contains(lower, "cookie") ||
		strings.Contains(lower, "key") ||
		strings.Contains(lower, "secret")
}

// redactEmails masks the local part of anything that looks like an email
// address, in both raw and form-encoded (%40) bodies.
func redactEmails(body string) string {
	fields := strings.FieldsFunc(body, func(r rune) bool {
		return r == '&' || r == '"' || r == ' ' || r == ',' || r == '{' || r == '}' || r == ':'
	})
	for _, field := range fields {
		at := strings.Index(field, "@")
		sep := 1
		if at < 0 {
			at = strings.Index(strings.ToUpper(field), "%40")
			sep = 3
		}
		if at < 0 {
			continue
		}
		start := strings.LastIndex(field[:at], "=") + 1
		masked := field[:start] + "***" + field[at:at+sep] + field[at+sep:]
		body = strings.Replace(body, field, masked, 1)
	}
	return body
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "... [truncated]"
}
