package logging

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := New("", DEBUG, &buf)

	var seen string
	handler := NewHTTPLogger(logger, 0).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	header := rec.Header().Get("X-Request-ID")
	if header == "" || header != seen {
		t.Fatalf("expected request id on header and context, got header=%q ctx=%q", header, seen)
	}
	entries := decodeEntries(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Level != "WARN" || entries[0].Category != "http" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
	if entries[0].RequestID != header {
		t.Fatalf("expected logged request id %q, got %q", header, entries[0].RequestID)
	}
}

func TestMiddlewareKeepsIncomingRequestID(t *testing.T) {
	logger := New("", DEBUG, &bytes.Buffer{})
	handler := NewHTTPLogger(logger, 0).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-7")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "upstream-7" {
		t.Fatalf("expected upstream id, got %q", got)
	}
}

func TestMiddlewareReplacesUntrustedRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := New("", DEBUG, &buf)
	handler := NewHTTPLogger(logger, 0).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, incoming := range []string{
		strings.Repeat("a", maxRequestIDLen+1),
		"<script>alert(1)</script>",
		"id with spaces",
	} {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", incoming)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		got := rec.Header().Get("X-Request-ID")
		if _, err := uuid.Parse(got); err != nil {
			t.Fatalf("expected generated uuid for %q, got %q", incoming, got)
		}
		if strings.Contains(buf.String(), incoming) {
			t.Fatalf("incoming id %q must not reach the log", incoming)
		}
	}
}

func TestMiddlewareRedactsEmailsAndSensitiveHeaders(t *testing.T) {
	var buf bytes.Buffer
	logger := New("", DEBUG, &buf)
	handler := NewHTTPLogger(logger, 0).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusSeeOther)
	}))

	form := url.Values{"email": {"someone@example.com"}}
	req := httptest.NewRequest(http.MethodPost, "/waitlist", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cookie", "session=abc")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	if strings.Contains(out, "someone") {
		t.Fatalf("expected email local part to be redacted: %s", out)
	}
	if strings.Contains(out, "session=abc") {
		t.Fatalf("expected cookie header to be dropped: %s", out)
	}
}

func TestRedactEmails(t *testing.T) {
	cases := map[string]string{
		`{"email":"user@example.com"}`: `{"email":"***@example.com"}`,
		"email=user%40example.com":     "email=***%40example.com",
		"nothing here":                 "nothing here",
	}
	for in, want := range cases {
		if got := redactEmails(in); got != want {
			t.Fatalf("redactEmails(%q) = %q, want %q", in, got, want)
		}
	}
}
