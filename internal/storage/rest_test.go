package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakePostgREST mimics the hosted insert endpoint with unique email columns.
type fakePostgREST struct {
	mu       sync.Mutex
	rows     map[string]map[string]bool
	lastAuth string
	lastKey  string
	calls    int
	// conflictStatus lets a test choose how duplicates are reported.
	conflictStatus int
}

func newFakePostgREST() *fakePostgREST {
	return &fakePostgREST{rows: map[string]map[string]bool{}, conflictStatus: http.StatusConflict}
}

func (f *fakePostgREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastAuth = r.Header.Get("Authorization")
	f.lastKey = r.Header.Get("apikey")

	if r.Method != http.MethodPost || !strings.HasPrefix(r.URL.Path, "/rest/v1/") {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if f.rows[table] == nil {
		f.rows[table] = map[string]bool{}
	}
	if f.rows[table][payload.Email] {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.conflictStatus)
		_, _ = w.Write([]byte(`{"code":"23505","message":"duplicate key value violates unique constraint"}`))
		return
	}
	f.rows[table][payload.Email] = true
	w.WriteHeader(http.StatusCreated)
}

func TestRESTStoreContract(t *testing.T) {
	fake := newFakePostgREST()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	store, err := NewRESTStore(RESTOptions{URL: srv.URL, Key: "anon-key"})
	if err != nil {
		t.Fatalf("new rest store: %v", err)
	}
	exerciseEmailStore(t, store)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.lastAuth != "Bearer anon-key" || fake.lastKey != "anon-key" {
		t.Fatalf("expected credentials on request, got auth=%q apikey=%q", fake.lastAuth, fake.lastKey)
	}
	if !fake.rows["subscribers"]["user@example.com"] || !fake.rows["eligible_for_gift"]["other@example.com"] {
		t.Fatalf("unexpected rows: %+v", fake.rows)
	}
}

func TestRESTStoreDetectsConflictByCode(t *testing.T) {
	fake := newFakePostgREST()
	fake.conflictStatus = http.StatusBadRequest
	srv := httptest.NewServer(fake)
	defer srv.Close()

	store, err := NewRESTStore(RESTOptions{URL: srv.URL + "/rest/v1/", Key: "k"})
	if err != nil {
		t.Fatalf("new rest store: %v", err)
	}
	ctx := context.Background()
	if err := store.Insert(ctx, TableSubscribers, "user@example.com"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !IsConflict(store.Insert(ctx, TableSubscribers, "user@example.com")) {
		t.Fatalf("expected 23505 body code to map to conflict")
	}
}

func TestRESTStoreConflictStatusNeedsUniqueViolation(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		conflict bool
	}{
		{name: "foreign key violation", body: `{"code":"23503","message":"violates foreign key constraint"}`},
		{name: "exclusion violation", body: `{"code":"23P01","message":"conflicting key value violates exclusion constraint"}`},
		{name: "unique violation", body: `{"code":"23505","message":"duplicate key"}`, conflict: true},
		{name: "no code", body: `{"message":"conflict"}`, conflict: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			store, err := NewRESTStore(RESTOptions{URL: srv.URL, Key: "k"})
			if err != nil {
				t.Fatalf("new rest store: %v", err)
			}
			err = store.Insert(context.Background(), TableSubscribers, "user@example.com")
			if err == nil || IsConflict(err) != tc.conflict {
				t.Fatalf("expected conflict=%t, got %v", tc.conflict, err)
			}
			if !tc.conflict && !strings.Contains(err.Error(), "409") {
				t.Fatalf("expected status in transport error, got %v", err)
			}
		})
	}
}

func TestRESTStoreReportsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"maintenance"}`))
	}))
	defer srv.Close()

	store, err := NewRESTStore(RESTOptions{URL: srv.URL, Key: "k"})
	if err != nil {
		t.Fatalf("new rest store: %v", err)
	}
	err = store.Insert(context.Background(), TableSubscribers, "user@example.com")
	if err == nil || IsConflict(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "maintenance") {
		t.Fatalf("expected status and message in error, got %v", err)
	}
}

func TestRESTStoreTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	store, err := NewRESTStore(RESTOptions{URL: srv.URL, Key: "k", Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("new rest store: %v", err)
	}
	err = store.Insert(context.Background(), TableSubscribers, "user@example.com")
	if err == nil || IsConflict(err) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestNewRESTStoreValidatesOptions(t *testing.T) {
	cases := []RESTOptions{
		{URL: "", Key: "k"},
		{URL: "https://db.example.com", Key: ""},
		{URL: "not a url", Key: "k"},
	}
	for _, opts := range cases {
		if _, err := NewRESTStore(opts); err == nil {
			t.Fatalf("expected error for %+v", opts)
		}
	}
}
