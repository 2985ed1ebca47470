package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// uniqueViolationCode is the SQLSTATE reported by the hosted database for
// duplicate keys.
const uniqueViolationCode = "23505"

// RESTOptions configures a RESTStore.
type RESTOptions struct {
	URL     string
	Key     string
	Timeout time.Duration
	Client  *http.Client
}

// RESTStore inserts rows through a hosted PostgREST-style API
// (POST <url>/rest/v1/<table>).
type RESTStore struct {
	endpoint string
	key      string
	client   *http.Client
}

type restError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// NewRESTStore validates opts and returns a store for the hosted API.
func NewRESTStore(opts RESTOptions) (*RESTStore, error) {
	raw := strings.TrimSpace(opts.URL)
	if raw == "" || strings.TrimSpace(opts.Key) == "" {
		return nil, errors.New("storage: rest store requires url and key")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("storage: invalid rest url %q", raw)
	}
	endpoint := strings.TrimSuffix(u.String(), "/")
	if !strings.HasSuffix(endpoint, "/rest/v1") {
		endpoint += "/rest/v1"
	}

	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &RESTStore{
		endpoint: endpoint,
		key:      strings.TrimSpace(opts.Key),
		client:   client,
	}, nil
}

// Name implements EmailStore.
func (s *RESTStore) Name() string { return "rest" }

// Close implements EmailStore.
func (s *RESTStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// Insert implements EmailStore.
func (s *RESTStore) Insert(ctx context.Context, table Table, email string) error {
	if err := checkInsert(ctx, table, email); err != nil {
		return err
	}

	body, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return err
	}
	target := s.endpoint + "/" + url.PathEscape(string(table))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("storage: build rest request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("storage: rest insert into %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr restError
	_ = json.Unmarshal(payload, &apiErr)

	// A 409 also covers foreign key and exclusion failures, so only a
	// unique violation or a bare 409 without a code counts as a duplicate.
	if apiErr.Code == uniqueViolationCode || (resp.StatusCode == http.StatusConflict && apiErr.Code == "") {
		return conflictError(table)
	}

	message := strings.TrimSpace(apiErr.Message)
	if message == "" {
		message = strings.TrimSpace(string(payload))
	}
	return fmt.Errorf("storage: rest insert into %s: status %d: %s", table, resp.StatusCode, message)
}
