package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Its-donkey/coming-soon/internal/storage"
	"github.com/Its-donkey/coming-soon/internal/ui/forms"
	"github.com/Its-donkey/coming-soon/internal/ui/model"
)

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAPIWaitlistStatusCodes(t *testing.T) {
	store := storage.NewMemoryStore()
	handler, err := NewHandler(Options{Config: testConfig(t, nil), Store: store})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	steps := []struct {
		name   string
		body   string
		status int
		kind   model.ErrorKind
	}{
		{name: "empty body", body: "", status: http.StatusBadRequest},
		{name: "malformed", body: "{", status: http.StatusBadRequest},
		{name: "invalid email", body: `{"email":"nope"}`, status: http.StatusUnprocessableEntity, kind: model.ErrorValidation},
		{name: "new email", body: `{"email":"user@example.com"}`, status: http.StatusCreated},
		{name: "duplicate", body: `{"email":" user@example.com "}`, status: http.StatusConflict, kind: model.ErrorConflict},
	}
	for _, step := range steps {
		rr := postJSON(t, handler, "/api/waitlist", step.body)
		if rr.Code != step.status {
			t.Fatalf("%s: expected %d, got %d (%s)", step.name, step.status, rr.Code, rr.Body.String())
		}
		if step.status == http.StatusBadRequest {
			continue
		}
		var got model.SubmissionStatus
		if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
			t.Fatalf("%s: decode: %v", step.name, err)
		}
		if got.Error != step.kind {
			t.Fatalf("%s: expected kind %q, got %+v", step.name, step.kind, got)
		}
	}
	if n := len(store.Records(storage.TableSubscribers)); n != 1 {
		t.Fatalf("expected one subscriber, got %d", n)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/waitlist", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestAPIWaitlistTransportFailure(t *testing.T) {
	handler, err := NewHandler(Options{Config: testConfig(t, nil), Store: failingStore{}})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	rr := postJSON(t, handler, "/api/waitlist", `{"email":"user@example.com"}`)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Something went wrong") {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}

func TestAPIGiftClaims(t *testing.T) {
	store := storage.NewMemoryStore()
	cfg := testConfig(t, map[string]string{"SITE_GIFT_CODE": "HELLO20", "SITE_SHOW_GIFT_CODE": "true"})
	handler, err := NewHandler(Options{Config: cfg, Store: store})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	rr := postJSON(t, handler, "/api/gift-claims", `{"email":"user@example.com"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	var got giftClaimResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.State != model.StatusSuccess || got.View != model.GiftConfirmation || !strings.Contains(got.Message, "HELLO20") {
		t.Fatalf("unexpected response %+v", got)
	}

	rr = postJSON(t, handler, "/api/gift-claims", `{"email":"user@example.com"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	got = giftClaimResponse{}
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != model.ErrorConflict || got.View != model.GiftForm || got.Message != "This email has already claimed the gift." {
		t.Fatalf("unexpected conflict response %+v", got)
	}

	if n := len(store.Records(storage.TableGiftEligible)); n != 1 {
		t.Fatalf("expected one claim, got %d", n)
	}
	if n := len(store.Records(storage.TableSubscribers)); n != 0 {
		t.Fatalf("gift claims must not add subscribers, got %d", n)
	}
}

func TestAPIGiftClaimHidesCodeByDefault(t *testing.T) {
	cfg := testConfig(t, map[string]string{"SITE_GIFT_CODE": "HELLO20"})
	handler, err := NewHandler(Options{Config: cfg, Store: storage.NewMemoryStore()})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	rr := postJSON(t, handler, "/api/gift-claims", `{"email":"user@example.com"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	var got giftClaimResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Contains(got.Message, "HELLO20") || got.Message != forms.MsgGiftEmailed {
		t.Fatalf("expected emailed confirmation without the code, got %q", got.Message)
	}
}

func TestAPICORS(t *testing.T) {
	preflight := func(handler http.Handler) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/waitlist", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	withOrigins, err := NewHandler(Options{
		Config: testConfig(t, map[string]string{"CORS_ORIGINS": "https://shop.example.com"}),
		Store:  storage.NewMemoryStore(),
	})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	rr := preflight(withOrigins)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example.com" {
		t.Fatalf("expected allowed origin, got %q", got)
	}

	withoutOrigins, err := NewHandler(Options{Config: testConfig(t, nil), Store: storage.NewMemoryStore()})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	rr = preflight(withoutOrigins)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no CORS header, got %q", got)
	}
}
