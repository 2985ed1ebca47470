package forms

import (
	"context"
	"errors"
	"testing"

	"github.com/Its-donkey/coming-soon/internal/storage"
	"github.com/Its-donkey/coming-soon/internal/ui/model"
)

func TestWaitlistRejectsInputWithoutAt(t *testing.T) {
	for _, input := range []string{"", "   ", "not-an-email", "user.example.com"} {
		store := newCountingStore()
		w := NewWaitlist(store, nil)

		status, err := w.Submit(context.Background(), input)
		if err != nil {
			t.Fatalf("submit %q: %v", input, err)
		}
		if store.Calls(storage.TableSubscribers) != 0 {
			t.Fatalf("expected no store call for %q", input)
		}
		if status.Error != model.ErrorValidation || status.Message != MsgInvalidEmail {
			t.Fatalf("unexpected status for %q: %+v", input, status)
		}
		if len(store.Records(storage.TableSubscribers)) != 0 {
			t.Fatalf("store changed for %q", input)
		}
	}
}

func TestWaitlistSuccessThenConflict(t *testing.T) {
	store := newCountingStore()
	w := NewWaitlist(store, nil)
	ctx := context.Background()

	status, err := w.Submit(ctx, "  user@example.com ")
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if !status.IsSuccess() || status.Message != MsgWaitlistSuccess {
		t.Fatalf("expected success, got %+v", status)
	}
	if w.Input() != "" {
		t.Fatalf("expected input cleared after success, got %q", w.Input())
	}
	records := store.Records(storage.TableSubscribers)
	if len(records) != 1 || records[0].Email != "user@example.com" {
		t.Fatalf("expected one trimmed record, got %+v", records)
	}

	status, err = w.Submit(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if status.Error != model.ErrorConflict || status.Message != MsgWaitlistConflict {
		t.Fatalf("expected conflict, got %+v", status)
	}
	if got := len(store.Records(storage.TableSubscribers)); got != 1 {
		t.Fatalf("expected store unchanged, got %d records", got)
	}
	if store.Calls(storage.TableSubscribers) != 2 {
		t.Fatalf("expected exactly one insert per valid submit, got %d", store.Calls(storage.TableSubscribers))
	}
	if w.Input() != "user@example.com" {
		t.Fatalf("expected input kept after conflict, got %q", w.Input())
	}
}

func TestWaitlistTransportFailure(t *testing.T) {
	w := NewWaitlist(failingStore{err: errUnreachable}, nil)
	status, err := w.Submit(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if status.Error != model.ErrorTransport || status.Message != MsgWaitlistFailure {
		t.Fatalf("expected transport failure, got %+v", status)
	}

	w = NewWaitlist(nil, nil)
	if status, _ := w.Submit(context.Background(), "user@example.com"); status.Error != model.ErrorTransport {
		t.Fatalf("expected transport failure without a store, got %+v", status)
	}
}

func TestWaitlistRejectsSubmitWhilePending(t *testing.T) {
	store := newBlockingStore(nil)
	w := NewWaitlist(store, nil)

	done := make(chan model.SubmissionStatus)
	go func() {
		status, _ := w.Submit(context.Background(), "first@example.com")
		done <- status
	}()
	<-store.started

	if !w.Status().IsPending() {
		t.Fatalf("expected pending status, got %+v", w.Status())
	}
	if _, err := w.Submit(context.Background(), "second@example.com"); !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("expected ErrSubmissionInFlight, got %v", err)
	}
	w.Reset()
	if !w.Status().IsPending() {
		t.Fatal("reset must not clear a pending submission")
	}

	close(store.release)
	if status := <-done; !status.IsSuccess() {
		t.Fatalf("expected first submit to succeed, got %+v", status)
	}
	w.Reset()
	if state := w.State(); !state.Status.IsIdle() || state.Input != "" {
		t.Fatalf("expected idle after reset, got %+v", state)
	}
}
