package state

import (
	"testing"
	"time"

	"github.com/Its-donkey/coming-soon/internal/storage"
	"github.com/Its-donkey/coming-soon/internal/ui/accordion"
	"github.com/Its-donkey/coming-soon/internal/ui/forms"
	"github.com/Its-donkey/coming-soon/internal/ui/model"
)

func newTestSessions(ttl time.Duration) *Sessions {
	return newCappedSessions(ttl, 0)
}

func newCappedSessions(ttl time.Duration, capacity uint64) *Sessions {
	store := storage.NewMemoryStore()
	return NewSessions(ttl, capacity, func(id string) *Visitor {
		return &Visitor{
			Waitlist: forms.NewWaitlist(store, nil),
			Gift:     forms.NewGiftClaim(store, nil, "CODE"),
			FAQ:      accordion.New(accordion.Single, true),
		}
	})
}

func TestLookupReusesKnownSession(t *testing.T) {
	sessions := newTestSessions(time.Minute)

	first := sessions.Lookup("")
	if first.ID == "" {
		t.Fatal("expected a session id")
	}
	first.Gift.OpenModal()

	again := sessions.Lookup(first.ID)
	if again != first {
		t.Fatalf("expected the same visitor for %s", first.ID)
	}
	if again.Gift.State().View != model.GiftForm {
		t.Fatalf("expected state to survive between lookups, got %q", again.Gift.State().View)
	}
	if sessions.Len() != 1 {
		t.Fatalf("expected one session, got %d", sessions.Len())
	}
}

func TestLookupIssuesNewIDForUnknownSession(t *testing.T) {
	sessions := newTestSessions(time.Minute)

	for _, id := range []string{"not-a-uuid", "6f1c1f0e-2b7e-4a53-9d43-0d2b1c5f8a11"} {
		visitor := sessions.Lookup(id)
		if visitor.ID == id {
			t.Fatalf("expected a fresh id instead of %q", id)
		}
	}
	if sessions.Len() != 2 {
		t.Fatalf("expected two sessions, got %d", sessions.Len())
	}
}

func TestSessionsExpire(t *testing.T) {
	sessions := newTestSessions(20 * time.Millisecond)
	go sessions.Start()
	defer sessions.Stop()

	visitor := sessions.Lookup("")
	time.Sleep(100 * time.Millisecond)

	if got := sessions.Lookup(visitor.ID); got == visitor {
		t.Fatal("expected expired session to be replaced")
	}
}

func TestLookupDropsLeastRecentSessionAtCapacity(t *testing.T) {
	sessions := newCappedSessions(time.Minute, 2)

	first := sessions.Lookup("")
	second := sessions.Lookup("")
	if sessions.Lookup(first.ID) != first {
		t.Fatal("expected first session to be reused")
	}
	for i := 0; i < 5; i++ {
		sessions.Lookup("")
		if n := sessions.Len(); n > 2 {
			t.Fatalf("expected at most 2 sessions, got %d", n)
		}
	}
	if sessions.Lookup(second.ID) == second {
		t.Fatal("expected oldest session to be evicted")
	}
}
