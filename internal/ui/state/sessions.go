// Package state keeps per-visitor UI state between page loads.
package state

import (
	"sync"
	"time"

	"github.com/Its-donkey/coming-soon/internal/ui/accordion"
	"github.com/Its-donkey/coming-soon/internal/ui/forms"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
)

const (
	// DefaultTTL is the idle lifetime of a visitor session.
	DefaultTTL = 30 * time.Minute
	// DefaultCapacity bounds the number of live sessions. The least recently
	// used session is dropped to make room for a new one.
	DefaultCapacity uint64 = 10000
)

// Visitor is the server-side state behind one browser session.
type Visitor struct {
	ID       string
	Waitlist *forms.Waitlist
	Gift     *forms.GiftClaim
	FAQ      *accordion.Accordion
}

// NewVisitorFunc builds the controllers for a fresh session.
type NewVisitorFunc func(id string) *Visitor

// Sessions maps session ids to visitors and expires idle ones.
type Sessions struct {
	mu         sync.Mutex
	cache      *ttlcache.Cache[string, *Visitor]
	newVisitor NewVisitorFunc
}

// NewSessions returns a session table whose entries expire after ttl without
// a lookup and which never holds more than capacity visitors.
func NewSessions(ttl time.Duration, capacity uint64, newVisitor NewVisitorFunc) *Sessions {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	cache := ttlcache.New[string, *Visitor](
		ttlcache.WithTTL[string, *Visitor](ttl),
		ttlcache.WithCapacity[string, *Visitor](capacity),
	)
	return &Sessions{
		cache:      cache,
		newVisitor: newVisitor,
	}
}

// Start runs the expiry loop until Stop is called. It blocks.
func (s *Sessions) Start() { s.cache.Start() }

// Stop ends the expiry loop.
func (s *Sessions) Stop() { s.cache.Stop() }

// Lookup returns the visitor for id, creating a new session when id is
// unknown, expired or not a valid session id. Each hit extends the session.
func (s *Sessions) Lookup(id string) *Visitor {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := uuid.Parse(id); err == nil {
		if item := s.cache.Get(id); item != nil {
			return item.Value()
		}
	}

	id = uuid.New().String()
	visitor := s.newVisitor(id)
	visitor.ID = id
	s.cache.Set(id, visitor, ttlcache.DefaultTTL)
	return visitor
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int { return s.cache.Len() }
