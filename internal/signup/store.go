package signup

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// FlowCookie carries the id of the browser's signup attempt.
const FlowCookie = "__signup_flow"

// Store keeps the FlowState of in-progress signups in memory. Entries
// expire after ttl of inactivity; a lost entry restarts the flow at the
// email step.
type Store struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		cache: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// NewID returns a fresh flow id.
func (s *Store) NewID() string {
	return uuid.NewString()
}

// Get returns the state for id, or an empty state when none is stored.
func (s *Store) Get(id string) FlowState {
	if id == "" {
		return FlowState{}
	}
	v, ok := s.cache.Get(id)
	if !ok {
		return FlowState{}
	}
	return v.(FlowState)
}

// Save replaces the state for id and resets its expiry.
func (s *Store) Save(id string, state FlowState) {
	s.cache.Set(id, state, s.ttl)
}

func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}
