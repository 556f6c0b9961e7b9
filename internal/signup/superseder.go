package signup

import (
	"context"
	"sync"
)

// Superseder keeps at most one in-flight email check per flow. Beginning a
// new check cancels the previous one, and only the newest ticket may commit
// its result.
type Superseder struct {
	mu       sync.Mutex
	inflight map[string]*Ticket
}

func NewSuperseder() *Superseder {
	return &Superseder{inflight: make(map[string]*Ticket)}
}

// Ticket is the handle of one in-flight request.
type Ticket struct {
	Ctx context.Context

	owner  *Superseder
	flowID string
	cancel context.CancelFunc
}

// Begin registers a request for flowID and cancels whichever one was running.
func (s *Superseder) Begin(parent context.Context, flowID string) *Ticket {
	ctx, cancel := context.WithCancel(parent)
	t := &Ticket{Ctx: ctx, owner: s, flowID: flowID, cancel: cancel}

	s.mu.Lock()
	if prev, ok := s.inflight[flowID]; ok {
		prev.cancel()
	}
	s.inflight[flowID] = t
	s.mu.Unlock()

	return t
}

// Current reports whether t is still the newest request for its flow.
func (t *Ticket) Current() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	return t.owner.inflight[t.flowID] == t && t.Ctx.Err() == nil
}

// Commit runs fn only if t has not been superseded. fn runs under the lock
// so a newer Begin cannot interleave with the state write.
func (t *Ticket) Commit(fn func()) bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.owner.inflight[t.flowID] != t || t.Ctx.Err() != nil {
		return false
	}
	fn()
	return true
}

// Done releases the ticket. It is safe to call more than once.
func (t *Ticket) Done() {
	t.cancel()
	t.owner.mu.Lock()
	if t.owner.inflight[t.flowID] == t {
		delete(t.owner.inflight, t.flowID)
	}
	t.owner.mu.Unlock()
}
