package services

import (
	"sync"
	"time"
)

// Ticket is one outstanding email-verification code. Issuing a new code for
// the same email overwrites the previous ticket.
type Ticket struct {
	Email     string
	Code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TicketStore keeps the outstanding tickets and the set of verified emails.
// The in-memory implementation below is process-wide state with no
// persistence across restarts; that is acceptable because tickets live five
// minutes and are re-issuable. The interface exists so a durable or
// distributed store can be swapped in without touching call sites.
type TicketStore interface {
	Put(t Ticket)
	Get(email string) (Ticket, bool)
	Delete(email string)
	MarkVerified(email string)
	IsVerified(email string) bool
	ClearVerified(email string)
}

type memoryTicketStore struct {
	mu       sync.Mutex
	capacity int
	tickets  map[string]Ticket
	verified map[string]struct{}
	now      func() time.Time
}

func NewMemoryTicketStore(capacity int) TicketStore {
	if capacity <= 0 {
		capacity = 10000
	}
	return &memoryTicketStore{
		capacity: capacity,
		tickets:  make(map[string]Ticket),
		verified: make(map[string]struct{}),
		now:      time.Now,
	}
}

func (s *memoryTicketStore) Put(t Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tickets[t.Email]; !exists && len(s.tickets) >= s.capacity {
		s.evictLocked()
	}
	s.tickets[t.Email] = t
}

// evictLocked drops expired tickets; if every ticket is still live the
// oldest one goes, so the map never grows past capacity.
func (s *memoryTicketStore) evictLocked() {
	now := s.now()
	var oldestKey string
	var oldestAt time.Time
	for email, t := range s.tickets {
		if now.After(t.ExpiresAt) {
			delete(s.tickets, email)
			continue
		}
		if oldestKey == "" || t.IssuedAt.Before(oldestAt) {
			oldestKey, oldestAt = email, t.IssuedAt
		}
	}
	if len(s.tickets) >= s.capacity && oldestKey != "" {
		delete(s.tickets, oldestKey)
	}
}

func (s *memoryTicketStore) Get(email string) (Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[email]
	return t, ok
}

func (s *memoryTicketStore) Delete(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tickets, email)
}

func (s *memoryTicketStore) MarkVerified(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verified[email] = struct{}{}
}

func (s *memoryTicketStore) IsVerified(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.verified[email]
	return ok
}

func (s *memoryTicketStore) ClearVerified(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.verified, email)
}
