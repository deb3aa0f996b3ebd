package swap

import (
	"sync"
)

// memStore is an in-memory Store for tests. Its conditional update is atomic
// under the mutex, mirroring the per-row atomicity the real database gives.
type memStore struct {
	mu     sync.Mutex
	offers map[string]*Offer

	// Counters to observe how often views hit the store
	participantQueries int
	bookQueries        int

	// When > 0, UpdateStatus fails with ErrConflict that many times without
	// touching state, to exercise the engine's retry path
	conflictNext int

	// Runs under the lock each time conflictNext is consumed, standing in
	// for the competing writer that caused the conflict
	onConflict func()

	// When set, every call fails with this error
	failWith error
}

func newMemStore() *memStore {
	return &memStore{offers: make(map[string]*Offer)}
}

func (s *memStore) Put(offer *Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return s.failWith
	}
	copied := *offer
	s.offers[offer.ID] = &copied
	return nil
}

func (s *memStore) Get(id string) (*Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return nil, s.failWith
	}
	offer, ok := s.offers[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *offer
	return &copied, nil
}

func (s *memStore) UpdateStatus(id string, from, to Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return s.failWith
	}
	if s.conflictNext > 0 {
		s.conflictNext--
		if s.onConflict != nil {
			s.onConflict()
		}
		return ErrConflict
	}
	offer, ok := s.offers[id]
	if !ok {
		return ErrNotFound
	}
	if offer.Status != from {
		return ErrConflict
	}
	offer.Status = to
	return nil
}

func (s *memStore) QueryByParticipant(userID uint, role Role) ([]Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return nil, s.failWith
	}
	s.participantQueries++

	var offers []Offer
	for _, offer := range s.offers {
		switch role {
		case RoleSender:
			if offer.SenderID != userID {
				continue
			}
		case RoleRecipient:
			if offer.RecipientID != userID {
				continue
			}
		default:
			if offer.SenderID != userID && offer.RecipientID != userID {
				continue
			}
		}
		offers = append(offers, *offer)
	}
	return offers, nil
}

func (s *memStore) QueryPendingByBook(bookID uint) ([]Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return nil, s.failWith
	}
	s.bookQueries++

	var offers []Offer
	for _, offer := range s.offers {
		if offer.BookID == bookID && offer.Status == StatusPending {
			offers = append(offers, *offer)
		}
	}
	return offers, nil
}

func (s *memStore) status(id string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offers[id].Status
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.offers)
}

// recordingBus captures invalidated topics synchronously.
type recordingBus struct {
	mu     sync.Mutex
	topics []Topic
}

func (b *recordingBus) Invalidate(topic Topic) {
	b.mu.Lock()
	b.topics = append(b.topics, topic)
	b.mu.Unlock()
}

func (b *recordingBus) all() []Topic {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Topic(nil), b.topics...)
}

// recordingNotifier captures transition events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []TransitionEvent
}

func (n *recordingNotifier) NotifyTransition(ev TransitionEvent) {
	n.mu.Lock()
	n.events = append(n.events, ev)
	n.mu.Unlock()
}

func (n *recordingNotifier) all() []TransitionEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]TransitionEvent(nil), n.events...)
}
