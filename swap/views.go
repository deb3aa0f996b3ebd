package swap

import "sync"

// View is a cached, read-only projection over the store. It starts stale,
// populates on first read and serves the cache until an invalidation hint
// marks it stale again. Views never hold authoritative state.
type View struct {
	query  func() ([]Offer, error)
	cancel []func()

	mu     sync.Mutex
	stale  bool
	cached []Offer
}

func newView(bus *Bus, query func() ([]Offer, error), topics ...Topic) *View {
	v := &View{query: query, stale: true}
	for _, topic := range topics {
		v.cancel = append(v.cancel, bus.Subscribe(topic, func(Topic) {
			v.markStale()
		}))
	}
	return v
}

func (v *View) markStale() {
	v.mu.Lock()
	v.stale = true
	v.mu.Unlock()
}

// Offers returns the projection, refreshing from the store first if a hint
// arrived since the last read. A failed refresh keeps the view stale so the
// next read retries.
func (v *View) Offers() ([]Offer, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.stale {
		offers, err := v.query()
		if err != nil {
			return nil, err
		}
		v.cached = offers
		v.stale = false
	}
	return v.cached, nil
}

// Close detaches the view from the bus.
func (v *View) Close() {
	for _, cancel := range v.cancel {
		cancel()
	}
}

// Views hands out the per-user and per-book projections, creating each one
// lazily on first use and keeping it subscribed for later reads.
type Views struct {
	store Store
	bus   *Bus

	mu       sync.Mutex
	sent     map[uint]*View
	received map[uint]*View
	byBook   map[uint]*View
}

// NewViews creates the view registry over a store and bus.
func NewViews(store Store, bus *Bus) *Views {
	return &Views{
		store:    store,
		bus:      bus,
		sent:     make(map[uint]*View),
		received: make(map[uint]*View),
		byBook:   make(map[uint]*View),
	}
}

// Sent is the user's outbox: offers they made, newest first.
func (vs *Views) Sent(userID uint) *View {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if v, ok := vs.sent[userID]; ok {
		return v
	}
	v := newView(vs.bus, func() ([]Offer, error) {
		return vs.store.QueryByParticipant(userID, RoleSender)
	}, SentOffersTopic(userID))
	vs.sent[userID] = v
	return v
}

// Received is the user's inbox: offers made to them, newest first.
func (vs *Views) Received(userID uint) *View {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if v, ok := vs.received[userID]; ok {
		return v
	}
	v := newView(vs.bus, func() ([]Offer, error) {
		return vs.store.QueryByParticipant(userID, RoleRecipient)
	}, ReceivedOffersTopic(userID))
	vs.received[userID] = v
	return v
}

// PendingForBook lists the open offers on one book.
func (vs *Views) PendingForBook(bookID uint) *View {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if v, ok := vs.byBook[bookID]; ok {
		return v
	}
	v := newView(vs.bus, func() ([]Offer, error) {
		return vs.store.QueryPendingByBook(bookID)
	}, PendingForBookTopic(bookID))
	vs.byBook[bookID] = v
	return v
}
