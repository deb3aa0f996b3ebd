package swap

import (
	"fmt"
	"sync"
)

// Topic names one invalidatable view.
type Topic string

// SentOffersTopic covers a user's outbox view.
func SentOffersTopic(userID uint) Topic {
	return Topic(fmt.Sprintf("sent-offers:%d", userID))
}

// ReceivedOffersTopic covers a user's inbox view.
func ReceivedOffersTopic(userID uint) Topic {
	return Topic(fmt.Sprintf("received-offers:%d", userID))
}

// OffersForUserTopic covers any view combining both sides for a user.
func OffersForUserTopic(userID uint) Topic {
	return Topic(fmt.Sprintf("offers-for-user:%d", userID))
}

// PendingForBookTopic covers the pending-offer list of one book.
func PendingForBookTopic(bookID uint) Topic {
	return Topic(fmt.Sprintf("pending-for-book:%d", bookID))
}

type subscription struct {
	topic Topic
	hints chan Topic
	fn    func(Topic)
}

// Bus fans staleness hints out to subscribers. Hints carry no data: a
// subscriber re-reads from the store on its next access. Delivery is
// asynchronous and best-effort; hints queued behind an undelivered one for
// the same subscription are coalesced, so subscribers must treat every hint
// as "refresh, you may already be fresh".
type Bus struct {
	mu   sync.RWMutex
	subs map[Topic]map[*subscription]bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic]map[*subscription]bool)}
}

// Subscribe registers fn to run on every hint for topic. fn runs on a
// dedicated goroutine, one hint at a time. The returned cancel func stops
// delivery; it is safe to call more than once.
func (b *Bus) Subscribe(topic Topic, fn func(Topic)) (cancel func()) {
	sub := &subscription{
		topic: topic,
		hints: make(chan Topic, 1),
		fn:    fn,
	}

	b.mu.Lock()
	if _, ok := b.subs[topic]; !ok {
		b.subs[topic] = make(map[*subscription]bool)
	}
	b.subs[topic][sub] = true
	b.mu.Unlock()

	go func() {
		for t := range sub.hints {
			sub.fn(t)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			if subs, ok := b.subs[topic]; ok {
				delete(subs, sub)
				if len(subs) == 0 {
					delete(b.subs, topic)
				}
			}
			b.mu.Unlock()
			close(sub.hints)
		})
	}
}

// Invalidate hints every subscriber of topic. Never blocks: a subscriber
// that already has a hint pending keeps the pending one (coalesced).
func (b *Bus) Invalidate(topic Topic) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs[topic] {
		select {
		case sub.hints <- topic:
		default:
		}
	}
}
