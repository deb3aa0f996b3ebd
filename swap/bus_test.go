package swap

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversHint(t *testing.T) {
	bus := NewBus()
	topic := SentOffersTopic(1)

	hints := make(chan Topic, 1)
	cancel := bus.Subscribe(topic, func(tp Topic) { hints <- tp })
	defer cancel()

	bus.Invalidate(topic)

	select {
	case got := <-hints:
		assert.Equal(t, topic, got)
	case <-time.After(time.Second):
		t.Fatal("hint was not delivered")
	}
}

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()
	topic := ReceivedOffersTopic(2)

	first := make(chan Topic, 1)
	second := make(chan Topic, 1)
	cancelFirst := bus.Subscribe(topic, func(tp Topic) { first <- tp })
	defer cancelFirst()
	cancelSecond := bus.Subscribe(topic, func(tp Topic) { second <- tp })
	defer cancelSecond()

	bus.Invalidate(topic)

	for _, hints := range []chan Topic{first, second} {
		select {
		case <-hints:
		case <-time.After(time.Second):
			t.Fatal("hint was not delivered to every subscriber")
		}
	}
}

func TestBusTopicIsolation(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	var got []Topic
	cancel := bus.Subscribe(SentOffersTopic(1), func(tp Topic) {
		mu.Lock()
		got = append(got, tp)
		mu.Unlock()
	})
	defer cancel()

	bus.Invalidate(SentOffersTopic(99))
	bus.Invalidate(PendingForBookTopic(1))

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, got)
}

func TestBusUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()
	topic := PendingForBookTopic(10)

	var mu sync.Mutex
	count := 0
	cancel := bus.Subscribe(topic, func(Topic) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	bus.Invalidate(topic)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	cancel() // safe to call twice

	bus.Invalidate(topic)
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, count)
}

func TestBusCoalescesPendingHints(t *testing.T) {
	bus := NewBus()
	topic := OffersForUserTopic(3)

	var mu sync.Mutex
	count := 0
	started := make(chan struct{})
	release := make(chan struct{})

	cancel := bus.Subscribe(topic, func(Topic) {
		mu.Lock()
		count++
		first := count == 1
		mu.Unlock()
		if first {
			started <- struct{}{}
			<-release
		}
	})
	defer cancel()

	bus.Invalidate(topic)
	<-started

	// While the first delivery is in flight, a burst of hints must collapse
	// into a single pending one.
	for i := 0; i < 5; i++ {
		bus.Invalidate(topic)
	}
	close(release)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 2
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, count)
}

func TestBusInvalidateNeverBlocks(t *testing.T) {
	bus := NewBus()
	topic := SentOffersTopic(4)

	block := make(chan struct{})
	cancel := bus.Subscribe(topic, func(Topic) { <-block })
	defer cancel()
	defer close(block)

	// A stuck subscriber must not stall the publisher; these calls would
	// hang the test if Invalidate blocked.
	for i := 0; i < 10; i++ {
		bus.Invalidate(topic)
	}
}
