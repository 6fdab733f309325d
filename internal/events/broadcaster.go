package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rxtech-lab/trading-simulator/internal/logger"
	"go.uber.org/zap"
)

// DefaultSubscriberBuffer is the number of events a subscriber may fall behind by.
const DefaultSubscriberBuffer = 64

// Subscription receives events from a Broadcaster.
type Subscription struct {
	ID string
	// SimulationID restricts the subscription to one simulation when set.
	SimulationID string

	events  chan Event
	dropped int
}

// Events is closed when the subscription ends.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

func (s *Subscription) matches(event Event) bool {
	return s.SimulationID == "" || s.SimulationID == event.SimulationID
}

// Broadcaster is an in-process pub/sub hub. A slow subscriber loses events
// rather than blocking publishers.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscription
	buffer      int
	closed      bool
	logger      *logger.Logger
}

// NewBroadcaster creates a hub. A buffer of zero or less uses DefaultSubscriberBuffer.
func NewBroadcaster(buffer int, log *logger.Logger) *Broadcaster {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Broadcaster{
		subscribers: make(map[string]*Subscription),
		buffer:      buffer,
		logger:      log,
	}
}

// Subscribe registers a subscriber. An empty simulationID receives every event.
func (b *Broadcaster) Subscribe(simulationID string) *Subscription {
	sub := &Subscription{
		ID:           uuid.NewString(),
		SimulationID: simulationID,
		events:       make(chan Event, b.buffer),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(sub.events)

		return sub
	}

	b.subscribers[sub.ID] = sub

	return sub
}

// Unsubscribe removes the subscriber and closes its channel. Unknown ids are ignored.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subscribers[id]
	if !ok {
		return
	}

	delete(b.subscribers, id)
	close(sub.events)
}

// SubscriberCount returns the number of live subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subscribers)
}

func (b *Broadcaster) Publish(_ context.Context, event Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subscribers {
		if !sub.matches(event) {
			continue
		}

		select {
		case sub.events <- event:
		default:
			sub.dropped++
			b.logger.Debug("Dropped event for slow subscriber",
				zap.String("subscriber", sub.ID),
				zap.String("type", string(event.Type)),
				zap.Int("dropped", sub.dropped),
			)
		}
	}

	return nil
}

// Close ends every subscription. Later subscriptions are closed immediately.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.closed = true

	for id, sub := range b.subscribers {
		close(sub.events)
		delete(b.subscribers, id)
	}

	return nil
}
