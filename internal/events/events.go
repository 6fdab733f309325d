// Package events carries simulation and backtest lifecycle events to subscribers,
// the message broker and notifiers.
package events

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
)

// EventType names a lifecycle event. It doubles as the broker routing key.
type EventType string

const (
	EventSimulationStarted   EventType = "simulation.started"
	EventSimulationTrade     EventType = "simulation.trade"
	EventSimulationUpdated   EventType = "simulation.updated"
	EventSimulationCompleted EventType = "simulation.completed"
	EventSimulationStopped   EventType = "simulation.stopped"
	EventSimulationFailed    EventType = "simulation.failed"
	EventBacktestCompleted   EventType = "backtest.completed"
)

// Event is a single lifecycle notification.
type Event struct {
	ID           string    `json:"id"`
	Type         EventType `json:"type"`
	SimulationID string    `json:"simulation_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Payload      any       `json:"payload,omitempty"`
}

// NewEvent builds an event stamped with a new id and the current time.
func NewEvent(eventType EventType, simulationID string, payload any) Event {
	return Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		SimulationID: simulationID,
		Timestamp:    time.Now().UTC(),
		Payload:      payload,
	}
}

// Publisher delivers events somewhere.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, _ Event) error { return nil }

func (NoopPublisher) Close() error { return nil }

// MultiPublisher fans an event out to several publishers.
// Every publisher is tried; the failures are joined.
type MultiPublisher struct {
	publishers []Publisher
}

// NewMultiPublisher skips nil publishers.
func NewMultiPublisher(publishers ...Publisher) *MultiPublisher {
	m := &MultiPublisher{}

	for _, p := range publishers {
		if p != nil {
			m.publishers = append(m.publishers, p)
		}
	}

	return m
}

// Add appends a publisher.
func (m *MultiPublisher) Add(p Publisher) {
	if p != nil {
		m.publishers = append(m.publishers, p)
	}
}

// Publishers returns the registered publishers in order.
func (m *MultiPublisher) Publishers() []Publisher {
	return append([]Publisher(nil), m.publishers...)
}

func (m *MultiPublisher) Publish(ctx context.Context, event Event) error {
	var errs []error

	for _, p := range m.publishers {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	return stderrors.Join(errs...)
}

// Close closes the publishers in reverse order.
func (m *MultiPublisher) Close() error {
	var errs []error

	for i := len(m.publishers) - 1; i >= 0; i-- {
		if err := m.publishers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return stderrors.Join(errs...)
}
