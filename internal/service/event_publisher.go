package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Routing keys published on the scheduling exchange.
const (
	EventSlotOpened       = "slot.opened"
	EventSlotCancelled    = "slot.cancelled"
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
	EventBookingCompleted = "booking.completed"
)

const publishTimeout = 5 * time.Second

// Event is the envelope of every domain event.
type Event struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	ActorID    uuid.UUID   `json:"actor_id"`
	Data       interface{} `json:"data"`
}

func NewEvent(eventType string, actorID uuid.UUID, data interface{}) Event {
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), ActorID: actorID, Data: data}
}

// EventPublisher announces committed state changes. Publishing never fails
// the operation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}

// JSONPublisher is the transport used by the broker-backed publisher.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type brokerEventPublisher struct {
	transport JSONPublisher
	log       *logrus.Logger
}

func NewBrokerEventPublisher(transport JSONPublisher, log *logrus.Logger) EventPublisher {
	return &brokerEventPublisher{transport: transport, log: log}
}

func (p *brokerEventPublisher) Publish(ctx context.Context, event Event) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.transport.PublishJSON(pubCtx, event.Type, event); err != nil {
		p.log.Warnf("Failed to publish event %s: %+v", event.Type, err)
		return
	}
	p.log.Debugf("Published event %s", event.Type)
}

type noopEventPublisher struct{}

func NewNoopEventPublisher() EventPublisher {
	return noopEventPublisher{}
}

func (noopEventPublisher) Publish(context.Context, Event) {}
