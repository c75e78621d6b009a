package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lutfarm/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// SubjectPrefix is prepended to the event type to form the NATS subject
const SubjectPrefix = "lutfarm.events."

// MessagePublisher is the part of a NATS connection the event publisher needs
type MessagePublisher interface {
	Publish(subject string, data []byte) error
}

// EventEnvelope wraps every event forwarded to NATS
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// NATSEventPublisher forwards bus events to NATS
type NATSEventPublisher struct {
	client MessagePublisher
	now    func() time.Time
}

// NewNATSEventPublisher creates a new NATS event publisher
func NewNATSEventPublisher(client MessagePublisher) *NATSEventPublisher {
	return &NATSEventPublisher{client: client, now: time.Now}
}

// Attach forwards every event emitted on bus
func (p *NATSEventPublisher) Attach(bus *events.Bus) {
	bus.SubscribeAll(func(ctx context.Context, event events.Event) {
		if err := p.Publish(event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Failed to forward event to NATS")
		}
	})
}

// Subject maps an event type to its NATS subject
func Subject(eventType events.EventType) string {
	return SubjectPrefix + string(eventType)
}

// Publish publishes an event to NATS using its subject
func (p *NATSEventPublisher) Publish(event events.Event) error {
	subject, data, err := p.encode(event)
	if err != nil {
		return err
	}

	if err := p.client.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"subject":   subject,
	}).Debug("Successfully published event to NATS")
	return nil
}

func (p *NATSEventPublisher) encode(event events.Event) (string, []byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     p.now().UTC(),
		SourceService: "lutfarm",
		Payload:       payload,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal event envelope: %w", err)
	}
	return Subject(event.Type()), data, nil
}
