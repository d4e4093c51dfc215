package events

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// EventPublisher notifies downstream services (matching, tasks) of profile
// changes. Publishing is best-effort; callers never fail a request over a
// dropped event.
type EventPublisher interface {
	PublishUserRegistered(userID uuid.UUID, email string, roles []string) error
	PublishAvailabilityUpdated(userID uuid.UUID, slotCount int) error
}

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(natsURL string) (EventPublisher, error) {
	nc, err := nats.Connect(natsURL)

	if err != nil {
		return nil, err
	}

	return &NatsPublisher{conn: nc}, nil
}

type UserRegisteredEvent struct {
	EventType    string    `json:"event_type"`
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	Roles        []string  `json:"roles"`
	RegisteredAt time.Time `json:"registered_at"`
}

type AvailabilityUpdatedEvent struct {
	EventType string    `json:"event_type"`
	UserID    uuid.UUID `json:"user_id"`
	SlotCount int       `json:"slot_count"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *NatsPublisher) PublishUserRegistered(userID uuid.UUID, email string, roles []string) error {
	event := UserRegisteredEvent{
		EventType:    "user.registered",
		UserID:       userID,
		Email:        email,
		Roles:        roles,
		RegisteredAt: time.Now(),
	}

	return p.publish("user.registered", event)
}

func (p *NatsPublisher) PublishAvailabilityUpdated(userID uuid.UUID, slotCount int) error {
	event := AvailabilityUpdatedEvent{
		EventType: "user.availability_updated",
		UserID:    userID,
		SlotCount: slotCount,
		UpdatedAt: time.Now(),
	}

	return p.publish("user.availability_updated", event)
}

func (p *NatsPublisher) publish(subject string, event interface{}) error {
	eventJSON, err := json.Marshal(event)

	if err != nil {
		slog.Error("Error marshalling event JSON", "subject", subject, "error", err)
		return err
	}

	if err := p.conn.Publish(subject, eventJSON); err != nil {
		slog.Error("Error publishing to NATS", "subject", subject, "error", err)
		return err
	}

	slog.Info("Published event to NATS", "subject", subject)

	return nil
}

// NoopPublisher stands in when no broker is configured, e.g. local
// development without NATS.
type NoopPublisher struct{}

func (NoopPublisher) PublishUserRegistered(uuid.UUID, string, []string) error { return nil }
func (NoopPublisher) PublishAvailabilityUpdated(uuid.UUID, int) error         { return nil }
