package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type names a domain event.
type Type string

const (
	// EntryPosted is published for every ledger entry written, one per transfer leg.
	EntryPosted Type = "ledger.entry_posted"
	// ConsentStatusChanged is published whenever a consent is granted, revoked, withdrawn, expired or deleted.
	ConsentStatusChanged Type = "consent.status_changed"
)

// Event is the envelope published to downstream consumers.
type Event struct {
	Id         string    `json:"id"`
	Type       Type      `json:"type"`
	UserId     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// New builds an event with a fresh id and the current time.
func New(eventType Type, userID string, data any) Event {
	return Event{
		Id:         uuid.NewString(),
		Type:       eventType,
		UserId:     userID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// Publisher defines the interface for a component that delivers domain events.
type Publisher interface {
	// Publish delivers the events. Callers treat failures as non-fatal.
	Publish(ctx context.Context, events ...Event) error
}

// NoOpPublisher drops every event. It is used when no queue is configured.
type NoOpPublisher struct{}

var _ Publisher = NoOpPublisher{}

func (NoOpPublisher) Publish(context.Context, ...Event) error { return nil }
