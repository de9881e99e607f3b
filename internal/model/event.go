package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventPatientCreated  = "patient.created"
	EventPatientUpdated  = "patient.updated"
	EventPatientDeleted  = "patient.deleted"
	EventTherapyCreated  = "therapy.created"
	EventTherapyUpdated  = "therapy.updated"
	EventTherapyFeedback = "therapy.feedback"
	EventTherapyDeleted  = "therapy.deleted"
)

// Event is a domain event published after a resource mutation.
type Event struct {
	ID             uuid.UUID   `json:"id"`
	Type           string      `json:"type"`
	EntityID       uuid.UUID   `json:"entityId"`
	PractitionerID string      `json:"practitionerId"`
	OccurredAt     time.Time   `json:"occurredAt"`
	Payload        interface{} `json:"payload,omitempty"`
}

func NewEvent(eventType string, entityID uuid.UUID, practitionerID string, payload interface{}, now time.Time) *Event {
	return &Event{
		ID:             uuid.New(),
		Type:           eventType,
		EntityID:       entityID,
		PractitionerID: practitionerID,
		OccurredAt:     now,
		Payload:        payload,
	}
}
