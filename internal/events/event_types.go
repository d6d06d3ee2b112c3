package events

import (
	"time"

	"github.com/jobtrackhq/jobtrack-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventApplicationCreated       EventType = "application_created"
	EventApplicationUpdated       EventType = "application_updated"
	EventApplicationStatusChanged EventType = "application_status_changed"
	EventApplicationDeleted       EventType = "application_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID            string      `json:"id"`
	Type          EventType   `json:"type"`
	UserID        string      `json:"user_id"`
	ApplicationID string      `json:"application_id"`
	Timestamp     time.Time   `json:"timestamp"`
	Payload       interface{} `json:"payload"`
}

// ApplicationCreatedPayload payload.
type ApplicationCreatedPayload struct {
	Company      string                   `json:"company"`
	Position     string                   `json:"position"`
	Status       domain.ApplicationStatus `json:"status"`
	FollowUpDate *time.Time               `json:"follow_up_date,omitempty"`
}

// ApplicationStatusChangedPayload payload.
type ApplicationStatusChangedPayload struct {
	OldStatus domain.ApplicationStatus `json:"old_status"`
	NewStatus domain.ApplicationStatus `json:"new_status"`
}

// ApplicationUpdatedPayload payload.
type ApplicationUpdatedPayload struct {
	FollowUpDate *time.Time `json:"follow_up_date,omitempty"`
}
