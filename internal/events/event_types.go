package events

import (
	"time"

	"github.com/facilitydesk/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventUsersImported       EventType = "users_imported"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID *string     `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// ActorFor builds the actor block for a user; nil yields the system actor.
func ActorFor(user *domain.User) Actor {
	if user == nil {
		return Actor{}
	}
	id := user.ID
	return Actor{UserID: &id, Role: user.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id,omitempty"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Subject  string                `json:"subject"`
	Priority domain.TicketPriority `json:"priority"`
	Status   domain.TicketStatus   `json:"status"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// UsersImportedPayload summarizes one bulk import run.
type UsersImportedPayload struct {
	SuccessCount int  `json:"success_count"`
	FailedCount  int  `json:"failed_count"`
	Aborted      bool `json:"aborted"`
}
