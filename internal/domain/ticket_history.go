package domain

import "time"

// TicketHistory is an audit trail row for a status change.
type TicketHistory struct {
	ID          string
	TicketID    string
	ChangedByID *string
	OldStatus   TicketStatus
	NewStatus   TicketStatus
	CreatedAt   time.Time
}
