package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusCreated    TicketStatus = "CREATED"
	TicketStatusAssigned   TicketStatus = "ASSIGNED"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
	TicketStatusOverdue    TicketStatus = "OVERDUE"
)

// TicketStatuses lists the status vocabulary in lifecycle order.
var TicketStatuses = []TicketStatus{
	TicketStatusCreated,
	TicketStatusAssigned,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
	TicketStatusOverdue,
}

// ParseTicketStatus matches raw text against the status vocabulary, case-insensitively.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	candidate := TicketStatus(strings.ToUpper(strings.TrimSpace(raw)))
	for _, status := range TicketStatuses {
		if status == candidate {
			return status, true
		}
	}
	return "", false
}

// TicketStatusNames renders the vocabulary as "[CREATED, ASSIGNED, ...]".
func TicketStatusNames() string {
	names := make([]string, 0, len(TicketStatuses))
	for _, status := range TicketStatuses {
		names = append(names, string(status))
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

var TicketPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityUrgent,
}

func ParseTicketPriority(raw string) (TicketPriority, bool) {
	candidate := TicketPriority(strings.ToUpper(strings.TrimSpace(raw)))
	for _, priority := range TicketPriorities {
		if priority == candidate {
			return priority, true
		}
	}
	return "", false
}

func TicketPriorityNames() string {
	names := make([]string, 0, len(TicketPriorities))
	for _, priority := range TicketPriorities {
		names = append(names, string(priority))
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// Ticket is a support request raised by a student.
type Ticket struct {
	ID           string
	Subject      string
	Description  string
	Priority     TicketPriority
	Status       TicketStatus
	CreatedByID  string
	DepartmentID *string
	RoomID       *string
	CategoryID   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
