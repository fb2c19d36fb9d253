package dto

import (
	"time"

	"github.com/facilitydesk/helpdesk/internal/domain"
)

// CreateTicketRequest payload. Priority and status are optional and
// matched case-insensitively.
type CreateTicketRequest struct {
	Subject      string  `json:"subject" form:"subject" validate:"max=255"`
	Description  string  `json:"description" form:"description" validate:"max=5000"`
	Priority     string  `json:"priority" form:"priority"`
	Status       string  `json:"status" form:"status"`
	DepartmentID *string `json:"department_id" form:"department_id"`
	RoomID       *string `json:"room_id" form:"room_id"`
	CategoryID   *string `json:"category_id" form:"category_id"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status" form:"status"`
}

// TicketResponse is the wire form of a ticket.
type TicketResponse struct {
	ID           string                `json:"id"`
	Subject      string                `json:"subject"`
	Description  string                `json:"description"`
	Priority     domain.TicketPriority `json:"priority"`
	Status       domain.TicketStatus   `json:"status"`
	CreatedBy    string                `json:"created_by"`
	DepartmentID *string               `json:"department_id"`
	RoomID       *string               `json:"room_id"`
	CategoryID   *string               `json:"category_id"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// TicketHistoryResponse is one recorded status change.
type TicketHistoryResponse struct {
	ChangedBy *string             `json:"changed_by"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	CreatedAt time.Time           `json:"created_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketResponse
	History []TicketHistoryResponse `json:"history"`
}

// StatusUpdateResponse answers a status change.
type StatusUpdateResponse struct {
	Message string         `json:"message"`
	Ticket  TicketResponse `json:"ticket"`
}

// DashboardResponse carries the staff console counters.
type DashboardResponse struct {
	Total    int              `json:"total"`
	Pending  int              `json:"pending"`
	Resolved int              `json:"resolved"`
	Overdue  int              `json:"overdue"`
	Recent   []TicketResponse `json:"recent"`
}

// TicketFormResponse lists what the submission form offers.
type TicketFormResponse struct {
	DefaultPriority domain.TicketPriority   `json:"default_priority"`
	DefaultStatus   domain.TicketStatus     `json:"default_status"`
	Priorities      []domain.TicketPriority `json:"priorities"`
	Departments     []ReferenceOption       `json:"departments"`
	Rooms           []RoomOption            `json:"rooms"`
	Categories      []CategoryOption        `json:"categories"`
}

// ReferenceOption is a selectable department.
type ReferenceOption struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

// RoomOption is a selectable room.
type RoomOption struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DepartmentID string `json:"department_id"`
}

// CategoryOption is a selectable category.
type CategoryOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SLAHours    int    `json:"sla_hours"`
}

// NewTicketResponse maps a ticket to its wire form.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:           ticket.ID,
		Subject:      ticket.Subject,
		Description:  ticket.Description,
		Priority:     ticket.Priority,
		Status:       ticket.Status,
		CreatedBy:    ticket.CreatedByID,
		DepartmentID: ticket.DepartmentID,
		RoomID:       ticket.RoomID,
		CategoryID:   ticket.CategoryID,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
}

// NewTicketList maps a slice of tickets.
func NewTicketList(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return items
}

// NewTicketDetail combines a ticket with its history.
func NewTicketDetail(ticket *domain.Ticket, history []domain.TicketHistory) TicketDetailResponse {
	entries := make([]TicketHistoryResponse, 0, len(history))
	for _, entry := range history {
		entries = append(entries, TicketHistoryResponse{
			ChangedBy: entry.ChangedByID,
			OldStatus: entry.OldStatus,
			NewStatus: entry.NewStatus,
			CreatedAt: entry.CreatedAt,
		})
	}
	return TicketDetailResponse{TicketResponse: NewTicketResponse(ticket), History: entries}
}
