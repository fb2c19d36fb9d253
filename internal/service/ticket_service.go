package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/facilitydesk/helpdesk/internal/domain"
	"github.com/facilitydesk/helpdesk/internal/events"
	"github.com/facilitydesk/helpdesk/internal/observability"
	"github.com/facilitydesk/helpdesk/internal/repository"
	apperrors "github.com/facilitydesk/helpdesk/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	history     repository.TicketHistoryRepository
	departments repository.DepartmentRepository
	categories  repository.CategoryRepository
	tx          repository.Transactor
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	HistoryRepo    repository.TicketHistoryRepository
	DepartmentRepo repository.DepartmentRepository
	CategoryRepo   repository.CategoryRepository
	Transactor     repository.Transactor
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
	Logger         *zap.Logger
	Clock          func() time.Time
}

// TicketCreateInput describes ticket creation payload. Priority and Status
// are raw text; blank means the default.
type TicketCreateInput struct {
	Subject      string
	Description  string
	Priority     string
	Status       string
	DepartmentID *string
	RoomID       *string
	CategoryID   *string
}

// DashboardStats summarizes tickets for the staff console. IN_PROGRESS
// tickets count toward Total only.
type DashboardStats struct {
	Total    int
	Pending  int
	Resolved int
	Overdue  int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TicketService{
		tickets:     deps.TicketRepo,
		history:     deps.HistoryRepo,
		departments: deps.DepartmentRepo,
		categories:  deps.CategoryRepo,
		tx:          deps.Transactor,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      logger,
		now:         clock,
	}
}

// CreateTicket validates and stores a ticket raised by creator.
func (s *TicketService) CreateTicket(ctx context.Context, creator *domain.User, input *TicketCreateInput) (*domain.Ticket, error) {
	if input == nil {
		return nil, apperrors.NewValidationError("Ticket cannot be null", nil)
	}
	if strings.TrimSpace(input.Subject) == "" {
		return nil, apperrors.NewValidationError("Ticket subject is required", map[string]any{"field": "subject"})
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("Ticket description is required", map[string]any{"field": "description"})
	}
	if creator == nil {
		return nil, apperrors.NewValidationError("Ticket must have a creator (createdBy)", nil)
	}

	status := domain.TicketStatusCreated
	if strings.TrimSpace(input.Status) != "" {
		parsed, err := parseStatus(input.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}
	priority := domain.TicketPriorityMedium
	if strings.TrimSpace(input.Priority) != "" {
		parsed, ok := domain.ParseTicketPriority(input.Priority)
		if !ok {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("Invalid priority: %s. Valid priorities are: %s", input.Priority, domain.TicketPriorityNames()),
				map[string]any{"field": "priority"})
		}
		priority = parsed
	}

	ticket := &domain.Ticket{
		Subject:      input.Subject,
		Description:  input.Description,
		Priority:     priority,
		Status:       status,
		CreatedByID:  creator.ID,
		DepartmentID: s.resolveDepartment(ctx, input.DepartmentID),
		RoomID:       s.resolveRoom(ctx, input.RoomID),
		CategoryID:   s.resolveCategory(ctx, input.CategoryID),
		CreatedAt:    s.now(),
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.metrics.TicketCreated()
	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("created_by", creator.ID),
		zap.String("priority", string(ticket.Priority)))

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.ActorFor(creator),
		Payload: events.TicketCreatedPayload{
			Subject:  ticket.Subject,
			Priority: ticket.Priority,
			Status:   ticket.Status,
		},
	})
	return ticket, nil
}

// GetAllTickets lists every ticket.
func (s *TicketService) GetAllTickets(ctx context.Context) ([]domain.Ticket, error) {
	return s.tickets.List(ctx, repository.TicketFilter{})
}

// GetTicketByID loads one ticket.
func (s *TicketService) GetTicketByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("ticket not found", zap.String("ticket_id", id))
			return nil, apperrors.NewNotFound("Ticket", id)
		}
		return nil, err
	}
	return ticket, nil
}

// GetTicketsByStatus lists tickets in one status. The status is validated
// against the vocabulary first.
func (s *TicketService) GetTicketsByStatus(ctx context.Context, status string) ([]domain.Ticket, error) {
	parsed, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.tickets.List(ctx, repository.TicketFilter{Status: &parsed})
}

// ListTicketsByCreator lists the tickets raised by one user.
func (s *TicketService) ListTicketsByCreator(ctx context.Context, userID string) ([]domain.Ticket, error) {
	return s.tickets.List(ctx, repository.TicketFilter{CreatedByID: &userID})
}

// UpdateTicketStatus moves a ticket to newStatus. Any status in the
// vocabulary is reachable from any other; only membership is checked.
// The change and its history row commit together.
func (s *TicketService) UpdateTicketStatus(ctx context.Context, actor *domain.User, id, newStatus string) (*domain.Ticket, error) {
	status, err := parseStatus(newStatus)
	if err != nil {
		return nil, err
	}

	var (
		ticket    *domain.Ticket
		oldStatus domain.TicketStatus
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ticket, err = s.GetTicketByID(ctx, id)
		if err != nil {
			return err
		}
		oldStatus = ticket.Status
		if oldStatus == status {
			return nil
		}
		ticket.Status = status
		if err := s.tickets.UpdateStatus(ctx, ticket); err != nil {
			return err
		}
		return s.recordStatusChange(ctx, actor, ticket.ID, oldStatus, status)
	})
	if err != nil {
		return nil, err
	}
	if oldStatus == status {
		return ticket, nil
	}

	s.metrics.TicketStatusChanged(status)
	s.logger.Info("ticket status updated",
		zap.String("ticket_id", ticket.ID),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(status)))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    events.ActorFor(actor),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: status,
		},
	})
	return ticket, nil
}

// ListHistory returns the status changes recorded for a ticket, oldest first.
func (s *TicketService) ListHistory(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	if _, err := s.GetTicketByID(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.history.ListByTicket(ctx, ticketID)
}

// Dashboard counts tickets per bucket.
func (s *TicketService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	counts, err := s.tickets.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	stats := &DashboardStats{
		Pending:  counts[domain.TicketStatusCreated] + counts[domain.TicketStatusAssigned],
		Resolved: counts[domain.TicketStatusResolved] + counts[domain.TicketStatusClosed],
		Overdue:  counts[domain.TicketStatusOverdue],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func parseStatus(raw string) (domain.TicketStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return "", apperrors.NewValidationError("Status cannot be null or empty", map[string]any{"field": "status"})
	}
	status, ok := domain.ParseTicketStatus(raw)
	if !ok {
		return "", apperrors.NewValidationError(
			fmt.Sprintf("Invalid status: %s. Valid statuses are: %s", raw, domain.TicketStatusNames()),
			map[string]any{"field": "status"})
	}
	return status, nil
}

// Unknown references are dropped rather than rejected.
func (s *TicketService) resolveDepartment(ctx context.Context, id *string) *string {
	if id == nil || s.departments == nil {
		return nil
	}
	department, err := s.departments.GetByID(ctx, *id)
	if err != nil {
		s.logger.Warn("ignoring unknown department", zap.String("department_id", *id), zap.Error(err))
		return nil
	}
	return &department.ID
}

func (s *TicketService) resolveRoom(ctx context.Context, id *string) *string {
	if id == nil || s.departments == nil {
		return nil
	}
	room, err := s.departments.GetRoom(ctx, *id)
	if err != nil {
		s.logger.Warn("ignoring unknown room", zap.String("room_id", *id), zap.Error(err))
		return nil
	}
	return &room.ID
}

func (s *TicketService) resolveCategory(ctx context.Context, id *string) *string {
	if id == nil || s.categories == nil {
		return nil
	}
	category, err := s.categories.GetByID(ctx, *id)
	if err != nil {
		s.logger.Warn("ignoring unknown category", zap.String("category_id", *id), zap.Error(err))
		return nil
	}
	return &category.ID
}

func (s *TicketService) recordStatusChange(ctx context.Context, actor *domain.User, ticketID string, oldStatus, newStatus domain.TicketStatus) error {
	if s.history == nil {
		return nil
	}
	entry := &domain.TicketHistory{
		TicketID:  ticketID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}
	if actor != nil {
		id := actor.ID
		entry.ChangedByID = &id
	}
	return s.history.Create(ctx, entry)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, s.logger, event)
}
