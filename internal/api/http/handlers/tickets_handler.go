package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/facilitydesk/helpdesk/internal/api/dto"
	"github.com/facilitydesk/helpdesk/internal/auth"
	"github.com/facilitydesk/helpdesk/internal/domain"
	"github.com/facilitydesk/helpdesk/internal/service"
	apperrors "github.com/facilitydesk/helpdesk/pkg/util/errorutil"
)

// TicketsHandler manages the student ticket endpoints.
type TicketsHandler struct {
	service    *service.TicketService
	references *service.ReferenceService
	validator  *RequestValidator
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, references *service.ReferenceService, validator *RequestValidator) *TicketsHandler {
	return &TicketsHandler{service: ticketService, references: references, validator: validator}
}

// NewTicketForm GET /tickets/new.
func (h *TicketsHandler) NewTicketForm(c *fiber.Ctx) error {
	options, err := h.references.FormOptions(c.UserContext())
	if err != nil {
		return err
	}
	form := dto.TicketFormResponse{
		DefaultPriority: domain.TicketPriorityMedium,
		DefaultStatus:   domain.TicketStatusCreated,
		Priorities:      options.Priorities,
		Departments:     make([]dto.ReferenceOption, 0, len(options.Departments)),
		Rooms:           make([]dto.RoomOption, 0, len(options.Rooms)),
		Categories:      make([]dto.CategoryOption, 0, len(options.Categories)),
	}
	for _, d := range options.Departments {
		form.Departments = append(form.Departments, dto.ReferenceOption{ID: d.ID, Name: d.Name, Location: d.Location})
	}
	for _, r := range options.Rooms {
		form.Rooms = append(form.Rooms, dto.RoomOption{ID: r.ID, Name: r.Name, DepartmentID: r.DepartmentID})
	}
	for _, cat := range options.Categories {
		form.Categories = append(form.Categories, dto.CategoryOption{
			ID: cat.ID, Name: cat.Name, Description: cat.Description, SLAHours: cat.SLAHours,
		})
	}
	return c.JSON(fiber.Map{"data": form})
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), principal.User, &service.TicketCreateInput{
		Subject:      req.Subject,
		Description:  req.Description,
		Priority:     req.Priority,
		Status:       req.Status,
		DepartmentID: nonBlank(req.DepartmentID),
		RoomID:       nonBlank(req.RoomID),
		CategoryID:   nonBlank(req.CategoryID),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListMyTickets GET /tickets.
func (h *TicketsHandler) ListMyTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	tickets, err := h.service.ListTicketsByCreator(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketList(tickets)})
}

// Form selects submit an empty string for "none".
func nonBlank(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}
	return value
}
