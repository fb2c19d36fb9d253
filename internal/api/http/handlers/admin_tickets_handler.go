package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/facilitydesk/helpdesk/internal/api/dto"
	"github.com/facilitydesk/helpdesk/internal/auth"
	"github.com/facilitydesk/helpdesk/internal/domain"
	"github.com/facilitydesk/helpdesk/internal/service"
)

const dashboardRecent = 10

// AdminTicketsHandler serves the staff console.
type AdminTicketsHandler struct {
	service   *service.TicketService
	validator *RequestValidator
}

// NewAdminTicketsHandler constructs handler.
func NewAdminTicketsHandler(ticketService *service.TicketService, validator *RequestValidator) *AdminTicketsHandler {
	return &AdminTicketsHandler{service: ticketService, validator: validator}
}

// Dashboard GET /admin/dashboard.
func (h *AdminTicketsHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	tickets, err := h.service.GetAllTickets(c.UserContext())
	if err != nil {
		return err
	}
	if len(tickets) > dashboardRecent {
		tickets = tickets[:dashboardRecent]
	}
	return c.JSON(fiber.Map{"data": dto.DashboardResponse{
		Total:    stats.Total,
		Pending:  stats.Pending,
		Resolved: stats.Resolved,
		Overdue:  stats.Overdue,
		Recent:   dto.NewTicketList(tickets),
	}})
}

// ListTickets GET /admin/tickets?status=.
func (h *AdminTicketsHandler) ListTickets(c *fiber.Ctx) error {
	var (
		tickets []domain.Ticket
		err     error
	)
	if status := c.Query("status"); status != "" {
		tickets, err = h.service.GetTicketsByStatus(c.UserContext(), status)
	} else {
		tickets, err = h.service.GetAllTickets(c.UserContext())
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketList(tickets)})
}

// GetTicket GET /admin/tickets/:id.
func (h *AdminTicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicketByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	history, err := h.service.ListHistory(c.UserContext(), ticket.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket, history)})
}

// UpdateStatus POST /admin/tickets/:id/status.
func (h *AdminTicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	var req dto.UpdateStatusRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.UpdateTicketStatus(c.UserContext(), actorUser(principal), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StatusUpdateResponse{
		Message: "Ticket status updated successfully to: " + req.Status,
		Ticket:  dto.NewTicketResponse(ticket),
	}})
}
