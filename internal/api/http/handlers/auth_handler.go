package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/facilitydesk/helpdesk/internal/api/dto"
	"github.com/facilitydesk/helpdesk/internal/auth"
	"github.com/facilitydesk/helpdesk/internal/domain"
	"github.com/facilitydesk/helpdesk/internal/service"
	apperrors "github.com/facilitydesk/helpdesk/pkg/util/errorutil"
)

// AuthHandler serves the two login surfaces.
type AuthHandler struct {
	service   *service.AuthService
	validator *RequestValidator
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, validator *RequestValidator) *AuthHandler {
	return &AuthHandler{service: authService, validator: validator}
}

// StudentLogin POST /login.
func (h *AuthHandler) StudentLogin(c *fiber.Ctx) error {
	return h.login(c, domain.SurfaceStudent)
}

// StaffLogin POST /admin/login.
func (h *AuthHandler) StaffLogin(c *fiber.Ctx) error {
	return h.login(c, domain.SurfaceStaff)
}

func (h *AuthHandler) login(c *fiber.Ctx, surface domain.EntrySurface) error {
	var req dto.LoginRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	result, err := h.service.Login(c.UserContext(), surface, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Redirect:  result.Redirect,
		User:      dto.NewUserResponse(result.User),
	}})
}

// Logout POST /logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Logout(c.UserContext(), principal.Session); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Me GET /me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": dto.MeResponse{
		User:      dto.NewUserResponse(principal.User),
		SessionID: principal.Session.ID,
		Surface:   principal.Session.Surface,
		ExpiresAt: principal.Session.ExpiresAt,
	}})
}
