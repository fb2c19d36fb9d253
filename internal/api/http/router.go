package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/facilitydesk/helpdesk/internal/api/http/handlers"
	"github.com/facilitydesk/helpdesk/internal/auth"
	"github.com/facilitydesk/helpdesk/internal/domain"
	"github.com/facilitydesk/helpdesk/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	AdminTickets   *handlers.AdminTicketsHandler
	AdminUsers     *handlers.AdminUsersHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Gate runs first for every path; the
// per-group role guards repeat the policy for the routes they own.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.AuthMiddleware.Gate)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	app.Post("/login", cfg.Auth.StudentLogin)
	app.Post("/admin/login", cfg.Auth.StaffLogin)
	app.Post("/logout", cfg.Auth.Logout)
	app.Get("/me", cfg.Auth.Me)

	tickets := app.Group("/tickets", auth.RequireRole(domain.RoleStudent))
	tickets.Get("/new", cfg.Tickets.NewTicketForm)
	tickets.Get("", cfg.Tickets.ListMyTickets)
	tickets.Post("", cfg.Tickets.CreateTicket)

	users := app.Group("/admin/users", auth.RequireRole(domain.RoleAdmin))
	users.Get("", cfg.AdminUsers.ListUsers)
	users.Post("", cfg.AdminUsers.CreateUser)
	users.Post("/import", cfg.AdminUsers.ImportUsers)
	users.Get("/import/template", cfg.AdminUsers.DownloadTemplate)
	users.Get("/:id", cfg.AdminUsers.GetUser)
	users.Put("/:id", cfg.AdminUsers.UpdateUser)
	users.Post("/:id/role", cfg.AdminUsers.ChangeRole)
	users.Delete("/:id", cfg.AdminUsers.DeleteUser)

	// A group guard on /admin would also cover /admin/login, so the console
	// routes carry the guard individually.
	staffSide := auth.RequireRole(domain.RoleStaff, domain.RoleAdmin)
	console := app.Group("/admin")
	console.Get("/dashboard", staffSide, cfg.AdminTickets.Dashboard)
	console.Get("/tickets", staffSide, cfg.AdminTickets.ListTickets)
	console.Get("/tickets/:id", staffSide, cfg.AdminTickets.GetTicket)
	console.Post("/tickets/:id/status", staffSide, cfg.AdminTickets.UpdateStatus)
}
