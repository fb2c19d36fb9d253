package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/facilitydesk/helpdesk/internal/observability"
)

// ServerConfig describes the fiber application.
type ServerConfig struct {
	AppName   string
	BodyLimit int
	Timeout   time.Duration
	Logger    *zap.Logger
	Metrics   *observability.Metrics
	Routes    RouteConfig
}

// NewServer assembles the fiber application with middlewares and routes.
func NewServer(cfg ServerConfig) *fiber.App {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(logger, cfg.Metrics),
	})
	RegisterMiddlewares(app, logger, cfg.Metrics, cfg.Timeout)
	if cfg.Routes.Metrics == nil {
		cfg.Routes.Metrics = cfg.Metrics
	}
	RegisterRoutes(app, cfg.Routes)
	return app
}
