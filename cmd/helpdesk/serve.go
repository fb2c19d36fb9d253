package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/facilitydesk/helpdesk/internal/api/http"
	"github.com/facilitydesk/helpdesk/internal/api/http/handlers"
	"github.com/facilitydesk/helpdesk/internal/auth"
	"github.com/facilitydesk/helpdesk/internal/worker"
)

var seedOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		app, err := newApplication(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		stopNotifications, err := worker.StartNotificationWorker(cfg.Notification, app.dispatcher, logger)
		if err != nil {
			return err
		}
		defer stopNotifications()

		// The in-memory store starts empty, so it is always seeded.
		if seedOnStart || !app.postgres.Enabled() {
			if _, err := app.seeder().Seed(ctx); err != nil {
				return err
			}
		}

		validator := handlers.NewRequestValidator(nil)
		server := httptransport.NewServer(httptransport.ServerConfig{
			AppName:   cfg.App.Name,
			BodyLimit: cfg.Import.MaxUploadBytes + 1<<20,
			Timeout:   cfg.App.RequestTimeout(),
			Logger:    logger,
			Metrics:   app.metrics,
			Routes: httptransport.RouteConfig{
				Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
					"postgres": app.postgres,
					"redis":    app.redis,
				}),
				Auth:         handlers.NewAuthHandler(app.auth, validator),
				Tickets:      handlers.NewTicketsHandler(app.tickets, app.references, validator),
				AdminTickets: handlers.NewAdminTicketsHandler(app.tickets, validator),
				AdminUsers: handlers.NewAdminUsersHandler(app.users, app.imports, validator, handlers.ImportLimits{
					MaxUploadBytes: int64(cfg.Import.MaxUploadBytes),
					ErrorPreview:   cfg.Import.ErrorPreview,
				}),
				AuthMiddleware: auth.NewAuthMiddleware(app.tokens, app.sessions, app.stores.users),
			},
		})

		go func() {
			logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
			if err := server.Listen(cfg.App.Addr()); err != nil {
				logger.Error("fiber listen", zap.Error(err))
				cancel()
			}
		}()

		waitForShutdown(ctx, logger)

		return server.ShutdownWithTimeout(10 * time.Second)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&seedOnStart, "seed", false, "seed reference data and demo accounts before serving")
	rootCmd.AddCommand(serveCmd)
}

func waitForShutdown(ctx context.Context, logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("shutting down", zap.Error(ctx.Err()))
	}
}
