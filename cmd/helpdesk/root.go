package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/facilitydesk/helpdesk/internal/config"
	"github.com/facilitydesk/helpdesk/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:           "helpdesk",
	Short:         "Facility helpdesk service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// bootstrap loads configuration and builds the process logger shared by
// every subcommand.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}
