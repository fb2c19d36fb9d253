package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/facilitydesk/helpdesk/internal/service"
	"github.com/facilitydesk/helpdesk/internal/spreadsheet"
)

var templateCmd = &cobra.Command{
	Use:   "template [path]",
	Short: "Write the user import template workbook",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := service.TemplateFilename
		if len(args) == 1 {
			path = args[0]
		}
		data, err := spreadsheet.BuildTemplate()
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write template: %w", err)
		}
		cmd.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)
}
