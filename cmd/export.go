package cmd

import (
	"fmt"
	"os"

	"planctl/pkg/exporter"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the saved schedule to an ICS file",
	Long:  `Convert the saved schedule into an .ics calendar file for import into calendar apps.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		svc, userID, err := newService()
		if err != nil {
			return err
		}

		entries := svc.Entries(userID)
		if len(entries) == 0 {
			return fmt.Errorf("no schedule saved yet, run: planctl fetch")
		}

		file, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()

		if err := exporter.GenerateICS(entries, file); err != nil {
			return fmt.Errorf("failed to generate ICS: %w", err)
		}

		fmt.Printf("Successfully exported %d entries to %s\n", len(entries), output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "schedule.ics", "Output file path")
}
