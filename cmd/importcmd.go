package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import a manually downloaded CSV export",
	Long: `Replace your saved schedule with a CSV export you downloaded from the
portal yourself. Useful when the automated fetch is blocked.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, userID, err := newService()
		if err != nil {
			return err
		}

		path := args[0]
		if !strings.HasSuffix(strings.ToLower(path), ".csv") {
			return fmt.Errorf("expected a .csv export, got %s", path)
		}

		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer file.Close()

		if err := svc.Import(userID, file); err != nil {
			return fmt.Errorf("failed to import schedule: %w", err)
		}

		entries := svc.Entries(userID)
		fmt.Printf("✅ Schedule imported (%d entries recognized)\n", len(entries))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
