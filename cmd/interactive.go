package cmd

import (
	"planctl/pkg/tui"

	"github.com/spf13/cobra"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Launch the interactive TUI",
	Long: `Launch the Text User Interface to update the schedule, browse day and
month views and manage settings interactively. Preferences like the group
filter live for the duration of the session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, userID, err := newService()
		if err != nil {
			return err
		}
		return tui.RunTUI(svc, userID)
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}
