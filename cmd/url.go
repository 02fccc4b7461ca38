package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var urlCmd = &cobra.Command{
	Use:   "url [URL]",
	Short: "Show or set your schedule source URL",
	Long: `With no argument, print the currently saved schedule URL. With an
argument, validate and save it as the source for future fetches; only the
latest URL is kept.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, userID, err := newService()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			if url, ok := svc.URLs.Get(userID); ok {
				fmt.Println(url)
			} else {
				fmt.Println("No schedule URL saved yet. Set one with: planctl url <your schedule URL>")
			}
			return nil
		}

		if err := svc.URLs.Set(userID, args[0]); err != nil {
			return err
		}
		fmt.Println("✅ Schedule URL saved")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(urlCmd)
}
