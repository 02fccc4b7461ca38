package cmd

import (
	"errors"
	"fmt"

	"planctl/pkg/fetcher"
	"planctl/pkg/schedule"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch a fresh schedule export from the portal",
	Long: `Drive a headless browser against the student portal, trigger the CSV
export for the whole term and save it locally. This takes a few minutes; the
portal is slow and hostile to automation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, userID, err := newService()
		if err != nil {
			return err
		}

		if url, _ := cmd.Flags().GetString("url"); url != "" {
			if err := svc.URLs.Set(userID, url); err != nil {
				return err
			}
		}

		var fetchErr error
		_ = spinner.New().
			Title("Fetching your schedule from the portal (this can take a few minutes)...").
			Action(func() {
				fetchErr = svc.Update(cmd.Context(), userID)
			}).
			Run()

		if fetchErr != nil {
			if errors.Is(fetchErr, schedule.ErrNoURL) {
				return fmt.Errorf("no schedule URL saved yet, run: planctl url <your schedule URL>")
			}
			var fe *fetcher.FetchError
			if errors.As(fetchErr, &fe) && fe.Screenshot != "" {
				return fmt.Errorf("%w\n(a diagnostic screenshot was saved to %s)", fetchErr, fe.Screenshot)
			}
			return fetchErr
		}

		fmt.Println("✅ Schedule updated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringP("url", "u", "", "Save this schedule URL before fetching")
}
