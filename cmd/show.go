package cmd

import (
	"fmt"
	"time"

	"planctl/pkg/schedule"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your schedule for a day or a month",
	Long: `Render the saved schedule. Without flags this shows today; use the flags
to pick tomorrow, a concrete date, or a whole month.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, userID, err := newService()
		if err != nil {
			return err
		}

		if group, _ := cmd.Flags().GetInt("group"); group >= 0 {
			if err := svc.Prefs.SetGroup(userID, group); err != nil {
				return err
			}
		}

		now := time.Now()

		if dateStr, _ := cmd.Flags().GetString("date"); dateStr != "" {
			date, err := time.Parse("02.01.2006", dateStr)
			if err != nil {
				return fmt.Errorf("invalid date %q, expected dd.mm.yyyy: %w", dateStr, err)
			}
			fmt.Println(svc.Day(userID, date))
			return nil
		}

		if month, _ := cmd.Flags().GetBool("month"); month {
			fmt.Println(svc.Month(userID, now))
			return nil
		}
		if nextMonth, _ := cmd.Flags().GetBool("next-month"); nextMonth {
			fmt.Println(svc.Month(userID, schedule.NextMonth(now)))
			return nil
		}
		if tomorrow, _ := cmd.Flags().GetBool("tomorrow"); tomorrow {
			fmt.Println(svc.Day(userID, now.AddDate(0, 0, 1)))
			return nil
		}

		fmt.Println(svc.Day(userID, now))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().BoolP("tomorrow", "t", false, "Show tomorrow instead of today")
	showCmd.Flags().StringP("date", "d", "", "Show a concrete date (dd.mm.yyyy)")
	showCmd.Flags().BoolP("month", "m", false, "Show the whole current month")
	showCmd.Flags().Bool("next-month", false, "Show the whole next month")
	showCmd.Flags().IntP("group", "g", -1, "Group filter for this run (0 = all groups)")
}
