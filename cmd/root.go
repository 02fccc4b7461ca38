package cmd

import (
	"fmt"
	"os"

	"planctl/pkg/config"
	"planctl/pkg/fetcher"
	"planctl/pkg/schedule"
	"planctl/pkg/store"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var userFlag int64

var rootCmd = &cobra.Command{
	Use:   "planctl",
	Short: "A CLI for student-portal timetables",
	Long: `planctl fetches your personal class schedule from the university
student portal (a headless browser defeats its bot protection), normalizes
the CSV export and renders day and month views in the terminal.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetReportTimestamp(false)
		if cfg, err := config.Load(); err == nil && cfg.Debug {
			log.SetLevel(log.DebugLevel)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Int64Var(&userFlag, "user", 0, "User ID to operate on (defaults to the configured user)")
}

// newService wires the stores and the browser fetcher from the loaded
// configuration, and resolves which user the command acts for.
func newService() (*schedule.Service, int64, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, 0, err
	}

	userID := cfg.UserID
	if userFlag != 0 {
		userID = userFlag
	}

	svc := schedule.NewService(
		store.NewURLStore(cfg.URLStorePath()),
		&store.Files{Dir: cfg.SchedulesDir()},
		store.NewPrefs(),
		fetcher.New(cfg.ScreenshotsDir()),
	)
	return svc, userID, nil
}
