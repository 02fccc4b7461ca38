package tui

import (
	"context"
	"fmt"
	"time"

	"planctl/pkg/schedule"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
)

// RunTUI launches the main menu interactive experience.
func RunTUI(svc *schedule.Service, userID int64) error {
	for {
		var action string

		menu := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("What would you like to do?").
					Options(
						huh.NewOption("🔄 Update schedule from the portal", "update"),
						huh.NewOption("📅 Today's schedule", "today"),
						huh.NewOption("📅 Tomorrow's schedule", "tomorrow"),
						huh.NewOption("🗓️ This month", "month"),
						huh.NewOption("🗓️ Next month", "next-month"),
						huh.NewOption("⚙️ Settings", "settings"),
						huh.NewOption("Quit", "quit"),
					).
					Value(&action),
			),
		).WithTheme(GetTheme())

		if err := menu.Run(); err != nil {
			return err
		}

		now := time.Now()

		switch action {
		case "quit":
			return nil
		case "update":
			if err := runUpdate(svc, userID); err != nil {
				fmt.Println(errorStyle.Render("❌ " + err.Error()))
			}
		case "today":
			fmt.Println(svc.Day(userID, now))
		case "tomorrow":
			fmt.Println(svc.Day(userID, now.AddDate(0, 0, 1)))
		case "month":
			fmt.Println(svc.Month(userID, now))
		case "next-month":
			fmt.Println(svc.Month(userID, schedule.NextMonth(now)))
		case "settings":
			if err := RunSettingsTUI(svc, userID); err != nil {
				return err
			}
		}
	}
}

// runUpdate wraps the long-running fetch in a spinner. The fetch takes
// tens of seconds to minutes; the spinner is the "please wait" the user
// gets while it runs.
func runUpdate(svc *schedule.Service, userID int64) error {
	if _, ok := svc.URLs.Get(userID); !ok {
		url, err := askForURL()
		if err != nil {
			return err
		}
		if err := svc.URLs.Set(userID, url); err != nil {
			return err
		}
	}

	var err error
	_ = spinner.New().
		Title("Updating your schedule, the portal is slow — this can take a few minutes...").
		Action(func() {
			err = svc.Update(context.Background(), userID)
		}).
		Run()

	if err != nil {
		return err
	}

	fmt.Println(accentStyle.Render("✅ Schedule updated!"))
	return nil
}

func askForURL() (string, error) {
	var url string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Paste your schedule URL").
				Description("The address of your personal timetable page on the student portal.").
				Value(&url),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return "", err
	}
	return url, nil
}
