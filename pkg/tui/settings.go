package tui

import (
	"fmt"

	"planctl/pkg/config"
	"planctl/pkg/schedule"
	"planctl/pkg/store"

	"github.com/charmbracelet/huh"
)

// RunSettingsTUI launches the interactive experience for managing
// per-user preferences and the app configuration.
func RunSettingsTUI(svc *schedule.Service, userID int64) error {
	for {
		var action string

		menu := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Settings").
					Options(
						huh.NewOption("Set schedule URL", "url"),
						huh.NewOption("Set group filter", "group"),
						huh.NewOption("Cycle group filter", "cycle"),
						huh.NewOption("Toggle update reminders", "notify"),
						huh.NewOption("Set accent color (theme)", "theme"),
						huh.NewOption("View current settings", "view"),
						huh.NewOption("Back to main menu", "back"),
					).
					Value(&action),
			),
		).WithTheme(GetTheme())

		if err := menu.Run(); err != nil {
			return err
		}

		var err error
		switch action {
		case "back":
			return nil
		case "url":
			err = runSetURL(svc, userID)
		case "group":
			err = runSetGroup(svc, userID)
		case "cycle":
			// Quick toggle stepping 0→1→2→3→0, for users who just want
			// to flip through the groups.
			if g := svc.Prefs.CycleGroup(userID); g == 0 {
				fmt.Println(accentStyle.Render("👥 Group filter: all groups"))
			} else {
				fmt.Println(accentStyle.Render(fmt.Sprintf("👥 Group filter: %d", g)))
			}
		case "notify":
			if svc.Prefs.ToggleNotifications(userID) {
				fmt.Println(accentStyle.Render("🔔 Update reminders on"))
			} else {
				fmt.Println(accentStyle.Render("🔕 Update reminders off"))
			}
		case "theme":
			err = runSetTheme()
		case "view":
			printSettings(svc, userID)
		}

		if err != nil {
			return err
		}
	}
}

func runSetURL(svc *schedule.Service, userID int64) error {
	url, err := askForURL()
	if err != nil {
		return err
	}
	if err := svc.URLs.Set(userID, url); err != nil {
		fmt.Println(errorStyle.Render("❌ " + err.Error()))
		return nil
	}
	fmt.Println(accentStyle.Render("✅ Schedule URL saved"))
	return nil
}

func runSetGroup(svc *schedule.Service, userID int64) error {
	group := svc.Prefs.Group(userID)

	options := []huh.Option[int]{huh.NewOption("All groups", 0)}
	for g := 1; g <= store.MaxGroup; g++ {
		options = append(options, huh.NewOption(fmt.Sprintf("Exercise group %d (plus lectures)", g), g))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Which entries should views show?").
				Options(options...).
				Value(&group),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}
	return svc.Prefs.SetGroup(userID, group)
}

func runSetTheme() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	color := cfg.AccentColor
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Accent color").
				Description("An ANSI 256 color code, e.g. 39 or 212.").
				Value(&color),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.AccentColor = color
	return config.Save(cfg)
}

func printSettings(svc *schedule.Service, userID int64) {
	fmt.Println(accentStyle.Render("\n--- Current settings (~/.planctl.json) ---"))

	if url, ok := svc.URLs.Get(userID); ok {
		fmt.Printf("Schedule URL: %s\n", url)
	} else {
		fmt.Println("Schedule URL: Not set")
	}

	if g := svc.Prefs.Group(userID); g == 0 {
		fmt.Println("Group filter: All groups")
	} else {
		fmt.Printf("Group filter: %d\n", g)
	}

	if svc.Prefs.Notifications(userID) {
		fmt.Println("Update reminders: On")
	} else {
		fmt.Println("Update reminders: Off")
	}

	if svc.Files.Exists(userID) {
		fmt.Printf("Schedule file: %s\n", svc.Files.Path(userID))
	} else {
		fmt.Println("Schedule file: Not fetched yet")
	}
	fmt.Println()
}
