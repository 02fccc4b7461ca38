package exporter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"planctl/pkg/timetable"

	ics "github.com/arran4/golang-ical"
)

// GenerateICS creates an ICS calendar from the slice of entries and
// writes it to the provided writer. Entries whose clock times cannot be
// combined with their date are skipped.
func GenerateICS(entries []timetable.Entry, w io.Writer) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)

	// Timezone location for Poland
	loc, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		return fmt.Errorf("could not load timezone: %w", err)
	}

	for i, e := range entries {
		start, err := combine(e.Date, e.Start, loc)
		if err != nil {
			continue // Skip invalid times
		}
		end, err := combine(e.Date, e.End, loc)
		if err != nil {
			continue
		}

		event := cal.AddEvent(fmt.Sprintf("%s-%d", start.Format("20060102T150405Z"), i))
		event.SetCreatedTime(time.Now())
		event.SetDtStampTime(time.Now())
		event.SetModifiedAt(time.Now())
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(e.Activity)
		event.SetLocation(e.Room)

		description := fmt.Sprintf("Group: %s\nCompletion: %s", timetable.NormalizeGroup(e.Group), e.Completion)
		event.SetDescription(description)
	}

	return cal.SerializeTo(w)
}

// combine anchors a wall-clock string like "08:15" on a calendar day in
// the given location.
func combine(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
