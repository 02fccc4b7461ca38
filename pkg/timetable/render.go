package timetable

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const timeLayout = "15:04"

// FilterGroup keeps the entries that survive the user's group filter.
func FilterGroup(entries []Entry, group int) []Entry {
	if group <= 0 {
		return entries
	}

	var kept []Entry
	for _, e := range entries {
		if MatchesGroup(e, group) {
			kept = append(kept, e)
		}
	}
	return kept
}

// OnDate selects the entries falling on a single calendar day.
func OnDate(entries []Entry, day time.Time) []Entry {
	y, m, d := day.Date()

	var kept []Entry
	for _, e := range entries {
		ey, em, ed := e.Date.Date()
		if ey == y && em == m && ed == d {
			kept = append(kept, e)
		}
	}
	return kept
}

// InMonth selects the entries falling in the month containing ref.
func InMonth(entries []Entry, ref time.Time) []Entry {
	y, m, _ := ref.Date()

	var kept []Entry
	for _, e := range entries {
		ey, em, _ := e.Date.Date()
		if ey == y && em == m {
			kept = append(kept, e)
		}
	}
	return kept
}

// Render formats entries as one text block per day, days ascending,
// entries within a day ordered by start time. The two empty cases are
// kept distinct so a user can tell "nothing scheduled" apart from "my
// filter hides everything"; the caller handles "no file at all".
func Render(entries []Entry, title string, group int) string {
	if len(entries) == 0 {
		return fmt.Sprintf("%s — nothing scheduled 📭", title)
	}

	filtered := FilterGroup(entries, group)
	if len(filtered) == 0 {
		return fmt.Sprintf("%s — nothing matches your group filter 📭", title)
	}

	byDate := make(map[time.Time][]Entry)
	var dates []time.Time
	for _, e := range filtered {
		if _, seen := byDate[e.Date]; !seen {
			dates = append(dates, e.Date)
		}
		byDate[e.Date] = append(byDate[e.Date], e)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	var b strings.Builder
	fmt.Fprintf(&b, "📅 %s:\n", title)

	for _, d := range dates {
		fmt.Fprintf(&b, "\n🗓️ %s, %s\n", d.Weekday(), d.Format("02.01.2006"))

		day := append([]Entry(nil), byDate[d]...)
		sortByStart(day)

		for _, e := range day {
			fmt.Fprintf(&b, "\n⏰ %s - %s\n", e.Start, e.End)
			fmt.Fprintf(&b, "👥 %s\n", NormalizeGroup(e.Group))
			fmt.Fprintf(&b, "📖 %s\n", e.Activity)
			fmt.Fprintf(&b, "🏫 %s\n", e.Room)
		}
	}

	return b.String()
}

// sortByStart orders entries by parsed start time. Entries whose start
// time does not parse sort last and keep their original relative order.
func sortByStart(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ti, iok := parseClock(entries[i].Start)
		tj, jok := parseClock(entries[j].Start)
		if iok && jok {
			return ti.Before(tj)
		}
		return iok && !jok
	})
}

func parseClock(s string) (time.Time, bool) {
	t, err := time.Parse(timeLayout, strings.TrimSpace(s))
	return t, err == nil
}
