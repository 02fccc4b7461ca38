package timetable

import (
	"fmt"
	"regexp"
	"strings"
)

// Raw group labels follow the portal's internal coding: "WykS" marks a
// lecture, "Cw<N>S" an exercise session for group N.
const (
	lectureMarker  = "WykS"
	exerciseMarker = "Cw"
)

var exerciseGroupRe = regexp.MustCompile(`Cw(\d+)S`)

// NormalizeGroup maps a raw group label to a display label. Unrecognized
// labels pass through trimmed, so nothing in the export gets lost.
func NormalizeGroup(raw string) string {
	label := strings.TrimSpace(raw)

	if strings.Contains(label, lectureMarker) {
		return "Lecture"
	}
	if m := exerciseGroupRe.FindStringSubmatch(label); m != nil {
		return fmt.Sprintf("Exercise (group %s)", m[1])
	}
	if strings.Contains(label, exerciseMarker) {
		return "Exercise"
	}
	return label
}

// MatchesGroup reports whether the entry survives a user's group filter.
// Filter 0 admits everything; a concrete group admits that group's
// exercise sessions plus all lectures.
func MatchesGroup(e Entry, group int) bool {
	if group <= 0 {
		return true
	}
	return strings.Contains(e.Group, fmt.Sprintf("Cw%dS", group)) ||
		strings.Contains(e.Group, lectureMarker)
}
