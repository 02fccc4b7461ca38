package timetable

import "time"

// Entry represents one class occurrence from the portal's CSV export
type Entry struct {
	Date       time.Time
	Start      string // "08:15"
	End        string // "09:45"
	Hours      string // academic-hour count, kept verbatim
	Group      string // raw group label, e.g. "Inf1Cw2S"
	Activity   string
	Room       string
	Completion string // completion form ("Zal", "Egz", ...)
	Notes      string
}
