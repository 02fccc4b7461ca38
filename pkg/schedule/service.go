package schedule

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"planctl/pkg/store"
	"planctl/pkg/timetable"

	"github.com/charmbracelet/log"
)

// Fetcher acquires a fresh export from the portal into destPath. The
// real implementation drives a headless browser; tests swap in fakes.
type Fetcher interface {
	Fetch(ctx context.Context, url, destPath string) error
}

var (
	ErrNoURL            = errors.New("no schedule URL saved for this user")
	ErrUpdateInProgress = errors.New("a schedule update is already running for this user")
)

// NoScheduleMessage is what every view renders when the user has no
// usable schedule file at all. It is deliberately distinct from the
// "nothing scheduled" messages a present-but-sparse file produces.
const NoScheduleMessage = "Schedule file not found or empty 📭"

// Service ties the stores, the fetcher and the normalizer together;
// every front end goes through it.
type Service struct {
	URLs    *store.URLStore
	Files   *store.Files
	Prefs   *store.Prefs
	Fetcher Fetcher

	mu       sync.Mutex
	inFlight map[int64]struct{}
}

func NewService(urls *store.URLStore, files *store.Files, prefs *store.Prefs, f Fetcher) *Service {
	return &Service{
		URLs:     urls,
		Files:    files,
		Prefs:    prefs,
		Fetcher:  f,
		inFlight: make(map[int64]struct{}),
	}
}

// Update runs one fetch for the user's saved URL. Updates take minutes,
// so at most one may be in flight per user; concurrent calls get
// ErrUpdateInProgress instead of racing writes to the same file.
func (s *Service) Update(ctx context.Context, userID int64) error {
	if !s.begin(userID) {
		return ErrUpdateInProgress
	}
	defer s.end(userID)

	url, ok := s.URLs.Get(userID)
	if !ok {
		return ErrNoURL
	}

	log.Info("updating schedule", "user", userID)
	if err := s.Fetcher.Fetch(ctx, url, s.Files.Path(userID)); err != nil {
		return fmt.Errorf("updating schedule for user %d: %w", userID, err)
	}
	return nil
}

func (s *Service) begin(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[userID]; busy {
		return false
	}
	s.inFlight[userID] = struct{}{}
	return true
}

func (s *Service) end(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, userID)
}

// Import replaces the user's schedule with a manually supplied export,
// for users who download the CSV themselves.
func (s *Service) Import(userID int64, r io.Reader) error {
	return s.Files.Replace(userID, r)
}

// Entries loads and parses the user's saved export. Missing or
// unparseable files yield an empty set, never an error.
func (s *Service) Entries(userID int64) []timetable.Entry {
	return timetable.LoadFile(s.Files.Path(userID))
}

// Day renders the user's schedule for a single date.
func (s *Service) Day(userID int64, date time.Time) string {
	entries := s.Entries(userID)
	if len(entries) == 0 {
		return NoScheduleMessage
	}

	title := "Schedule for " + date.Format("02.01.2006")
	return timetable.Render(timetable.OnDate(entries, date), title, s.Prefs.Group(userID))
}

// Month renders every scheduled day of the month containing ref.
func (s *Service) Month(userID int64, ref time.Time) string {
	entries := s.Entries(userID)
	if len(entries) == 0 {
		return NoScheduleMessage
	}

	title := "Schedule for " + ref.Format("January 2006")
	return timetable.Render(timetable.InMonth(entries, ref), title, s.Prefs.Group(userID))
}

// NextMonth returns the first day of the month after ref, rolling the
// year over in December.
func NextMonth(ref time.Time) time.Time {
	y, m, _ := ref.Date()
	if m == time.December {
		return time.Date(y+1, time.January, 1, 0, 0, 0, 0, ref.Location())
	}
	return time.Date(y, m+1, 1, 0, 0, 0, 0, ref.Location())
}
