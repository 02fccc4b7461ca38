package schedule

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"planctl/pkg/store"
)

const sampleExport = `Plan zajec;;;;;;;;;
Wydruk z dnia 2024.10.01;;;;;;;;;
Data Zajec 2024.10.05;;;;;;;;;
;08:15;09:45;2;Inf1Cw1S;Algebra;A-101;Zal;;
;10:00;11:30;2;Inf1WykS;Analiza;A-102;Egz;;
`

// fakeFetcher lets tests script the acquisition step without a browser.
type fakeFetcher struct {
	mu      sync.Mutex
	calls   int
	err     error
	content string
	block   chan struct{} // when set, Fetch waits here before returning
}

func (f *fakeFetcher) Fetch(ctx context.Context, url, destPath string) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return f.err
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(destPath, []byte(f.content), 0644)
}

func newTestService(t *testing.T, f Fetcher) *Service {
	t.Helper()
	dir := t.TempDir()
	return NewService(
		store.NewURLStore(filepath.Join(dir, "user_urls.json")),
		&store.Files{Dir: filepath.Join(dir, "user_schedules")},
		store.NewPrefs(),
		f,
	)
}

func TestUpdateRequiresSavedURL(t *testing.T) {
	s := newTestService(t, &fakeFetcher{})

	err := s.Update(context.Background(), 1)
	if !errors.Is(err, ErrNoURL) {
		t.Fatalf("expected ErrNoURL, got %v", err)
	}
}

func TestUpdateFetchesToUserPath(t *testing.T) {
	f := &fakeFetcher{content: sampleExport}
	s := newTestService(t, f)

	if err := s.URLs.Set(1, "https://example.edu/plan"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Update(context.Background(), 1); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if !s.Files.Exists(1) {
		t.Errorf("expected the schedule file to exist after a successful update")
	}
	if len(s.Entries(1)) != 2 {
		t.Errorf("expected 2 parsed entries, got %d", len(s.Entries(1)))
	}
}

func TestUpdateFailureLeavesOldFileUntouched(t *testing.T) {
	f := &fakeFetcher{err: errors.New("site unreachable")}
	s := newTestService(t, f)

	if err := s.URLs.Set(1, "https://example.edu/plan"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Import(1, strings.NewReader(sampleExport)); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if err := s.Update(context.Background(), 1); err == nil {
		t.Fatalf("expected the update to fail")
	}

	if len(s.Entries(1)) != 2 {
		t.Errorf("a failed fetch must not cost the user their previous schedule")
	}
}

func TestUpdateGuardsConcurrentFetchesPerUser(t *testing.T) {
	f := &fakeFetcher{content: sampleExport, block: make(chan struct{})}
	s := newTestService(t, f)

	for _, id := range []int64{1, 2} {
		if err := s.URLs.Set(id, "https://example.edu/plan"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	firstDone := make(chan error, 1)
	go func() { firstDone <- s.Update(context.Background(), 1) }()

	// Wait until the first update is actually inside the fetcher.
	deadline := time.After(2 * time.Second)
	for {
		f.mu.Lock()
		started := f.calls == 1
		f.mu.Unlock()
		if started {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("first update never reached the fetcher")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if err := s.Update(context.Background(), 1); !errors.Is(err, ErrUpdateInProgress) {
		t.Errorf("expected ErrUpdateInProgress for the same user, got %v", err)
	}

	// A different user is not blocked by user 1's in-flight update.
	go func() { f.block <- struct{}{} }() // release one blocked fetch
	go func() { f.block <- struct{}{} }() // and the other
	if err := s.Update(context.Background(), 2); errors.Is(err, ErrUpdateInProgress) {
		t.Errorf("a different user must not be blocked, got %v", err)
	}

	if err := <-firstDone; err != nil {
		t.Errorf("first update failed: %v", err)
	}

	// The guard resets once the update finishes.
	f.block = nil
	if err := s.Update(context.Background(), 1); err != nil {
		t.Errorf("expected the guard to clear after completion, got %v", err)
	}
}

func TestDayRendersDistinctEmptyStates(t *testing.T) {
	s := newTestService(t, &fakeFetcher{})
	date := time.Date(2024, 10, 5, 0, 0, 0, 0, time.UTC)

	// No file at all.
	out := s.Day(1, date)
	if out != NoScheduleMessage {
		t.Errorf("expected the no-file message, got %q", out)
	}

	// File present, requested date empty.
	if err := s.Import(1, strings.NewReader(sampleExport)); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	out = s.Day(1, time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC))
	if out == NoScheduleMessage || !strings.Contains(out, "nothing scheduled") {
		t.Errorf("expected the empty-day message, got %q", out)
	}
}

func TestDayAppliesGroupFilter(t *testing.T) {
	s := newTestService(t, &fakeFetcher{})
	date := time.Date(2024, 10, 5, 0, 0, 0, 0, time.UTC)

	if err := s.Import(1, strings.NewReader(sampleExport)); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	// Filter 2 hides the group 1 exercise and keeps the lecture.
	if err := s.Prefs.SetGroup(1, 2); err != nil {
		t.Fatalf("SetGroup failed: %v", err)
	}
	out := s.Day(1, date)
	if strings.Contains(out, "Algebra") || !strings.Contains(out, "Analiza") {
		t.Errorf("group filter not applied, got:\n%s", out)
	}
}

func TestMonthView(t *testing.T) {
	s := newTestService(t, &fakeFetcher{})

	export := sampleExport + "Data Zajec 2024.10.12;;;;;;;;;\n;09:00;10:30;2;Inf1WykS;Fizyka;B-1;;;\n"
	if err := s.Import(1, strings.NewReader(export)); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	out := s.Month(1, time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC))
	if !strings.Contains(out, "05.10.2024") || !strings.Contains(out, "12.10.2024") {
		t.Errorf("expected both October days in the month view, got:\n%s", out)
	}

	out = s.Month(1, time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC))
	if !strings.Contains(out, "nothing scheduled") {
		t.Errorf("expected an empty November, got:\n%s", out)
	}
}

func TestNextMonthRollsOverDecember(t *testing.T) {
	dec := time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC)
	next := NextMonth(dec)
	if next.Year() != 2025 || next.Month() != time.January || next.Day() != 1 {
		t.Errorf("expected 01.01.2025, got %v", next)
	}

	oct := time.Date(2024, 10, 31, 0, 0, 0, 0, time.UTC)
	next = NextMonth(oct)
	if next.Year() != 2024 || next.Month() != time.November || next.Day() != 1 {
		t.Errorf("expected 01.11.2024, got %v", next)
	}
}
