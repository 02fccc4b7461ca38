package timetable

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

// buildExport assembles a semicolon-delimited export with the standard
// two-row preamble in front of the given rows.
func buildExport(rows ...string) []byte {
	preamble := []string{
		"Plan zajec;;;;;;;;;",
		"Wydruk z dnia 2024.10.01;;;;;;;;;",
	}
	return []byte(strings.Join(append(preamble, rows...), "\n"))
}

func TestParseCarriesMarkerDateForward(t *testing.T) {
	raw := buildExport(
		"Data Zajec 2024.10.05;;;;;;;;;",
		";08:15;09:45;2;Inf1Cw1S;Algebra;A-101;Zal;;",
		";10:00;11:30;2;Inf1WykS;Analiza;A-102;Egz;;",
		"Data Zajec 2024.10.06;;;;;;;;;",
		";09:00;10:30;2;Inf1Cw2S;Fizyka;B-201;Zal;;",
	)

	entries, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(entries), entries)
	}

	oct5 := time.Date(2024, 10, 5, 0, 0, 0, 0, time.UTC)
	oct6 := time.Date(2024, 10, 6, 0, 0, 0, 0, time.UTC)

	if !entries[0].Date.Equal(oct5) || !entries[1].Date.Equal(oct5) {
		t.Errorf("expected first two entries dated %v, got %v and %v", oct5, entries[0].Date, entries[1].Date)
	}
	if !entries[2].Date.Equal(oct6) {
		t.Errorf("expected third entry dated %v, got %v", oct6, entries[2].Date)
	}

	if entries[0].Activity != "Algebra" || entries[0].Room != "A-101" {
		t.Errorf("first entry fields wrong: %+v", entries[0])
	}
}

func TestParseInvalidMarkerResetsDate(t *testing.T) {
	raw := buildExport(
		"Data Zajec 2024.10.05;;;;;;;;;",
		";08:15;09:45;2;Inf1Cw1S;Algebra;A-101;;;",
		"Data Zajec garbage;;;;;;;;;",
		";10:00;11:30;2;Inf1WykS;Orphaned;A-102;;;",
		"Data Zajec 2024.10.07;;;;;;;;;",
		";12:00;13:30;2;Inf1WykS;Recovered;A-103;;;",
	)

	entries, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected rows after the broken marker to be dropped, got %d entries: %+v", len(entries), entries)
	}
	if entries[1].Activity != "Recovered" {
		t.Errorf("expected parsing to recover at the next valid marker, got %+v", entries[1])
	}
}

func TestParseDropsRowsWithoutStartTime(t *testing.T) {
	raw := buildExport(
		"Data Zajec 2024.10.05;;;;;;;;;",
		";;;;Inf1Cw1S;No start time;A-101;;;",
		";;;;;;;;;",
		";08:15;09:45;2;Inf1Cw1S;Kept;A-101;;;",
	)

	entries, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(entries) != 1 || entries[0].Activity != "Kept" {
		t.Fatalf("expected only the row with a start time to survive, got %+v", entries)
	}
}

func TestParseRowsBeforeAnyMarkerAreDropped(t *testing.T) {
	raw := buildExport(
		";08:15;09:45;2;Inf1Cw1S;Dateless;A-101;;;",
		"Data Zajec 2024.10.05;;;;;;;;;",
		";10:00;11:30;2;Inf1WykS;Dated;A-102;;;",
	)

	entries, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(entries) != 1 || entries[0].Activity != "Dated" {
		t.Fatalf("expected the dateless row to be dropped, got %+v", entries)
	}
}

func TestParseToleratesShortAndOverflowingRows(t *testing.T) {
	raw := buildExport(
		"Data Zajec 2024.10.05;;;;;;;;;",
		// Short row: no room or completion columns at all.
		";08:15;09:45;2;Inf1Cw1S;Short",
		// Overflowing row: columns past the known schema are ignored.
		";10:00;11:30;2;Inf1WykS;Long;A-102;Egz;note;x;y;z",
	)

	entries, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Room != "" {
		t.Errorf("expected empty room on the short row, got %q", entries[0].Room)
	}
	if entries[1].Notes != "note" {
		t.Errorf("expected overflow columns past the notes to be ignored, got %+v", entries[1])
	}
}

func TestParseFallsBackToCentralEuropeanCodepage(t *testing.T) {
	// "Ćwiczenia" with Ć encoded as 0xC6 per Windows-1250. The byte
	// sequence is not valid UTF-8, forcing the fallback chain.
	activity := append([]byte{0xC6}, []byte("wiczenia z algebry")...)

	var raw []byte
	raw = append(raw, []byte("Plan zajec;;;;;;;;;\nWydruk;;;;;;;;;\nData Zajec 2024.10.05;;;;;;;;;\n;08:15;09:45;2;Inf1Cw1S;")...)
	raw = append(raw, activity...)
	raw = append(raw, []byte(";A-101;;;\n")...)

	entries, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed on windows-1250 content: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if !strings.Contains(entries[0].Activity, "wiczenia z algebry") {
		t.Errorf("activity not decoded: %q", entries[0].Activity)
	}
	// The detector may pick any of the single-byte candidates; what
	// matters is that the 0xC6 byte became some valid UTF-8 rune.
	if !utf8.ValidString(entries[0].Activity) {
		t.Errorf("decoded activity is not valid UTF-8: %q", entries[0].Activity)
	}
}

func TestLoadFileMissingReturnsEmpty(t *testing.T) {
	entries := LoadFile("/nonexistent/path/schedule.csv")
	if len(entries) != 0 {
		t.Errorf("expected no entries for a missing file, got %d", len(entries))
	}
}
