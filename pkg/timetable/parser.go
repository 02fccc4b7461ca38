package timetable

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

const (
	// The export repeats a marker row ahead of each day's entries. Its
	// first cell looks like "Data Zajec 2024.10.05" and carries the date
	// for every row until the next marker.
	dateMarkerPrefix = "Data Zajec"
	dateLayout       = "2006.01.02"

	// The first two rows of every export are decorative preamble, there
	// is no header row. Column identity is purely positional.
	preambleRows = 2
)

// Parse decodes a raw CSV export and normalizes it into entries. The
// portal is inconsistent about the encoding it exports with, so the
// detected encoding is tried first and a fixed fallback list after it;
// the first candidate that yields structurally readable CSV wins.
//
// Every returned entry has a resolved date and a non-empty start time.
func Parse(raw []byte) ([]Entry, error) {
	records, err := decodeRecords(raw)
	if err != nil {
		return nil, err
	}
	return collectEntries(records), nil
}

// LoadFile reads and parses a saved export. A missing or unparseable
// file yields an empty set: "no schedule yet" is a normal state and a
// half-broken export should degrade, not crash rendering.
func LoadFile(path string) []Entry {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("could not read schedule file", "path", path, "err", err)
		}
		return nil
	}

	entries, err := Parse(raw)
	if err != nil {
		log.Warn("could not parse schedule file", "path", path, "err", err)
		return nil
	}
	return entries
}

func decodeRecords(raw []byte) ([][]string, error) {
	var lastErr error

	for _, enc := range candidateEncodings(raw) {
		text, err := decodeText(raw, enc)
		if err != nil {
			lastErr = err
			continue
		}

		records, err := readCSV(text)
		if err != nil {
			lastErr = err
			continue
		}
		return records, nil
	}

	return nil, fmt.Errorf("no candidate encoding produced a readable export: %w", lastErr)
}

// candidateEncodings returns the detected encoding (when the detector
// recognizes one) followed by the fixed fallbacks: UTF-8 and the two
// Central-European code pages the portal has been seen exporting with.
func candidateEncodings(raw []byte) []encoding.Encoding {
	fallbacks := []encoding.Encoding{nil, charmap.Windows1250, charmap.Windows1251}

	result, err := chardet.NewTextDetector().DetectBest(raw)
	if err != nil {
		return fallbacks
	}

	detected, err := htmlindex.Get(result.Charset)
	if err != nil {
		// The detector names charsets the decoder table doesn't always
		// know; just fall through to the fixed list.
		return fallbacks
	}

	return append([]encoding.Encoding{detected}, fallbacks...)
}

// decodeText converts raw bytes into a UTF-8 string. A nil encoding
// stands for plain UTF-8, which is only accepted when the bytes are
// actually valid UTF-8.
func decodeText(raw []byte, enc encoding.Encoding) (string, error) {
	if enc == nil {
		if !utf8.Valid(raw) {
			return "", fmt.Errorf("content is not valid UTF-8")
		}
		return string(raw), nil
	}

	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decoding failed: %w", err)
	}
	return string(decoded), nil
}

func readCSV(text string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = ';'
	r.FieldsPerRecord = -1 // the exporter is sloppy about column counts
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading delimited text: %w", err)
	}

	if len(records) <= preambleRows {
		return nil, nil
	}
	return records[preambleRows:], nil
}

// collectEntries folds over the rows carrying the current date forward.
// Marker rows update the carried date and are dropped; data rows inherit
// it. A marker with an unparseable date resets the carried date to
// unknown, so the rows that follow it are discarded until the next valid
// marker. Rows without a start time are discarded as well.
func collectEntries(records [][]string) []Entry {
	var entries []Entry
	var current time.Time // zero until the first valid marker

	for _, rec := range records {
		if emptyRow(rec) {
			continue
		}

		first := strings.TrimSpace(cell(rec, 0))
		if strings.HasPrefix(first, dateMarkerPrefix) {
			current = markerDate(first)
			continue
		}

		start := strings.TrimSpace(cell(rec, 1))
		if current.IsZero() || start == "" {
			continue
		}

		// Positional schema: marker, start, end, hours, group, activity,
		// room, completion form, notes. Anything past that is overflow
		// the exporter sometimes tacks on and carries no information.
		entries = append(entries, Entry{
			Date:       current,
			Start:      start,
			End:        strings.TrimSpace(cell(rec, 2)),
			Hours:      strings.TrimSpace(cell(rec, 3)),
			Group:      strings.TrimSpace(cell(rec, 4)),
			Activity:   strings.TrimSpace(cell(rec, 5)),
			Room:       strings.TrimSpace(cell(rec, 6)),
			Completion: strings.TrimSpace(cell(rec, 7)),
			Notes:      strings.TrimSpace(cell(rec, 8)),
		})
	}

	return entries
}

// markerDate extracts the date from a marker cell like
// "Data Zajec 2024.10.05". The date is always the third whitespace
// token. Returns the zero time when the token is missing or malformed.
func markerDate(first string) time.Time {
	parts := strings.Fields(first)
	if len(parts) < 3 {
		return time.Time{}
	}

	d, err := time.Parse(dateLayout, parts[2])
	if err != nil {
		return time.Time{}
	}
	return d
}

func emptyRow(rec []string) bool {
	for _, field := range rec {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// cell reads a positional column, tolerating short rows.
func cell(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}
