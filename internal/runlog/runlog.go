// Package runlog records each import run in an append-only CSV file.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Actions recorded for a run.
const (
	ActionCommitted = "committed"
	ActionDeclined  = "declined"
	ActionDryRun    = "dry-run"
	ActionEmpty     = "nothing-new"
)

// Entry is one row in the run log.
type Entry struct {
	Timestamp time.Time
	RunID     uuid.UUID
	Action    string
	Files     []string
	Staged    int
	Committed int
}

// Header is the CSV header for the run log.
const Header = "timestamp,run_id,action,files,staged,committed"

const (
	numFields    = 6
	fileSep      = ";"
	colTimestamp = 0
	colRunID     = 1
	colAction    = 2
	colFiles     = 3
	colStaged    = 4
	colCommitted = 5
)

// NewEntry starts an entry for a new run.
func NewEntry(action string, files []string, staged, committed int) Entry {
	return Entry{
		Timestamp: time.Now().UTC(),
		RunID:     uuid.New(),
		Action:    action,
		Files:     files,
		Staged:    staged,
		Committed: committed,
	}
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID.String()
	row[colAction] = e.Action
	row[colFiles] = strings.Join(e.Files, fileSep)
	row[colStaged] = strconv.Itoa(e.Staged)
	row[colCommitted] = strconv.Itoa(e.Committed)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	id, err := uuid.Parse(record[colRunID])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing run_id %q: %w", record[colRunID], err)
	}
	staged, err := strconv.Atoi(record[colStaged])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing staged %q: %w", record[colStaged], err)
	}
	committed, err := strconv.Atoi(record[colCommitted])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing committed %q: %w", record[colCommitted], err)
	}

	var files []string
	if record[colFiles] != "" {
		files = strings.Split(record[colFiles], fileSep)
	}

	return Entry{
		Timestamp: ts,
		RunID:     id,
		Action:    record[colAction],
		Files:     files,
		Staged:    staged,
		Committed: committed,
	}, nil
}

// Append writes entries to path, creating the file, its directory and the
// header if needed.
func Append(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating run log dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries in path. A missing file yields no entries.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
