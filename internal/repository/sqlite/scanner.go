package sqlite

import (
	"fmt"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// ScanTimeEntry scans a single time entry from a database row
func ScanTimeEntry(scanner Scanner) (*TimeEntry, error) {
	entry := &TimeEntry{}
	var startTime, endTime string

	err := scanner.Scan(
		&entry.Seq,
		&entry.ID,
		&startTime,
		&endTime,
		&entry.Duration,
		&entry.ShortText,
		&entry.ProjectID,
		&entry.ProjectName,
		&entry.AccountingID,
		&entry.AccountingName,
		&entry.EntryDate,
	)
	if err != nil {
		return nil, err
	}

	if entry.StartTime, err = ParseTimeFromDB(startTime); err != nil {
		return nil, fmt.Errorf("parse start_time %q: %w", startTime, err)
	}
	if entry.EndTime, err = ParseTimeFromDB(endTime); err != nil {
		return nil, fmt.Errorf("parse end_time %q: %w", endTime, err)
	}

	return entry, nil
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// ScanTimeEntries scans multiple time entries from database rows
func ScanTimeEntries(rows Rows) ([]*TimeEntry, error) {
	entries := make([]*TimeEntry, 0)
	for rows.Next() {
		entry, err := ScanTimeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// ScanReference scans a single reference row
func ScanReference(scanner Scanner) (*Reference, error) {
	ref := &Reference{}
	var kind string
	if err := scanner.Scan(&kind, &ref.ID, &ref.Name); err != nil {
		return nil, err
	}
	ref.Kind = ReferenceKind(kind)
	return ref, nil
}

// ScanReferences scans multiple reference rows
func ScanReferences(rows Rows) ([]*Reference, error) {
	refs := make([]*Reference, 0)
	for rows.Next() {
		ref, err := ScanReference(rows)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return refs, nil
}
