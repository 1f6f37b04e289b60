package sqlite

import "time"

// TimeEntry is a row of the time_entries table.
// Seq is the insertion order and drives the newest-first listing.
type TimeEntry struct {
	Seq            int64
	ID             string
	StartTime      time.Time
	EndTime        time.Time
	Duration       string
	ShortText      string
	ProjectID      string
	ProjectName    string
	AccountingID   string
	AccountingName string
	EntryDate      string
}

// ReferenceKind selects one of the lookup lists in reference_data.
type ReferenceKind string

const (
	ReferenceKindProject    ReferenceKind = "project"
	ReferenceKindAccounting ReferenceKind = "accounting"
)

// Reference is a row of the reference_data table.
type Reference struct {
	Kind ReferenceKind
	ID   string
	Name string
}
