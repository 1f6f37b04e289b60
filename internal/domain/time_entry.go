package domain

import (
	"time"
)

// EntryID identifies a persisted time entry. Values are assigned by the
// persistence backend and are opaque to the rest of the application.
type EntryID string

// String returns the id as a plain string.
func (id EntryID) String() string {
	return string(id)
}

// DateLayout is the layout of TimeEntry.Date and of the date group keys.
const DateLayout = "2006-01-02"

// TimeEntry represents a finalized, persisted time booking.
// The JSON field names follow the payload the booking collections exchange.
type TimeEntry struct {
	ID             EntryID   `json:"id,omitempty"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Duration       string    `json:"duration"`
	ShortText      string    `json:"shortText"`
	ProjectID      string    `json:"projectId"`
	ProjectName    string    `json:"project"`
	AccountingID   string    `json:"accountingId"`
	AccountingName string    `json:"accountingText"`
	Date           string    `json:"date"`
}

// NewTimeEntry builds an entry for the given interval with derived duration and date.
func NewTimeEntry(start, end time.Time, shortText string) TimeEntry {
	_, label := ComputeDuration(start, end)
	return TimeEntry{
		Start:     start,
		End:       end,
		Duration:  label,
		ShortText: shortText,
		Date:      CalendarDate(start),
	}
}

// Minutes returns the rounded length of the entry in minutes.
func (te TimeEntry) Minutes() int {
	minutes, _ := ComputeDuration(te.Start, te.End)
	return minutes
}

// CalendarDate returns the calendar date of t in the entry date layout.
// The date is taken in UTC, matching the ISO timestamps entries are stored with.
func CalendarDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
