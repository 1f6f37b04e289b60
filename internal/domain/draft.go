package domain

import (
	"fmt"
	"time"

	"timebookings/internal/errors"
)

// Field names a settable property of an EntryDraft.
type Field string

const (
	FieldStart          Field = "start"
	FieldEnd            Field = "end"
	FieldShortText      Field = "shortText"
	FieldProjectID      Field = "projectId"
	FieldProjectName    Field = "projectName"
	FieldAccountingID   Field = "accountingId"
	FieldAccountingName Field = "accountingName"
)

// Fields lists every recognised draft field in display order.
var Fields = []Field{
	FieldStart,
	FieldEnd,
	FieldShortText,
	FieldProjectID,
	FieldProjectName,
	FieldAccountingID,
	FieldAccountingName,
}

// ParseField resolves a field name, failing with an invalid field error for
// anything that is not a draft field.
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", errors.NewInvalidFieldError(name)
}

// EntryDraft is the staging area for a time entry that is being created or
// edited. A nil EditTargetID means the draft creates a new entry.
type EntryDraft struct {
	Start          *time.Time
	End            *time.Time
	ShortText      string
	ProjectID      string
	ProjectName    string
	AccountingID   string
	AccountingName string
	EditTargetID   *EntryID
}

// EmptyDraft returns the canonical empty draft.
func EmptyDraft() EntryDraft {
	return EntryDraft{}
}

// NewManualDraft prepares a draft for the manual add flow: it starts now,
// lasts length, and carries the currently selected project.
func NewManualDraft(now time.Time, length time.Duration, projectID, projectName string) EntryDraft {
	start := now
	end := now.Add(length)
	return EntryDraft{
		Start:       &start,
		End:         &end,
		ProjectID:   projectID,
		ProjectName: projectName,
	}
}

// DraftFromEntry copies an existing entry into an edit-mode draft.
func DraftFromEntry(entry TimeEntry) EntryDraft {
	start := entry.Start
	end := entry.End
	id := entry.ID
	return EntryDraft{
		Start:          &start,
		End:            &end,
		ShortText:      entry.ShortText,
		ProjectID:      entry.ProjectID,
		ProjectName:    entry.ProjectName,
		AccountingID:   entry.AccountingID,
		AccountingName: entry.AccountingName,
		EditTargetID:   &id,
	}
}

// IsEdit reports whether the draft patches an existing entry.
func (d EntryDraft) IsEdit() bool {
	return d.EditTargetID != nil
}

// IsEmpty reports whether d equals the canonical empty draft.
func (d EntryDraft) IsEmpty() bool {
	return d.Start == nil && d.End == nil && d.EditTargetID == nil &&
		d.ShortText == "" && d.ProjectID == "" && d.ProjectName == "" &&
		d.AccountingID == "" && d.AccountingName == ""
}

// WithField returns a copy of d with one field replaced. Time fields accept
// time.Time, *time.Time or nil; every other field takes a string.
func (d EntryDraft) WithField(field Field, value interface{}) (EntryDraft, error) {
	switch field {
	case FieldStart, FieldEnd:
		t, err := timeValue(field, value)
		if err != nil {
			return d, err
		}
		if field == FieldStart {
			d.Start = t
		} else {
			d.End = t
		}
		return d, nil
	case FieldShortText, FieldProjectID, FieldProjectName, FieldAccountingID, FieldAccountingName:
		s, ok := value.(string)
		if !ok {
			return d, errors.NewInvalidInputError(string(field), value, "expected a string")
		}
		switch field {
		case FieldShortText:
			d.ShortText = s
		case FieldProjectID:
			d.ProjectID = s
		case FieldProjectName:
			d.ProjectName = s
		case FieldAccountingID:
			d.AccountingID = s
		case FieldAccountingName:
			d.AccountingName = s
		}
		return d, nil
	default:
		return d, errors.NewInvalidFieldError(string(field))
	}
}

func timeValue(field Field, value interface{}) (*time.Time, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &v, nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		t := *v
		return &t, nil
	default:
		return nil, errors.NewInvalidInputError(string(field), value, fmt.Sprintf("expected a timestamp, got %T", value))
	}
}

// Finalize converts the draft into an entry. It does not validate; callers
// gate on the draft validators first. Edit drafts keep the target id, create
// drafts leave the id empty for the persistence backend to assign.
func Finalize(d EntryDraft) TimeEntry {
	var start, end time.Time
	if d.Start != nil {
		start = *d.Start
	}
	if d.End != nil {
		end = *d.End
	}

	entry := NewTimeEntry(start, end, d.ShortText)
	entry.ProjectID = d.ProjectID
	entry.ProjectName = d.ProjectName
	entry.AccountingID = d.AccountingID
	entry.AccountingName = d.AccountingName
	if d.EditTargetID != nil {
		entry.ID = *d.EditTargetID
	}
	return entry
}
