package services

import (
	"context"

	"timebookings/internal/domain"
	"timebookings/internal/timer"
)

// DraftMode tells which submit path the live draft belongs to
type DraftMode string

const (
	ModeNone   DraftMode = "none"   // no draft open
	ModeManual DraftMode = "manual" // new entry, full-save gate
	ModeEdit   DraftMode = "edit"   // patch of an existing entry, full-save gate
	ModeQuick  DraftMode = "quick"  // opened by stopping the timer, quick-save gate
)

// Selection is the project chosen in the main view
type Selection struct {
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
}

// IsEmpty reports whether no project is selected
func (s Selection) IsEmpty() bool {
	return s.ProjectID == ""
}

// ReferenceService caches the project and accounting lookup lists
type ReferenceService interface {
	Load(ctx context.Context) error
	Projects() domain.ReferenceList
	Accountings() domain.ReferenceList
	ProjectName(id string) (string, bool)
	AccountingName(id string) (string, bool)

	// Editing is only available on backends that keep reference data locally
	AddProject(ctx context.Context, ref domain.Reference) error
	AddAccounting(ctx context.Context, ref domain.Reference) error
}

// BookingService owns the live draft, the project selection, the entry
// collection and the timer session of one user session
type BookingService interface {
	// Collection
	Load(ctx context.Context) error
	Entries() []domain.TimeEntry
	Groups() []domain.DateGroup
	Search(query string) []domain.TimeEntry
	Delete(ctx context.Context, id domain.EntryID) error

	// Selection
	SelectProject(id string) (Selection, error)
	Selection() Selection

	// Draft lifecycle
	BeginManualEntry() domain.EntryDraft
	BeginEdit(id domain.EntryID) (domain.EntryDraft, error)
	UpdateField(field domain.Field, value interface{}) (domain.EntryDraft, error)
	SetDraftProject(id string) (domain.EntryDraft, error)
	SetDraftAccounting(id string) (domain.EntryDraft, error)
	Draft() domain.EntryDraft
	Mode() DraftMode
	CanQuickSave() bool
	CanFullSave() bool
	SubmitFull(ctx context.Context) (domain.TimeEntry, error)
	CancelDraft() domain.EntryDraft

	// Timer
	StartTimer() error
	StopTimer() (domain.EntryDraft, error)
	SubmitQuick(ctx context.Context) (domain.TimeEntry, error)
	Timer() timer.Snapshot

	Close() error
}

// ServiceContainer manages all services and their dependencies
type ServiceContainer struct {
	ReferenceService ReferenceService
	BookingService   BookingService
}
