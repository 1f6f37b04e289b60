package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"timebookings/internal/api"
	"timebookings/internal/config"
	"timebookings/internal/domain"
	"timebookings/internal/errors"
	"timebookings/internal/services"
)

// mockBookingAPI implements api.BookingAPI with canned data and call recording
type mockBookingAPI struct {
	entries    []domain.TimeEntry
	references api.ReferenceData
	nextID     int

	addErr    error
	editErr   error
	deleteErr error
	listErr   error

	lastRequest api.EntryRequest
	lastQuery   string
	deleted     []domain.EntryID
	closed      bool
}

func newMockBookingAPI(entries ...domain.TimeEntry) *mockBookingAPI {
	return &mockBookingAPI{entries: entries}
}

func (m *mockBookingAPI) AddEntry(ctx context.Context, req api.EntryRequest) (*domain.TimeEntry, error) {
	m.lastRequest = req
	if m.addErr != nil {
		return nil, m.addErr
	}
	m.nextID++
	entry := entryFromRequest(req)
	entry.ID = domain.EntryID(fmt.Sprintf("new-%d", m.nextID))
	m.entries = append([]domain.TimeEntry{entry}, m.entries...)
	return &entry, nil
}

func (m *mockBookingAPI) EditEntry(ctx context.Context, id domain.EntryID, req api.EntryRequest) (*domain.TimeEntry, error) {
	m.lastRequest = req
	if m.editErr != nil {
		return nil, m.editErr
	}
	for i := range m.entries {
		if m.entries[i].ID == id {
			if req.ShortText != nil {
				m.entries[i].ShortText = *req.ShortText
			}
			entry := m.entries[i]
			return &entry, nil
		}
	}
	return nil, errors.NewNotFoundError("time entry", id.String())
}

func (m *mockBookingAPI) DeleteEntry(ctx context.Context, id domain.EntryID) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i := range m.entries {
		if m.entries[i].ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			m.deleted = append(m.deleted, id)
			return nil
		}
	}
	return errors.NewNotFoundError("time entry", id.String())
}

func (m *mockBookingAPI) ListEntries(ctx context.Context, query string) ([]domain.DateGroup, error) {
	m.lastQuery = query
	if m.listErr != nil {
		return nil, m.listErr
	}
	return domain.GroupByDate(domain.FilterEntries(m.entries, query), domain.DefaultGroupHeaderPrefix), nil
}

func (m *mockBookingAPI) ListReferences(ctx context.Context) (*api.ReferenceData, error) {
	data := m.references
	return &data, nil
}

func (m *mockBookingAPI) AddReference(ctx context.Context, kind api.ReferenceKind, ref domain.Reference) error {
	switch kind {
	case api.ReferenceProject:
		m.references.Projects = append(m.references.Projects, ref)
	case api.ReferenceAccounting:
		m.references.Accountings = append(m.references.Accountings, ref)
	}
	return nil
}

func (m *mockBookingAPI) Session(ctx context.Context) (services.BookingService, error) {
	return nil, errors.NewInvalidInputError("session", nil, "not available in the mock")
}

func (m *mockBookingAPI) Close() error {
	m.closed = true
	return nil
}

func entryFromRequest(req api.EntryRequest) domain.TimeEntry {
	start := testNow
	if req.Start != nil {
		start = *req.Start
	}
	end := start.Add(30 * time.Minute)
	if req.End != nil {
		end = *req.End
	}
	var text string
	if req.ShortText != nil {
		text = *req.ShortText
	}
	entry := domain.NewTimeEntry(start, end, text)
	if req.ProjectID != nil {
		entry.ProjectID = *req.ProjectID
		entry.ProjectName = *req.ProjectID
	}
	if req.AccountingID != nil {
		entry.AccountingID = *req.AccountingID
		entry.AccountingName = *req.AccountingID
	}
	return entry
}

var testNow = time.Date(2024, 5, 2, 8, 30, 0, 0, time.Local)

func sampleEntry(id string, start time.Time, minutes int, text, project string) domain.TimeEntry {
	entry := domain.NewTimeEntry(start, start.Add(time.Duration(minutes)*time.Minute), text)
	entry.ID = domain.EntryID(id)
	entry.ProjectID = project
	entry.ProjectName = project
	entry.AccountingID = "ACC-1"
	entry.AccountingName = "Development"
	return entry
}

// setupTestApp returns an App backed by the mock with captured output
func setupTestApp(t *testing.T, mock *mockBookingAPI) (*App, *bytes.Buffer) {
	t.Helper()

	orig := timeNow
	timeNow = func() time.Time { return testNow }
	t.Cleanup(func() { timeNow = orig })

	out := &bytes.Buffer{}
	app := NewApp(mock, config.NewConfig(), WithIO(strings.NewReader(""), out))
	return app, out
}
