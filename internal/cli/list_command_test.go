package cli

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timebookings/internal/domain"
)

func TestListCommand_Execute(t *testing.T) {
	yesterday := testNow.Add(-24 * time.Hour)
	entries := []domain.TimeEntry{
		sampleEntry("e3", testNow, 45, "Standup", "P-100"),
		sampleEntry("e2", testNow, 90, "Code review", "P-200"),
		sampleEntry("e1", yesterday, 30, "Standup notes", "P-100"),
	}

	t.Run("prints entries under date headers", func(t *testing.T) {
		mock := newMockBookingAPI(entries...)
		app, out := setupTestApp(t, mock)

		err := NewListCommand(app).Execute(context.Background(), nil)

		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 5)
		assert.Equal(t, "Date: "+domain.CalendarDate(testNow), lines[0])
		assert.Contains(t, lines[1], "e3")
		assert.Contains(t, lines[1], "45m")
		assert.Contains(t, lines[2], "e2")
		assert.Contains(t, lines[2], "1h 30m")
		assert.Contains(t, lines[2], "P-200 / Development  Code review")
		assert.Equal(t, "Date: "+domain.CalendarDate(yesterday), lines[3])
		assert.Contains(t, lines[4], "e1")
	})

	t.Run("joins arguments into one query", func(t *testing.T) {
		mock := newMockBookingAPI(entries...)
		app, out := setupTestApp(t, mock)

		err := NewListCommand(app).Execute(context.Background(), []string{"code", "review"})

		require.NoError(t, err)
		assert.Equal(t, "code review", mock.lastQuery)
		assert.Contains(t, out.String(), "e2")
		assert.NotContains(t, out.String(), "e1")
	})

	t.Run("reports no entries", func(t *testing.T) {
		app, out := setupTestApp(t, newMockBookingAPI())

		err := NewListCommand(app).Execute(context.Background(), []string{"nothing"})

		require.NoError(t, err)
		assert.Equal(t, "No entries found\n", out.String())
	})

	t.Run("wraps backend failures", func(t *testing.T) {
		mock := newMockBookingAPI()
		mock.listErr = stderrors.New("connection reset")
		app, _ := setupTestApp(t, mock)

		err := NewListCommand(app).Execute(context.Background(), nil)

		require.Error(t, err)
		assert.Equal(t, "failed to list entries: connection reset", err.Error())
	})
}

func TestDeleteCommand_Execute(t *testing.T) {
	t.Run("deletes the entry", func(t *testing.T) {
		mock := newMockBookingAPI(sampleEntry("e1", testNow, 30, "Standup", "P-100"))
		app, out := setupTestApp(t, mock)

		err := NewDeleteCommand(app).Execute(context.Background(), []string{"e1"})

		require.NoError(t, err)
		assert.Equal(t, []domain.EntryID{"e1"}, mock.deleted)
		assert.Equal(t, "Deleted entry e1\n", out.String())
	})

	t.Run("reports a missing entry", func(t *testing.T) {
		app, _ := setupTestApp(t, newMockBookingAPI())

		err := NewDeleteCommand(app).Execute(context.Background(), []string{"ghost"})

		require.Error(t, err)
		assert.Equal(t, "failed to delete entry: time entry not found: ghost", err.Error())
	})

	t.Run("requires exactly one id", func(t *testing.T) {
		app, _ := setupTestApp(t, newMockBookingAPI())

		err := NewDeleteCommand(app).Execute(context.Background(), []string{"a", "b"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "usage: tb delete <id>")
	})
}
