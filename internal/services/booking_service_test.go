package services

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timebookings/internal/config"
	"timebookings/internal/domain"
	"timebookings/internal/errors"
	"timebookings/internal/logging"
	"timebookings/internal/timer"
)

var baseTime = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

type bookingFixture struct {
	backend *fakeBackend
	timer   *timerHarness
	service BookingService
}

func setupBookingService(t *testing.T, entries ...domain.TimeEntry) *bookingFixture {
	t.Helper()

	backend := newFakeBackend(entries...)
	backend.projects = domain.ReferenceList{
		{ID: "P1", Name: "Alpha"},
		{ID: "P2", Name: "Beta"},
	}
	backend.accountings = domain.ReferenceList{
		{ID: "A1", Name: "Development"},
	}

	harness := newTimerHarness(baseTime)
	logger := logging.Nop()
	refs := NewReferenceService(backend, logger)
	service := NewBookingService(backend, refs, config.NewConfig(), logger,
		WithClock(harness.clock.Now),
		WithTimerSession(harness.session),
	)
	require.NoError(t, service.Load(context.Background()))
	t.Cleanup(func() { service.Close() })

	return &bookingFixture{backend: backend, timer: harness, service: service}
}

func existingEntry(id string, start time.Time, text string) domain.TimeEntry {
	entry := domain.NewTimeEntry(start, start.Add(time.Hour), text)
	entry.ID = domain.EntryID(id)
	entry.ProjectID = "P1"
	entry.ProjectName = "Alpha"
	entry.AccountingID = "A1"
	entry.AccountingName = "Development"
	return entry
}

func fillValidDraft(t *testing.T, service BookingService) {
	t.Helper()
	_, err := service.UpdateField(domain.FieldShortText, "Code review")
	require.NoError(t, err)
	_, err = service.SetDraftAccounting("A1")
	require.NoError(t, err)
}

func assertErrorType(t *testing.T, err error, errorType errors.ErrorType) {
	t.Helper()
	require.Error(t, err)
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.True(t, appErr.IsType(errorType), "got %s", appErr.Type)
}

func TestBookingService_Load(t *testing.T) {
	t.Run("should load entries in backend order", func(t *testing.T) {
		f := setupBookingService(t,
			existingEntry("b", baseTime.Add(24*time.Hour), "newer"),
			existingEntry("a", baseTime, "older"),
		)

		entries := f.service.Entries()

		require.Len(t, entries, 2)
		assert.Equal(t, domain.EntryID("b"), entries[0].ID)
		assert.Equal(t, domain.EntryID("a"), entries[1].ID)
	})

	t.Run("should return persistence error when listing fails", func(t *testing.T) {
		f := setupBookingService(t)
		f.backend.listErr = stderrors.New("disk gone")

		err := f.service.Load(context.Background())

		assertErrorType(t, err, errors.ErrorTypePersistence)
		assert.Contains(t, err.Error(), "disk gone")
	})
}

func TestBookingService_BeginManualEntry(t *testing.T) {
	f := setupBookingService(t)
	_, err := f.service.SelectProject("P2")
	require.NoError(t, err)

	draft := f.service.BeginManualEntry()

	require.NotNil(t, draft.Start)
	require.NotNil(t, draft.End)
	assert.Equal(t, baseTime, *draft.Start)
	assert.Equal(t, baseTime.Add(30*time.Minute), *draft.End)
	assert.Equal(t, "P2", draft.ProjectID)
	assert.Equal(t, "Beta", draft.ProjectName)
	assert.Empty(t, draft.ShortText)
	assert.Nil(t, draft.EditTargetID)
	assert.Equal(t, ModeManual, f.service.Mode())
}

func TestBookingService_SubmitFull(t *testing.T) {
	t.Run("should prepend a new entry and reset the draft", func(t *testing.T) {
		f := setupBookingService(t, existingEntry("old", baseTime.Add(-24*time.Hour), "yesterday"))
		_, err := f.service.SelectProject("P1")
		require.NoError(t, err)
		f.service.BeginManualEntry()
		fillValidDraft(t, f.service)

		entry, err := f.service.SubmitFull(context.Background())

		require.NoError(t, err)
		assert.Equal(t, domain.EntryID("id-1"), entry.ID)
		assert.Equal(t, "30m", entry.Duration)
		assert.Equal(t, "2024-03-15", entry.Date)
		assert.Equal(t, "Development", entry.AccountingName)

		entries := f.service.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, entry, entries[0])
		assert.Equal(t, domain.EntryID("old"), entries[1].ID)
		assert.True(t, f.service.Draft().IsEmpty())
		assert.Equal(t, ModeNone, f.service.Mode())
	})

	t.Run("should patch an edited entry in place", func(t *testing.T) {
		f := setupBookingService(t,
			existingEntry("x", baseTime.Add(time.Hour), "first"),
			existingEntry("y", baseTime, "second"),
			existingEntry("z", baseTime.Add(-time.Hour), "third"),
		)
		_, err := f.service.BeginEdit("y")
		require.NoError(t, err)
		_, err = f.service.UpdateField(domain.FieldShortText, "second, revised")
		require.NoError(t, err)
		_, err = f.service.UpdateField(domain.FieldEnd, baseTime.Add(90*time.Minute))
		require.NoError(t, err)

		entry, err := f.service.SubmitFull(context.Background())

		require.NoError(t, err)
		assert.Equal(t, domain.EntryID("y"), entry.ID)
		assert.Equal(t, "1h 30m", entry.Duration)

		entries := f.service.Entries()
		require.Len(t, entries, 3)
		assert.Equal(t, []domain.EntryID{"x", "y", "z"}, []domain.EntryID{entries[0].ID, entries[1].ID, entries[2].ID})
		assert.Equal(t, "second, revised", entries[1].ShortText)
		assert.Equal(t, 1, f.backend.updates)
		assert.Equal(t, 0, f.backend.creates)
	})

	t.Run("should reject a draft failing the full gate", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(t *testing.T, s BookingService)
			field  string
		}{
			{
				name: "short text under five characters",
				mutate: func(t *testing.T, s BookingService) {
					_, err := s.UpdateField(domain.FieldShortText, "abcd")
					require.NoError(t, err)
				},
				field: "shortText",
			},
			{
				name: "missing accounting",
				mutate: func(t *testing.T, s BookingService) {
					_, err := s.UpdateField(domain.FieldAccountingID, "")
					require.NoError(t, err)
				},
				field: "accountingId",
			},
			{
				name: "missing project",
				mutate: func(t *testing.T, s BookingService) {
					_, err := s.UpdateField(domain.FieldProjectID, "")
					require.NoError(t, err)
				},
				field: "projectId",
			},
			{
				name: "missing start",
				mutate: func(t *testing.T, s BookingService) {
					_, err := s.UpdateField(domain.FieldStart, nil)
					require.NoError(t, err)
				},
				field: "start",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := setupBookingService(t)
				_, err := f.service.SelectProject("P1")
				require.NoError(t, err)
				f.service.BeginManualEntry()
				fillValidDraft(t, f.service)
				tt.mutate(t, f.service)
				before := f.service.Draft()

				assert.False(t, f.service.CanFullSave())
				_, err = f.service.SubmitFull(context.Background())

				assertErrorType(t, err, errors.ErrorTypeValidation)
				appErr, _ := errors.AsAppError(err)
				fields, ok := appErr.GetContext("fields")
				require.True(t, ok)
				assert.Contains(t, fields, tt.field)
				assert.Equal(t, before, f.service.Draft())
				assert.Empty(t, f.service.Entries())
				assert.Equal(t, 0, f.backend.creates)
			})
		}
	})

	t.Run("should keep draft and collection when the backend fails", func(t *testing.T) {
		f := setupBookingService(t)
		f.backend.createErr = stderrors.New("connection refused")
		_, err := f.service.SelectProject("P1")
		require.NoError(t, err)
		f.service.BeginManualEntry()
		fillValidDraft(t, f.service)
		before := f.service.Draft()

		_, err = f.service.SubmitFull(context.Background())

		assertErrorType(t, err, errors.ErrorTypePersistence)
		assert.Equal(t, "Error while saving: connection refused", errors.GetUserMessage(err))
		assert.Equal(t, before, f.service.Draft())
		assert.Equal(t, ModeManual, f.service.Mode())
		assert.Empty(t, f.service.Entries())
	})

	t.Run("should fail without an open draft", func(t *testing.T) {
		f := setupBookingService(t)

		_, err := f.service.SubmitFull(context.Background())

		assertErrorType(t, err, errors.ErrorTypeValidation)
	})
}

func TestBookingService_BeginEdit_NotFound(t *testing.T) {
	f := setupBookingService(t)

	_, err := f.service.BeginEdit("missing")

	assertErrorType(t, err, errors.ErrorTypeNotFound)
	assert.Equal(t, ModeNone, f.service.Mode())
}

func TestBookingService_UpdateField(t *testing.T) {
	t.Run("should require an open draft", func(t *testing.T) {
		f := setupBookingService(t)

		_, err := f.service.UpdateField(domain.FieldShortText, "text")

		assertErrorType(t, err, errors.ErrorTypeValidation)
	})

	t.Run("should not recompute derived values", func(t *testing.T) {
		f := setupBookingService(t)
		draft := f.service.BeginManualEntry()

		updated, err := f.service.UpdateField(domain.FieldStart, baseTime.Add(2*time.Hour))

		require.NoError(t, err)
		assert.Equal(t, *draft.End, *updated.End)
		assert.Equal(t, baseTime.Add(2*time.Hour), *updated.Start)
	})

	t.Run("should reject a value of the wrong type", func(t *testing.T) {
		f := setupBookingService(t)
		f.service.BeginManualEntry()

		_, err := f.service.UpdateField(domain.FieldShortText, 42)

		assertErrorType(t, err, errors.ErrorTypeInvalidInput)
	})
}

func TestBookingService_SelectProject(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		expected  Selection
		errorType *errors.ErrorType
	}{
		{name: "known project", id: "P1", expected: Selection{ProjectID: "P1", ProjectName: "Alpha"}},
		{name: "empty id clears selection", id: "", expected: Selection{}},
		{name: "unknown project", id: "P9", errorType: errorTypePtr(errors.ErrorTypeNotFound)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupBookingService(t)

			selection, err := f.service.SelectProject(tt.id)

			if tt.errorType != nil {
				assertErrorType(t, err, *tt.errorType)
				assert.True(t, f.service.Selection().IsEmpty())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, selection)
			assert.Equal(t, tt.expected, f.service.Selection())
		})
	}
}

func TestBookingService_SetDraftAccounting_EmptyLookup(t *testing.T) {
	f := setupBookingService(t)
	f.backend.accountings = nil
	require.NoError(t, f.service.Load(context.Background()))
	f.service.BeginManualEntry()

	draft, err := f.service.SetDraftAccounting("ACC-7")

	require.NoError(t, err)
	assert.Equal(t, "ACC-7", draft.AccountingID)
	assert.Equal(t, "ACC-7", draft.AccountingName)
}

func TestBookingService_Timer(t *testing.T) {
	t.Run("should refuse to start without a selected project", func(t *testing.T) {
		f := setupBookingService(t)

		err := f.service.StartTimer()

		assertErrorType(t, err, errors.ErrorTypeNoProjectSelected)
		assert.Equal(t, timer.Idle, f.service.Timer().State)
	})

	t.Run("should open a quick draft spanning the timed interval", func(t *testing.T) {
		f := setupBookingService(t)
		_, err := f.service.SelectProject("P1")
		require.NoError(t, err)
		require.NoError(t, f.service.StartTimer())
		f.timer.clock.Advance(45 * time.Minute)

		draft, err := f.service.StopTimer()

		require.NoError(t, err)
		assert.Equal(t, ModeQuick, f.service.Mode())
		assert.Equal(t, baseTime, *draft.Start)
		assert.Equal(t, baseTime.Add(45*time.Minute), *draft.End)
		assert.Equal(t, "P1", draft.ProjectID)
		assert.Equal(t, "Alpha", draft.ProjectName)
		assert.Equal(t, timer.Idle, f.service.Timer().State)
	})

	t.Run("should reject a second start", func(t *testing.T) {
		f := setupBookingService(t)
		_, err := f.service.SelectProject("P1")
		require.NoError(t, err)
		require.NoError(t, f.service.StartTimer())

		err = f.service.StartTimer()

		assert.ErrorIs(t, err, timer.ErrAlreadyRunning)
	})

	t.Run("should reject stop while idle", func(t *testing.T) {
		f := setupBookingService(t)

		_, err := f.service.StopTimer()

		assert.ErrorIs(t, err, timer.ErrNotRunning)
		assert.Equal(t, ModeNone, f.service.Mode())
	})
}

func runTimerToQuickDraft(t *testing.T, f *bookingFixture) {
	t.Helper()
	_, err := f.service.SelectProject("P1")
	require.NoError(t, err)
	require.NoError(t, f.service.StartTimer())
	f.timer.tick()
	f.timer.tick()
	require.Eventually(t, func() bool { return f.service.Timer().ElapsedSeconds == 2 }, time.Second, time.Millisecond)
	f.timer.clock.Advance(20 * time.Minute)
	_, err = f.service.StopTimer()
	require.NoError(t, err)
}

func TestBookingService_SubmitQuick(t *testing.T) {
	t.Run("should commit with one character and reset the timer", func(t *testing.T) {
		f := setupBookingService(t)
		runTimerToQuickDraft(t, f)
		_, err := f.service.UpdateField(domain.FieldShortText, "x")
		require.NoError(t, err)
		_, err = f.service.SetDraftAccounting("A1")
		require.NoError(t, err)
		require.True(t, f.service.CanQuickSave())
		assert.False(t, f.service.CanFullSave())

		entry, err := f.service.SubmitQuick(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "20m", entry.Duration)
		assert.Equal(t, "x", entry.ShortText)
		assert.Equal(t, 0, f.service.Timer().ElapsedSeconds)
		assert.Equal(t, ModeNone, f.service.Mode())
		assert.Equal(t, entry, f.service.Entries()[0])
	})

	t.Run("should reject whitespace-only text without touching the timer", func(t *testing.T) {
		f := setupBookingService(t)
		runTimerToQuickDraft(t, f)
		_, err := f.service.UpdateField(domain.FieldShortText, "   ")
		require.NoError(t, err)
		_, err = f.service.SetDraftAccounting("A1")
		require.NoError(t, err)

		_, err = f.service.SubmitQuick(context.Background())

		assertErrorType(t, err, errors.ErrorTypeValidation)
		assert.Equal(t, 2, f.service.Timer().ElapsedSeconds)
		assert.Equal(t, ModeQuick, f.service.Mode())
	})

	t.Run("should reset elapsed but keep the draft when the backend fails", func(t *testing.T) {
		f := setupBookingService(t)
		f.backend.createErr = stderrors.New("timeout")
		runTimerToQuickDraft(t, f)
		fillValidDraft(t, f.service)
		before := f.service.Draft()

		_, err := f.service.SubmitQuick(context.Background())

		assertErrorType(t, err, errors.ErrorTypePersistence)
		assert.Equal(t, 0, f.service.Timer().ElapsedSeconds)
		assert.Equal(t, before, f.service.Draft())
		assert.Equal(t, ModeQuick, f.service.Mode())
		assert.Empty(t, f.service.Entries())
	})

	t.Run("should fail outside quick mode", func(t *testing.T) {
		f := setupBookingService(t)
		f.service.BeginManualEntry()

		_, err := f.service.SubmitQuick(context.Background())

		assertErrorType(t, err, errors.ErrorTypeValidation)
	})
}

func TestBookingService_RestartWithQuickDraftOpen(t *testing.T) {
	t.Run("should drop the quick draft when the timer starts again", func(t *testing.T) {
		f := setupBookingService(t)
		runTimerToQuickDraft(t, f)

		require.NoError(t, f.service.StartTimer())

		assert.Equal(t, ModeNone, f.service.Mode())
		assert.True(t, f.service.Draft().IsEmpty())
		assert.Equal(t, timer.Running, f.service.Timer().State)
		assert.Equal(t, 0, f.service.Timer().ElapsedSeconds)
	})

	t.Run("should keep counting the running timer through draft changes", func(t *testing.T) {
		f := setupBookingService(t)
		runTimerToQuickDraft(t, f)
		require.NoError(t, f.service.StartTimer())
		for i := 0; i < 3; i++ {
			f.timer.tick()
		}
		require.Eventually(t, func() bool { return f.service.Timer().ElapsedSeconds == 3 }, time.Second, time.Millisecond)

		f.service.BeginManualEntry()
		f.service.CancelDraft()
		_, err := f.service.SubmitQuick(context.Background())

		assertErrorType(t, err, errors.ErrorTypeValidation)
		snap := f.service.Timer()
		assert.Equal(t, timer.Running, snap.State)
		assert.Equal(t, 3, snap.ElapsedSeconds)
	})

	t.Run("should keep the quick draft when the restart is refused", func(t *testing.T) {
		f := setupBookingService(t)
		runTimerToQuickDraft(t, f)
		_, err := f.service.SelectProject("")
		require.NoError(t, err)

		err = f.service.StartTimer()

		assertErrorType(t, err, errors.ErrorTypeNoProjectSelected)
		assert.Equal(t, ModeQuick, f.service.Mode())
		assert.Equal(t, 2, f.service.Timer().ElapsedSeconds)
	})
}

func TestBookingService_CancelDraft(t *testing.T) {
	t.Run("should reset the timer when dropping a quick draft", func(t *testing.T) {
		f := setupBookingService(t)
		runTimerToQuickDraft(t, f)

		draft := f.service.CancelDraft()

		assert.True(t, draft.IsEmpty())
		assert.Equal(t, ModeNone, f.service.Mode())
		assert.Equal(t, 0, f.service.Timer().ElapsedSeconds)
	})

	t.Run("should discard a manual draft", func(t *testing.T) {
		f := setupBookingService(t)
		f.service.BeginManualEntry()

		f.service.CancelDraft()

		assert.True(t, f.service.Draft().IsEmpty())
		assert.Empty(t, f.service.Entries())
	})
}

func TestBookingService_Delete(t *testing.T) {
	t.Run("should remove the entry and drop a draft editing it", func(t *testing.T) {
		f := setupBookingService(t,
			existingEntry("a", baseTime, "keep"),
			existingEntry("b", baseTime, "remove"),
		)
		_, err := f.service.BeginEdit("b")
		require.NoError(t, err)

		require.NoError(t, f.service.Delete(context.Background(), "b"))

		entries := f.service.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, domain.EntryID("a"), entries[0].ID)
		assert.Equal(t, ModeNone, f.service.Mode())
	})

	t.Run("should pass through not found", func(t *testing.T) {
		f := setupBookingService(t)

		err := f.service.Delete(context.Background(), "ghost")

		assertErrorType(t, err, errors.ErrorTypeNotFound)
	})
}

func TestBookingService_GroupsAndSearch(t *testing.T) {
	day1 := baseTime
	day2 := baseTime.Add(-24 * time.Hour)
	f := setupBookingService(t,
		existingEntry("1", day1.Add(time.Hour), "Standup"),
		existingEntry("2", day1, "Planning"),
		existingEntry("3", day2, "standup notes"),
	)

	groups := f.service.Groups()

	require.Len(t, groups, 2)
	assert.Equal(t, "Date: 2024-03-15", groups[0].Header)
	assert.Len(t, groups[0].Entries, 2)
	assert.Equal(t, "Date: 2024-03-14", groups[1].Header)

	found := f.service.Search("STANDUP")
	require.Len(t, found, 2)
	assert.Equal(t, domain.EntryID("1"), found[0].ID)
	assert.Equal(t, domain.EntryID("3"), found[1].ID)
}

func errorTypePtr(et errors.ErrorType) *errors.ErrorType {
	return &et
}
