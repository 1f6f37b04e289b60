package sqlite

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "timebookings/internal/errors"
)

func setupTestDB(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := New(context.Background(), ":memory:",
		WithQueryTimeout(5*time.Second), WithWriteTimeout(5*time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleEntry(text string, start time.Time) *TimeEntry {
	return &TimeEntry{
		StartTime:      start,
		EndTime:        start.Add(90 * time.Minute),
		Duration:       "1h 30min",
		ShortText:      text,
		ProjectID:      "P1",
		ProjectName:    "Alpha",
		AccountingID:   "A1",
		AccountingName: "Development",
		EntryDate:      start.UTC().Format("2006-01-02"),
	}
}

func TestTimeEntryCRUD(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	entry := sampleEntry("Write report", start)
	require.NoError(t, repo.CreateTimeEntry(ctx, entry))
	assert.NotEmpty(t, entry.ID)
	assert.Greater(t, entry.Seq, int64(0))

	got := findEntry(t, repo, entry.ID)
	assert.Equal(t, entry.ShortText, got.ShortText)
	assert.True(t, start.Equal(got.StartTime))
	assert.True(t, entry.EndTime.Equal(got.EndTime))
	assert.Equal(t, "2024-01-15", got.EntryDate)

	got.ShortText = "Write longer report"
	got.AccountingID = "A2"
	require.NoError(t, repo.UpdateTimeEntry(ctx, got))

	updated := findEntry(t, repo, entry.ID)
	assert.Equal(t, "Write longer report", updated.ShortText)
	assert.Equal(t, "A2", updated.AccountingID)
	assert.Equal(t, entry.Seq, updated.Seq)

	require.NoError(t, repo.DeleteTimeEntry(ctx, entry.ID))
	entries, err := repo.ListTimeEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
	err = repo.UpdateTimeEntry(ctx, updated)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
}

func findEntry(t *testing.T, repo *SQLiteRepository, id string) *TimeEntry {
	t.Helper()
	entries, err := repo.ListTimeEntries(context.Background())
	require.NoError(t, err)
	for _, e := range entries {
		if e.ID == id {
			return e
		}
	}
	t.Fatalf("entry %s not listed", id)
	return nil
}

func TestCreateTimeEntry_KeepsProvidedID(t *testing.T) {
	repo := setupTestDB(t)
	entry := sampleEntry("Imported entry", time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))
	entry.ID = "fixed-id"

	require.NoError(t, repo.CreateTimeEntry(context.Background(), entry))

	assert.Equal(t, "fixed-id", entry.ID)
}

func TestCreateTimeEntry_DuplicateID(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	first := sampleEntry("First entry", start)
	first.ID = "dup"
	require.NoError(t, repo.CreateTimeEntry(ctx, first))

	second := sampleEntry("Second entry", start)
	second.ID = "dup"
	err := repo.CreateTimeEntry(ctx, second)

	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypePersistence))
}

func TestListTimeEntries_NewestFirst(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	// Insertion order wins over start time.
	texts := []string{"oldest insert", "middle insert", "newest insert"}
	starts := []time.Time{
		time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
	}
	for i := range texts {
		require.NoError(t, repo.CreateTimeEntry(ctx, sampleEntry(texts[i], starts[i])))
	}

	entries, err := repo.ListTimeEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "newest insert", entries[0].ShortText)
	assert.Equal(t, "middle insert", entries[1].ShortText)
	assert.Equal(t, "oldest insert", entries[2].ShortText)
}

func TestListTimeEntries_Empty(t *testing.T) {
	repo := setupTestDB(t)

	entries, err := repo.ListTimeEntries(context.Background())

	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpdateAndDeleteMissingEntry(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	missing := sampleEntry("Does not exist", time.Now())
	missing.ID = "missing"

	err := repo.UpdateTimeEntry(ctx, missing)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	err = repo.DeleteTimeEntry(ctx, "missing")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
}

func TestReferences(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertReference(ctx, &Reference{Kind: ReferenceKindProject, ID: "P2", Name: "Beta"}))
	require.NoError(t, repo.UpsertReference(ctx, &Reference{Kind: ReferenceKindProject, ID: "P1", Name: "Alpha"}))
	require.NoError(t, repo.UpsertReference(ctx, &Reference{Kind: ReferenceKindAccounting, ID: "A1", Name: "Development"}))

	projects, err := repo.ListReferences(ctx, ReferenceKindProject)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "Alpha", projects[0].Name)
	assert.Equal(t, "Beta", projects[1].Name)

	// Same key renames rather than duplicates.
	require.NoError(t, repo.UpsertReference(ctx, &Reference{Kind: ReferenceKindProject, ID: "P2", Name: "Gamma"}))
	projects, err = repo.ListReferences(ctx, ReferenceKindProject)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "Gamma", projects[1].Name)

	accounting, err := repo.ListReferences(ctx, ReferenceKindAccounting)
	require.NoError(t, err)
	assert.Equal(t, []*Reference{{Kind: ReferenceKindAccounting, ID: "A1", Name: "Development"}}, accounting)
}

func TestRepository_DriverFailures(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	repo := NewFromDB(db)
	repo.newID = func() string { return "generated" }
	defer repo.Close()
	ctx := context.Background()

	t.Run("insert failure", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO time_entries")).
			WithArgs("generated", sqlmock.AnyArg(), sqlmock.AnyArg(), "1h 30min", "Write report",
				"P1", "Alpha", "A1", "Development", "2024-01-15").
			WillReturnError(errors.New("database is locked"))

		entry := sampleEntry("Write report", time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))
		err := repo.CreateTimeEntry(ctx, entry)

		require.Error(t, err)
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypePersistence))
		assert.Contains(t, err.Error(), "database is locked")
		assert.Zero(t, entry.Seq)
	})

	t.Run("list failure", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM time_entries ORDER BY seq DESC")).
			WillReturnError(errors.New("disk I/O error"))

		entries, err := repo.ListTimeEntries(ctx)

		assert.Nil(t, entries)
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypePersistence))
	})

	t.Run("upsert failure", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reference_data")).
			WithArgs("accounting", "A1", "Development").
			WillReturnError(errors.New("readonly database"))

		err := repo.UpsertReference(ctx, &Reference{Kind: ReferenceKindAccounting, ID: "A1", Name: "Development"})

		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypePersistence))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_WriteTimeoutApplies(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	repo := NewFromDB(db, WithWriteTimeout(10*time.Millisecond))
	defer repo.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM time_entries")).
		WithArgs("abc").
		WillDelayFor(200 * time.Millisecond).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.DeleteTimeEntry(context.Background(), "abc")

	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypePersistence))
}
