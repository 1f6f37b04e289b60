package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"timebookings/internal/errors"
	"timebookings/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Repository defines the interface for database operations
type Repository interface {
	// Time entries
	CreateTimeEntry(ctx context.Context, entry *TimeEntry) error
	ListTimeEntries(ctx context.Context) ([]*TimeEntry, error)
	UpdateTimeEntry(ctx context.Context, entry *TimeEntry) error
	DeleteTimeEntry(ctx context.Context, id string) error

	// Reference data
	ListReferences(ctx context.Context, kind ReferenceKind) ([]*Reference, error)
	UpsertReference(ctx context.Context, ref *Reference) error

	// Utility
	Close() error
}

// Option configures a SQLiteRepository
type Option func(*SQLiteRepository)

// WithQueryTimeout bounds every read query
func WithQueryTimeout(d time.Duration) Option {
	return func(r *SQLiteRepository) { r.queryTimeout = d }
}

// WithWriteTimeout bounds every write statement
func WithWriteTimeout(d time.Duration) Option {
	return func(r *SQLiteRepository) { r.writeTimeout = d }
}

// SQLiteRepository implements the Repository interface
type SQLiteRepository struct {
	db           *sql.DB
	queryTimeout time.Duration
	writeTimeout time.Duration
	newID        func() string
}

// New opens the database at dbPath and brings its schema up to date
func New(ctx context.Context, dbPath string, opts ...Option) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewPersistenceError("open database", err)
	}
	// A single connection keeps ":memory:" databases alive and serialises writers.
	db.SetMaxOpenConns(1)

	if err := migrations.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, errors.NewPersistenceError("run migrations", err)
	}

	return NewFromDB(db, opts...), nil
}

// NewFromDB wraps an already migrated connection
func NewFromDB(db *sql.DB, opts ...Option) *SQLiteRepository {
	r := &SQLiteRepository{
		db:    db,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) readContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.queryTimeout > 0 {
		return context.WithTimeout(ctx, r.queryTimeout)
	}
	return context.WithCancel(ctx)
}

func (r *SQLiteRepository) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.writeTimeout > 0 {
		return context.WithTimeout(ctx, r.writeTimeout)
	}
	return context.WithCancel(ctx)
}

const timeEntryColumns = `seq, id, start_time, end_time, duration, short_text,
	project_id, project_name, accounting_id, accounting_name, entry_date`

// CreateTimeEntry inserts a new time entry, assigning its ID and Seq
func (r *SQLiteRepository) CreateTimeEntry(ctx context.Context, entry *TimeEntry) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	if entry.ID == "" {
		entry.ID = r.newID()
	}

	query := `
	INSERT INTO time_entries (id, start_time, end_time, duration, short_text,
		project_id, project_name, accounting_id, accounting_name, entry_date)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	seq, err := ExecuteWithLastInsertID(ctx, r.db, query,
		entry.ID,
		FormatTimeForDB(entry.StartTime),
		FormatTimeForDB(entry.EndTime),
		entry.Duration,
		entry.ShortText,
		entry.ProjectID,
		entry.ProjectName,
		entry.AccountingID,
		entry.AccountingName,
		entry.EntryDate,
	)
	if err != nil {
		return err
	}

	entry.Seq = seq
	return nil
}

// ListTimeEntries retrieves all time entries, newest first
func (r *SQLiteRepository) ListTimeEntries(ctx context.Context) ([]*TimeEntry, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	query := `SELECT ` + timeEntryColumns + ` FROM time_entries ORDER BY seq DESC`
	return QueryMultiple(ctx, r.db, query, ScanTimeEntries, "time entries")
}

// UpdateTimeEntry patches an existing time entry in place; Seq is left untouched
func (r *SQLiteRepository) UpdateTimeEntry(ctx context.Context, entry *TimeEntry) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	query := `
	UPDATE time_entries
	SET start_time = ?, end_time = ?, duration = ?, short_text = ?,
		project_id = ?, project_name = ?, accounting_id = ?, accounting_name = ?, entry_date = ?
	WHERE id = ?`

	return ExecuteWithRowsAffected(ctx, r.db, query, "time entry", entry.ID,
		FormatTimeForDB(entry.StartTime),
		FormatTimeForDB(entry.EndTime),
		entry.Duration,
		entry.ShortText,
		entry.ProjectID,
		entry.ProjectName,
		entry.AccountingID,
		entry.AccountingName,
		entry.EntryDate,
		entry.ID,
	)
}

// DeleteTimeEntry deletes a time entry by ID
func (r *SQLiteRepository) DeleteTimeEntry(ctx context.Context, id string) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	query := `DELETE FROM time_entries WHERE id = ?`
	return ExecuteWithRowsAffected(ctx, r.db, query, "time entry", id, id)
}

// ListReferences returns the lookup list of the given kind ordered by name
func (r *SQLiteRepository) ListReferences(ctx context.Context, kind ReferenceKind) ([]*Reference, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	query := `SELECT kind, id, name FROM reference_data WHERE kind = ? ORDER BY name ASC`
	return QueryMultiple(ctx, r.db, query, ScanReferences, string(kind)+" references", string(kind))
}

// UpsertReference inserts a reference or renames an existing one
func (r *SQLiteRepository) UpsertReference(ctx context.Context, ref *Reference) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	query := `
	INSERT INTO reference_data (kind, id, name) VALUES (?, ?, ?)
	ON CONFLICT (kind, id) DO UPDATE SET name = excluded.name`

	if _, err := r.db.ExecContext(ctx, query, string(ref.Kind), ref.ID, ref.Name); err != nil {
		return HandleDatabaseError("upsert reference", err)
	}
	return nil
}
