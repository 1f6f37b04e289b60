package storage

import (
	"context"

	"timebookings/internal/domain"
	"timebookings/internal/repository/sqlite"
)

// SQLiteBackend adapts a sqlite.Repository to the Backend contract.
type SQLiteBackend struct {
	repo   sqlite.Repository
	mapper *domain.Mapper
}

// NewSQLiteBackend wraps repo
func NewSQLiteBackend(repo sqlite.Repository) *SQLiteBackend {
	return &SQLiteBackend{
		repo:   repo,
		mapper: domain.NewMapper(),
	}
}

func (b *SQLiteBackend) Create(ctx context.Context, entry domain.TimeEntry) (domain.EntryID, error) {
	row := b.mapper.TimeEntry.ToDatabase(entry)
	if err := b.repo.CreateTimeEntry(ctx, &row); err != nil {
		return "", err
	}
	return domain.EntryID(row.ID), nil
}

func (b *SQLiteBackend) Update(ctx context.Context, id domain.EntryID, entry domain.TimeEntry) error {
	entry.ID = id
	row := b.mapper.TimeEntry.ToDatabase(entry)
	return b.repo.UpdateTimeEntry(ctx, &row)
}

func (b *SQLiteBackend) Delete(ctx context.Context, id domain.EntryID) error {
	return b.repo.DeleteTimeEntry(ctx, id.String())
}

func (b *SQLiteBackend) List(ctx context.Context) ([]domain.TimeEntry, error) {
	rows, err := b.repo.ListTimeEntries(ctx)
	if err != nil {
		return nil, err
	}
	return b.mapper.TimeEntry.FromDatabaseSlice(rows), nil
}

func (b *SQLiteBackend) Projects(ctx context.Context) (domain.ReferenceList, error) {
	return b.references(ctx, sqlite.ReferenceKindProject)
}

func (b *SQLiteBackend) Accountings(ctx context.Context) (domain.ReferenceList, error) {
	return b.references(ctx, sqlite.ReferenceKindAccounting)
}

func (b *SQLiteBackend) references(ctx context.Context, kind sqlite.ReferenceKind) (domain.ReferenceList, error) {
	rows, err := b.repo.ListReferences(ctx, kind)
	if err != nil {
		return nil, err
	}
	return b.mapper.Reference.FromDatabaseSlice(rows), nil
}

func (b *SQLiteBackend) AddProject(ctx context.Context, ref domain.Reference) error {
	row := b.mapper.Reference.ToDatabase(sqlite.ReferenceKindProject, ref)
	return b.repo.UpsertReference(ctx, &row)
}

func (b *SQLiteBackend) AddAccounting(ctx context.Context, ref domain.Reference) error {
	row := b.mapper.Reference.ToDatabase(sqlite.ReferenceKindAccounting, ref)
	return b.repo.UpsertReference(ctx, &row)
}

func (b *SQLiteBackend) Close() error {
	return b.repo.Close()
}

var (
	_ Backend         = (*SQLiteBackend)(nil)
	_ ReferenceWriter = (*SQLiteBackend)(nil)
)
