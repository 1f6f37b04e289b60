// Package storage defines the persistence contract the booking services
// depend on, and adapts the sqlite repository to it.
package storage

import (
	"context"

	"timebookings/internal/domain"
)

// EntryStore persists time entries. List returns newest first.
type EntryStore interface {
	Create(ctx context.Context, entry domain.TimeEntry) (domain.EntryID, error)
	Update(ctx context.Context, id domain.EntryID, entry domain.TimeEntry) error
	Delete(ctx context.Context, id domain.EntryID) error
	List(ctx context.Context) ([]domain.TimeEntry, error)
}

// ReferenceSource provides the project and accounting lookup lists.
type ReferenceSource interface {
	Projects(ctx context.Context) (domain.ReferenceList, error)
	Accountings(ctx context.Context) (domain.ReferenceList, error)
}

// ReferenceWriter is implemented by backends whose lookup lists are
// maintained locally.
type ReferenceWriter interface {
	AddProject(ctx context.Context, ref domain.Reference) error
	AddAccounting(ctx context.Context, ref domain.Reference) error
}

// Backend is a complete persistence collaborator.
type Backend interface {
	EntryStore
	ReferenceSource
	Close() error
}
