package domain

import (
	"timebookings/internal/repository/sqlite"
)

// TimeEntryMapper handles conversion between domain and database TimeEntry models.
type TimeEntryMapper struct{}

// NewTimeEntryMapper creates a new TimeEntryMapper instance.
func NewTimeEntryMapper() *TimeEntryMapper {
	return &TimeEntryMapper{}
}

// ToDatabase converts a domain TimeEntry to a database TimeEntry.
func (m *TimeEntryMapper) ToDatabase(domainEntry TimeEntry) sqlite.TimeEntry {
	return sqlite.TimeEntry{
		ID:             string(domainEntry.ID),
		StartTime:      domainEntry.Start,
		EndTime:        domainEntry.End,
		Duration:       domainEntry.Duration,
		ShortText:      domainEntry.ShortText,
		ProjectID:      domainEntry.ProjectID,
		ProjectName:    domainEntry.ProjectName,
		AccountingID:   domainEntry.AccountingID,
		AccountingName: domainEntry.AccountingName,
		EntryDate:      domainEntry.Date,
	}
}

// FromDatabase converts a database TimeEntry to a domain TimeEntry.
func (m *TimeEntryMapper) FromDatabase(dbEntry sqlite.TimeEntry) TimeEntry {
	return TimeEntry{
		ID:             EntryID(dbEntry.ID),
		Start:          dbEntry.StartTime,
		End:            dbEntry.EndTime,
		Duration:       dbEntry.Duration,
		ShortText:      dbEntry.ShortText,
		ProjectID:      dbEntry.ProjectID,
		ProjectName:    dbEntry.ProjectName,
		AccountingID:   dbEntry.AccountingID,
		AccountingName: dbEntry.AccountingName,
		Date:           dbEntry.EntryDate,
	}
}

// FromDatabaseSlice converts a slice of database TimeEntries to domain TimeEntries.
func (m *TimeEntryMapper) FromDatabaseSlice(dbEntries []*sqlite.TimeEntry) []TimeEntry {
	domainEntries := make([]TimeEntry, len(dbEntries))
	for i, entry := range dbEntries {
		domainEntries[i] = m.FromDatabase(*entry)
	}
	return domainEntries
}

// ReferenceMapper handles conversion between domain references and reference rows.
type ReferenceMapper struct{}

// NewReferenceMapper creates a new ReferenceMapper instance.
func NewReferenceMapper() *ReferenceMapper {
	return &ReferenceMapper{}
}

// ToDatabase converts a domain Reference of the given kind to a database row.
func (m *ReferenceMapper) ToDatabase(kind sqlite.ReferenceKind, ref Reference) sqlite.Reference {
	return sqlite.Reference{
		Kind: kind,
		ID:   ref.ID,
		Name: ref.Name,
	}
}

// FromDatabaseSlice converts reference rows to a lookup list.
func (m *ReferenceMapper) FromDatabaseSlice(rows []*sqlite.Reference) ReferenceList {
	list := make(ReferenceList, len(rows))
	for i, row := range rows {
		list[i] = Reference{ID: row.ID, Name: row.Name}
	}
	return list
}

// Mapper provides a unified interface for all mapping operations.
type Mapper struct {
	TimeEntry *TimeEntryMapper
	Reference *ReferenceMapper
}

// NewMapper creates a new Mapper instance with all sub-mappers.
func NewMapper() *Mapper {
	return &Mapper{
		TimeEntry: NewTimeEntryMapper(),
		Reference: NewReferenceMapper(),
	}
}
