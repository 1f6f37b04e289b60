// Package jsonfile keeps time entries and reference data in flat JSON files.
package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"timebookings/internal/domain"
	"timebookings/internal/errors"
	"timebookings/internal/storage"
)

const (
	DefaultEntriesFile   = "entries.json"
	DefaultReferenceFile = "reference.json"
)

type entriesDocument struct {
	Entries []domain.TimeEntry `json:"entries"`
}

type referenceDocument struct {
	Projects    domain.ReferenceList `json:"projects"`
	Accountings domain.ReferenceList `json:"accountings"`
}

// Store is a file-backed persistence backend. All access is serialised by mu.
type Store struct {
	entriesPath   string
	referencePath string
	perm          os.FileMode
	newID         func() string
	mu            sync.Mutex
}

// Option configures a Store
type Option func(*Store)

// WithFiles overrides the entries and reference file names
func WithFiles(entriesFile, referenceFile string) Option {
	return func(s *Store) {
		dir := filepath.Dir(s.entriesPath)
		if entriesFile != "" {
			s.entriesPath = filepath.Join(dir, entriesFile)
		}
		if referenceFile != "" {
			s.referencePath = filepath.Join(dir, referenceFile)
		}
	}
}

// WithDirPermissions sets the mode used when creating the data directory
func WithDirPermissions(perm os.FileMode) Option {
	return func(s *Store) { s.perm = perm }
}

// New creates a Store rooted at baseDir, creating the directory if needed
func New(baseDir string, opts ...Option) (*Store, error) {
	s := &Store{
		entriesPath:   filepath.Join(baseDir, DefaultEntriesFile),
		referencePath: filepath.Join(baseDir, DefaultReferenceFile),
		perm:          0o755,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(baseDir, s.perm); err != nil {
		return nil, errors.NewPersistenceError("create data directory", err)
	}
	return s, nil
}

// Create prepends entry and returns its newly assigned ID
func (s *Store) Create(ctx context.Context, entry domain.TimeEntry) (domain.EntryID, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.NewPersistenceError("create entry", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadEntries()
	if err != nil {
		return "", err
	}

	entry.ID = domain.EntryID(s.newID())
	doc.Entries = append([]domain.TimeEntry{entry}, doc.Entries...)

	if err := writeJSON(s.entriesPath, doc); err != nil {
		return "", errors.NewPersistenceError("create entry", err)
	}
	return entry.ID, nil
}

// Update replaces the entry with the given id in place
func (s *Store) Update(ctx context.Context, id domain.EntryID, entry domain.TimeEntry) error {
	if err := ctx.Err(); err != nil {
		return errors.NewPersistenceError("update entry", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadEntries()
	if err != nil {
		return err
	}

	i := indexOf(doc.Entries, id)
	if i < 0 {
		return errors.NewNotFoundError("time entry", id.String())
	}
	entry.ID = id
	doc.Entries[i] = entry

	if err := writeJSON(s.entriesPath, doc); err != nil {
		return errors.NewPersistenceError("update entry", err)
	}
	return nil
}

// Delete removes the entry with the given id
func (s *Store) Delete(ctx context.Context, id domain.EntryID) error {
	if err := ctx.Err(); err != nil {
		return errors.NewPersistenceError("delete entry", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadEntries()
	if err != nil {
		return err
	}

	i := indexOf(doc.Entries, id)
	if i < 0 {
		return errors.NewNotFoundError("time entry", id.String())
	}
	doc.Entries = append(doc.Entries[:i], doc.Entries[i+1:]...)

	if err := writeJSON(s.entriesPath, doc); err != nil {
		return errors.NewPersistenceError("delete entry", err)
	}
	return nil
}

// List returns all entries in stored order, newest first
func (s *Store) List(ctx context.Context) ([]domain.TimeEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewPersistenceError("list entries", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadEntries()
	if err != nil {
		return nil, err
	}
	return doc.Entries, nil
}

func (s *Store) Projects(ctx context.Context) (domain.ReferenceList, error) {
	doc, err := s.references(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Projects, nil
}

func (s *Store) Accountings(ctx context.Context) (domain.ReferenceList, error) {
	doc, err := s.references(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Accountings, nil
}

func (s *Store) AddProject(ctx context.Context, ref domain.Reference) error {
	return s.addReference(ctx, func(doc *referenceDocument) {
		doc.Projects = upsert(doc.Projects, ref)
	})
}

func (s *Store) AddAccounting(ctx context.Context, ref domain.Reference) error {
	return s.addReference(ctx, func(doc *referenceDocument) {
		doc.Accountings = upsert(doc.Accountings, ref)
	})
}

// Close is a no-op; every write is flushed immediately.
func (s *Store) Close() error {
	return nil
}

func (s *Store) references(ctx context.Context) (*referenceDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewPersistenceError("load reference data", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadReferences()
}

func (s *Store) addReference(ctx context.Context, apply func(*referenceDocument)) error {
	if err := ctx.Err(); err != nil {
		return errors.NewPersistenceError("save reference data", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadReferences()
	if err != nil {
		return err
	}
	apply(doc)

	if err := writeJSON(s.referencePath, doc); err != nil {
		return errors.NewPersistenceError("save reference data", err)
	}
	return nil
}

func (s *Store) loadEntries() (*entriesDocument, error) {
	doc := &entriesDocument{Entries: []domain.TimeEntry{}}
	if err := readJSON(s.entriesPath, doc); err != nil {
		return nil, errors.NewPersistenceError("load entries", err)
	}
	if doc.Entries == nil {
		doc.Entries = []domain.TimeEntry{}
	}
	return doc, nil
}

func (s *Store) loadReferences() (*referenceDocument, error) {
	doc := &referenceDocument{}
	if err := readJSON(s.referencePath, doc); err != nil {
		return nil, errors.NewPersistenceError("load reference data", err)
	}
	if doc.Projects == nil {
		doc.Projects = domain.ReferenceList{}
	}
	if doc.Accountings == nil {
		doc.Accountings = domain.ReferenceList{}
	}
	return doc, nil
}

// readJSON leaves v untouched when path does not exist.
func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, v)
}

// writeJSON replaces path atomically via a temp file in the same directory.
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func indexOf(entries []domain.TimeEntry, id domain.EntryID) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func upsert(list domain.ReferenceList, ref domain.Reference) domain.ReferenceList {
	for i, r := range list {
		if r.ID == ref.ID {
			list[i] = ref
			return list
		}
	}
	return append(list, ref)
}

var (
	_ storage.Backend         = (*Store)(nil)
	_ storage.ReferenceWriter = (*Store)(nil)
)
