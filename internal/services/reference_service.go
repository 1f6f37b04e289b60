package services

import (
	"context"
	"sync"

	"timebookings/internal/domain"
	"timebookings/internal/errors"
	"timebookings/internal/logging"
	"timebookings/internal/storage"
)

// referenceServiceImpl implements the ReferenceService interface
type referenceServiceImpl struct {
	source      storage.ReferenceSource
	logger      logging.Logger
	mu          sync.RWMutex
	projects    domain.ReferenceList
	accountings domain.ReferenceList
}

// NewReferenceService creates a new ReferenceService instance
func NewReferenceService(source storage.ReferenceSource, logger logging.Logger) ReferenceService {
	return &referenceServiceImpl{
		source:      source,
		logger:      logger.With("service", "reference"),
		projects:    domain.ReferenceList{},
		accountings: domain.ReferenceList{},
	}
}

// Load fetches both lookup lists; the cache is replaced only when both succeed
func (r *referenceServiceImpl) Load(ctx context.Context) error {
	projects, err := r.source.Projects(ctx)
	if err != nil {
		r.logger.Error(ctx, "failed to load projects", "error", err)
		return asPersistenceError("load projects", err)
	}
	accountings, err := r.source.Accountings(ctx)
	if err != nil {
		r.logger.Error(ctx, "failed to load accountings", "error", err)
		return asPersistenceError("load accountings", err)
	}

	r.mu.Lock()
	r.projects = projects
	r.accountings = accountings
	r.mu.Unlock()

	r.logger.Debug(ctx, "reference data loaded", "projects", len(projects), "accountings", len(accountings))
	return nil
}

func (r *referenceServiceImpl) Projects() domain.ReferenceList {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append(domain.ReferenceList{}, r.projects...)
}

func (r *referenceServiceImpl) Accountings() domain.ReferenceList {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append(domain.ReferenceList{}, r.accountings...)
}

func (r *referenceServiceImpl) ProjectName(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.projects.Lookup(id)
}

func (r *referenceServiceImpl) AccountingName(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.accountings.Lookup(id)
}

func (r *referenceServiceImpl) AddProject(ctx context.Context, ref domain.Reference) error {
	writer, err := r.writer(ref)
	if err != nil {
		return err
	}
	if err := writer.AddProject(ctx, ref); err != nil {
		return asPersistenceError("add project", err)
	}

	r.mu.Lock()
	r.projects = upsertReference(r.projects, ref)
	r.mu.Unlock()
	return nil
}

func (r *referenceServiceImpl) AddAccounting(ctx context.Context, ref domain.Reference) error {
	writer, err := r.writer(ref)
	if err != nil {
		return err
	}
	if err := writer.AddAccounting(ctx, ref); err != nil {
		return asPersistenceError("add accounting", err)
	}

	r.mu.Lock()
	r.accountings = upsertReference(r.accountings, ref)
	r.mu.Unlock()
	return nil
}

func (r *referenceServiceImpl) writer(ref domain.Reference) (storage.ReferenceWriter, error) {
	if ref.ID == "" {
		return nil, errors.NewInvalidInputError("id", ref.ID, "reference id cannot be empty")
	}
	if ref.Name == "" {
		return nil, errors.NewInvalidInputError("name", ref.Name, "reference name cannot be empty")
	}
	writer, ok := r.source.(storage.ReferenceWriter)
	if !ok {
		return nil, errors.NewInvalidInputError("backend", nil, "reference data is read-only on this backend")
	}
	return writer, nil
}

func upsertReference(list domain.ReferenceList, ref domain.Reference) domain.ReferenceList {
	out := append(domain.ReferenceList{}, list...)
	for i := range out {
		if out[i].ID == ref.ID {
			out[i] = ref
			return out
		}
	}
	return append(out, ref)
}

// asPersistenceError keeps structured errors from the backend and wraps anything else
func asPersistenceError(operation string, err error) error {
	if errors.IsAppError(err) {
		return err
	}
	return errors.NewPersistenceError(operation, err)
}
