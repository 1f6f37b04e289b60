package api

import (
	"context"
	stderrors "errors"
	"sync"

	"timebookings/internal/config"
	"timebookings/internal/domain"
	"timebookings/internal/logging"
	"timebookings/internal/services"
	"timebookings/internal/storage"
)

// BookingAPI defines the workflows the command line drives
type BookingAPI interface {
	// ========== Entry Workflows ==========

	// AddEntry creates an entry through the full-save path
	AddEntry(ctx context.Context, req EntryRequest) (*domain.TimeEntry, error)

	// EditEntry patches an existing entry through the full-save path
	EditEntry(ctx context.Context, id domain.EntryID, req EntryRequest) (*domain.TimeEntry, error)

	// DeleteEntry removes an entry
	DeleteEntry(ctx context.Context, id domain.EntryID) error

	// ========== Query Operations ==========

	// ListEntries returns the entries matching query grouped by date, newest first
	ListEntries(ctx context.Context, query string) ([]domain.DateGroup, error)

	// ListReferences returns the project and accounting lookup lists
	ListReferences(ctx context.Context) (*ReferenceData, error)

	// AddReference adds or renames a lookup list entry
	AddReference(ctx context.Context, kind ReferenceKind, ref domain.Reference) error

	// ========== Interactive Session ==========

	// Session returns the loaded booking service that owns the live draft and timer
	Session(ctx context.Context) (services.BookingService, error)

	Close() error
}

// bookingAPIImpl implements the BookingAPI interface
type bookingAPIImpl struct {
	backend      storage.Backend
	services     *services.ServiceContainer
	logger       logging.Logger
	headerPrefix string

	mu     sync.Mutex
	loaded bool
}

// New wires the services on top of backend. The returned API owns backend
// and closes it in Close.
func New(backend storage.Backend, cfg *config.Config, logger logging.Logger, opts ...services.BookingOption) BookingAPI {
	refs := services.NewReferenceService(backend, logger)
	return &bookingAPIImpl{
		backend: backend,
		services: &services.ServiceContainer{
			ReferenceService: refs,
			BookingService:   services.NewBookingService(backend, refs, cfg, logger, opts...),
		},
		logger:       logger,
		headerPrefix: cfg.Display.GroupHeaderPrefix,
	}
}

// ensureLoaded loads reference data and entries once per API instance
func (a *bookingAPIImpl) ensureLoaded(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.loaded {
		return nil
	}
	if err := a.services.BookingService.Load(ctx); err != nil {
		return err
	}
	a.loaded = true
	return nil
}

func (a *bookingAPIImpl) AddEntry(ctx context.Context, req EntryRequest) (*domain.TimeEntry, error) {
	if err := a.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	booking := a.services.BookingService
	booking.BeginManualEntry()
	return a.submit(ctx, booking, req)
}

func (a *bookingAPIImpl) EditEntry(ctx context.Context, id domain.EntryID, req EntryRequest) (*domain.TimeEntry, error) {
	if err := a.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	booking := a.services.BookingService
	if _, err := booking.BeginEdit(id); err != nil {
		return nil, err
	}
	return a.submit(ctx, booking, req)
}

// submit applies req to the open draft and commits it. The draft is
// discarded on any failure since a one-shot command has no way to retry.
func (a *bookingAPIImpl) submit(ctx context.Context, booking services.BookingService, req EntryRequest) (*domain.TimeEntry, error) {
	if err := applyRequest(booking, req); err != nil {
		booking.CancelDraft()
		return nil, err
	}

	entry, err := booking.SubmitFull(ctx)
	if err != nil {
		booking.CancelDraft()
		return nil, err
	}
	return &entry, nil
}

func applyRequest(booking services.BookingService, req EntryRequest) error {
	if req.Start != nil {
		if _, err := booking.UpdateField(domain.FieldStart, *req.Start); err != nil {
			return err
		}
	}
	if req.End != nil {
		if _, err := booking.UpdateField(domain.FieldEnd, *req.End); err != nil {
			return err
		}
	}
	if req.ShortText != nil {
		if _, err := booking.UpdateField(domain.FieldShortText, *req.ShortText); err != nil {
			return err
		}
	}
	if req.ProjectID != nil {
		if _, err := booking.SetDraftProject(*req.ProjectID); err != nil {
			return err
		}
	}
	if req.AccountingID != nil {
		if _, err := booking.SetDraftAccounting(*req.AccountingID); err != nil {
			return err
		}
	}
	return nil
}

func (a *bookingAPIImpl) DeleteEntry(ctx context.Context, id domain.EntryID) error {
	if err := a.ensureLoaded(ctx); err != nil {
		return err
	}
	return a.services.BookingService.Delete(ctx, id)
}

func (a *bookingAPIImpl) ListEntries(ctx context.Context, query string) ([]domain.DateGroup, error) {
	if err := a.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	entries := a.services.BookingService.Search(query)
	return domain.GroupByDate(entries, a.headerPrefix), nil
}

func (a *bookingAPIImpl) ListReferences(ctx context.Context) (*ReferenceData, error) {
	refs := a.services.ReferenceService
	if err := refs.Load(ctx); err != nil {
		return nil, err
	}
	return &ReferenceData{
		Projects:    refs.Projects(),
		Accountings: refs.Accountings(),
	}, nil
}

func (a *bookingAPIImpl) AddReference(ctx context.Context, kind ReferenceKind, ref domain.Reference) error {
	refs := a.services.ReferenceService
	switch kind {
	case ReferenceProject:
		return refs.AddProject(ctx, ref)
	case ReferenceAccounting:
		return refs.AddAccounting(ctx, ref)
	default:
		_, err := ParseReferenceKind(string(kind))
		return err
	}
}

func (a *bookingAPIImpl) Session(ctx context.Context) (services.BookingService, error) {
	if err := a.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return a.services.BookingService, nil
}

// Close stops the timer and releases the backend
func (a *bookingAPIImpl) Close() error {
	return stderrors.Join(
		a.services.BookingService.Close(),
		a.backend.Close(),
	)
}
