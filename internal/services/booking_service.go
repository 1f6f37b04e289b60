package services

import (
	"context"
	"sync"
	"time"

	"timebookings/internal/config"
	"timebookings/internal/domain"
	"timebookings/internal/errors"
	"timebookings/internal/logging"
	"timebookings/internal/storage"
	"timebookings/internal/timer"
	"timebookings/internal/validation"
)

func errNoDraft() error {
	return errors.NewValidationError("no entry draft is open", nil)
}

// BookingOption configures the booking service
type BookingOption func(*bookingServiceImpl)

// WithClock replaces time.Now for draft prefill
func WithClock(now func() time.Time) BookingOption {
	return func(b *bookingServiceImpl) { b.now = now }
}

// WithTimerSession replaces the timer session built from the configuration
func WithTimerSession(s *timer.Session) BookingOption {
	return func(b *bookingServiceImpl) { b.session = s }
}

// bookingServiceImpl implements the BookingService interface. mu serialises
// every operation on the live draft, the selection and the collection.
type bookingServiceImpl struct {
	store     storage.EntryStore
	refs      ReferenceService
	validator *validation.DraftValidator
	session   *timer.Session
	logger    logging.Logger
	now       func() time.Time

	entryLength  time.Duration
	headerPrefix string

	mu        sync.Mutex
	draft     domain.EntryDraft
	mode      DraftMode
	selection Selection
	entries   []domain.TimeEntry
}

// NewBookingService creates a new BookingService instance
func NewBookingService(store storage.EntryStore, refs ReferenceService, cfg *config.Config, logger logging.Logger, opts ...BookingOption) BookingService {
	b := &bookingServiceImpl{
		store:        store,
		refs:         refs,
		validator:    validation.NewDraftValidatorWithConfig(cfg),
		logger:       logger.With("service", "booking"),
		now:          time.Now,
		entryLength:  cfg.Validation.DefaultEntryLength,
		headerPrefix: cfg.Display.GroupHeaderPrefix,
		draft:        domain.EmptyDraft(),
		mode:         ModeNone,
		entries:      []domain.TimeEntry{},
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.session == nil {
		b.session = timer.NewSession(timer.WithTickInterval(cfg.Timer.TickInterval))
	}
	return b
}

// Load fetches the reference data and the entry collection
func (b *bookingServiceImpl) Load(ctx context.Context) error {
	if err := b.refs.Load(ctx); err != nil {
		return err
	}

	entries, err := b.store.List(ctx)
	if err != nil {
		b.logger.Error(ctx, "failed to load entries", "error", err)
		return asPersistenceError("list entries", err)
	}

	b.mu.Lock()
	b.entries = entries
	b.mu.Unlock()

	b.logger.Debug(ctx, "entries loaded", "count", len(entries))
	return nil
}

func (b *bookingServiceImpl) Entries() []domain.TimeEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.TimeEntry{}, b.entries...)
}

func (b *bookingServiceImpl) Groups() []domain.DateGroup {
	return domain.GroupByDate(b.Entries(), b.headerPrefix)
}

func (b *bookingServiceImpl) Search(query string) []domain.TimeEntry {
	return domain.FilterEntries(b.Entries(), query)
}

// Delete removes an entry; a draft editing it is discarded
func (b *bookingServiceImpl) Delete(ctx context.Context, id domain.EntryID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.store.Delete(ctx, id); err != nil {
		b.logFailure(ctx, "delete entry", err, "id", id)
		return asPersistenceError("delete entry", err)
	}

	for i, e := range b.entries {
		if e.ID == id {
			b.entries = append(b.entries[:i:i], b.entries[i+1:]...)
			break
		}
	}
	if b.draft.EditTargetID != nil && *b.draft.EditTargetID == id {
		b.resetDraftLocked()
	}

	b.logger.Info(ctx, "entry deleted", "id", id)
	return nil
}

// SelectProject sets the main project selection; an empty id clears it
func (b *bookingServiceImpl) SelectProject(id string) (Selection, error) {
	name, err := b.resolve(id, "project", b.refs.Projects(), b.refs.ProjectName)
	if err != nil {
		return b.Selection(), err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.selection = Selection{ProjectID: id, ProjectName: name}
	return b.selection, nil
}

func (b *bookingServiceImpl) Selection() Selection {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selection
}

// BeginManualEntry opens a draft prefilled with now, now+default length and
// the selected project, replacing any open draft
func (b *bookingServiceImpl) BeginManualEntry() domain.EntryDraft {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.discardQuickLocked()
	b.draft = domain.NewManualDraft(b.now(), b.entryLength, b.selection.ProjectID, b.selection.ProjectName)
	b.mode = ModeManual
	return b.draft
}

// BeginEdit opens a draft copied from an existing entry
func (b *bookingServiceImpl) BeginEdit(id domain.EntryID) (domain.EntryDraft, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, e := range b.entries {
		if e.ID == id {
			b.discardQuickLocked()
			b.draft = domain.DraftFromEntry(e)
			b.mode = ModeEdit
			return b.draft, nil
		}
	}
	return b.draft, errors.NewNotFoundError("time entry", id.String())
}

// UpdateField changes one field of the open draft. Nothing is recomputed.
func (b *bookingServiceImpl) UpdateField(field domain.Field, value interface{}) (domain.EntryDraft, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mode == ModeNone {
		return b.draft, errNoDraft()
	}
	draft, err := b.draft.WithField(field, value)
	if err != nil {
		return b.draft, err
	}
	b.draft = draft
	return b.draft, nil
}

// SetDraftProject sets the draft project id together with its display name
func (b *bookingServiceImpl) SetDraftProject(id string) (domain.EntryDraft, error) {
	name, err := b.resolve(id, "project", b.refs.Projects(), b.refs.ProjectName)
	if err != nil {
		return b.Draft(), err
	}
	return b.setPair(domain.FieldProjectID, id, domain.FieldProjectName, name)
}

// SetDraftAccounting sets the draft accounting id together with its display text
func (b *bookingServiceImpl) SetDraftAccounting(id string) (domain.EntryDraft, error) {
	name, err := b.resolve(id, "accounting", b.refs.Accountings(), b.refs.AccountingName)
	if err != nil {
		return b.Draft(), err
	}
	return b.setPair(domain.FieldAccountingID, id, domain.FieldAccountingName, name)
}

func (b *bookingServiceImpl) setPair(idField domain.Field, id string, nameField domain.Field, name string) (domain.EntryDraft, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mode == ModeNone {
		return b.draft, errNoDraft()
	}
	draft, err := b.draft.WithField(idField, id)
	if err != nil {
		return b.draft, err
	}
	if draft, err = draft.WithField(nameField, name); err != nil {
		return b.draft, err
	}
	b.draft = draft
	return b.draft, nil
}

// resolve maps an id to its display name. With an empty lookup list the id
// doubles as the name.
func (b *bookingServiceImpl) resolve(id, kind string, list domain.ReferenceList, lookup func(string) (string, bool)) (string, error) {
	if id == "" {
		return "", nil
	}
	if len(list) == 0 {
		return id, nil
	}
	name, ok := lookup(id)
	if !ok {
		return "", errors.NewNotFoundError(kind, id)
	}
	return name, nil
}

func (b *bookingServiceImpl) Draft() domain.EntryDraft {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.draft
}

func (b *bookingServiceImpl) Mode() DraftMode {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mode
}

func (b *bookingServiceImpl) CanQuickSave() bool {
	return b.validator.ValidateForQuickSave(b.Draft())
}

func (b *bookingServiceImpl) CanFullSave() bool {
	return b.validator.ValidateForFullSave(b.Draft())
}

// SubmitFull commits a manual or edit draft. On failure the draft and the
// collection are left unchanged.
func (b *bookingServiceImpl) SubmitFull(ctx context.Context) (domain.TimeEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mode != ModeManual && b.mode != ModeEdit {
		return domain.TimeEntry{}, errNoDraft()
	}
	if err := b.validator.CheckFullSave(b.draft); err != nil {
		return domain.TimeEntry{}, err.(*validation.ValidationError).ToAppError()
	}

	entry := domain.Finalize(b.draft)
	if b.mode == ModeEdit {
		if err := b.store.Update(ctx, entry.ID, entry); err != nil {
			b.logFailure(ctx, "update entry", err, "id", entry.ID)
			return domain.TimeEntry{}, asPersistenceError("update entry", err)
		}
		b.replaceLocked(entry)
		b.logger.Info(ctx, "entry updated", "id", entry.ID)
	} else {
		if err := b.createLocked(ctx, &entry); err != nil {
			return domain.TimeEntry{}, err
		}
	}

	b.resetDraftLocked()
	return entry, nil
}

// StartTimer starts the stopwatch for the selected project. A quick draft
// left open from the previous run is dropped with its interval.
func (b *bookingServiceImpl) StartTimer() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.session.Start(b.selection.ProjectID); err != nil {
		return err
	}
	if b.mode == ModeQuick {
		b.resetDraftLocked()
	}
	b.logger.Debug(context.Background(), "timer started", "project", b.selection.ProjectID)
	return nil
}

// StopTimer stops the stopwatch and opens the quick-save draft
func (b *bookingServiceImpl) StopTimer() (domain.EntryDraft, error) {
	interval, err := b.session.Stop()
	if err != nil {
		return b.Draft(), err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// The project comes from the current selection, not from the interval.
	start, end := interval.Start, interval.End
	b.draft = domain.EntryDraft{
		Start:       &start,
		End:         &end,
		ProjectID:   b.selection.ProjectID,
		ProjectName: b.selection.ProjectName,
	}
	b.mode = ModeQuick

	b.logger.Debug(context.Background(), "timer stopped", "elapsed_seconds", interval.ElapsedSeconds)
	return b.draft, nil
}

// SubmitQuick commits the quick-save draft. The elapsed counter is reset
// whether or not the write succeeds; the draft survives a failed write.
func (b *bookingServiceImpl) SubmitQuick(ctx context.Context) (domain.TimeEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mode != ModeQuick {
		return domain.TimeEntry{}, errNoDraft()
	}
	if err := b.validator.CheckQuickSave(b.draft); err != nil {
		return domain.TimeEntry{}, err.(*validation.ValidationError).ToAppError()
	}

	entry := domain.Finalize(b.draft)
	err := b.createLocked(ctx, &entry)
	b.session.Reset()
	if err != nil {
		return domain.TimeEntry{}, err
	}

	b.resetDraftLocked()
	return entry, nil
}

// CancelDraft discards the open draft
func (b *bookingServiceImpl) CancelDraft() domain.EntryDraft {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.discardQuickLocked()
	b.resetDraftLocked()
	return b.draft
}

func (b *bookingServiceImpl) Timer() timer.Snapshot {
	return b.session.Snapshot()
}

// Close stops a running timer
func (b *bookingServiceImpl) Close() error {
	return b.session.Close()
}

func (b *bookingServiceImpl) createLocked(ctx context.Context, entry *domain.TimeEntry) error {
	entry.ID = ""
	id, err := b.store.Create(ctx, *entry)
	if err != nil {
		b.logFailure(ctx, "create entry", err)
		return asPersistenceError("create entry", err)
	}
	entry.ID = id
	b.entries = append([]domain.TimeEntry{*entry}, b.entries...)
	b.logger.Info(ctx, "entry created", "id", id, "project", entry.ProjectID)
	return nil
}

func (b *bookingServiceImpl) replaceLocked(entry domain.TimeEntry) {
	for i := range b.entries {
		if b.entries[i].ID == entry.ID {
			b.entries[i] = entry
			return
		}
	}
}

func (b *bookingServiceImpl) resetDraftLocked() {
	b.draft = domain.EmptyDraft()
	b.mode = ModeNone
}

// discardQuickLocked resets the stopwatch when an unsaved quick draft is dropped
func (b *bookingServiceImpl) discardQuickLocked() {
	if b.mode == ModeQuick {
		b.session.Reset()
	}
}

func (b *bookingServiceImpl) logFailure(ctx context.Context, operation string, err error, args ...any) {
	if !errors.ShouldLogError(err) {
		return
	}
	b.logger.Error(ctx, operation+" failed", append(args, "error", err)...)
}
