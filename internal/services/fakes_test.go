package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"timebookings/internal/domain"
	"timebookings/internal/errors"
	"timebookings/internal/timer"
)

// fakeBackend is an in-memory storage.Backend with switchable failures
type fakeBackend struct {
	mu          sync.Mutex
	entries     []domain.TimeEntry
	projects    domain.ReferenceList
	accountings domain.ReferenceList
	nextID      int

	createErr error
	updateErr error
	deleteErr error
	listErr   error
	refErr    error

	creates int
	updates int
}

func newFakeBackend(entries ...domain.TimeEntry) *fakeBackend {
	return &fakeBackend{entries: entries}
}

func (f *fakeBackend) Create(ctx context.Context, entry domain.TimeEntry) (domain.EntryID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	entry.ID = domain.EntryID(fmt.Sprintf("id-%d", f.nextID))
	f.entries = append([]domain.TimeEntry{entry}, f.entries...)
	return entry.ID, nil
}

func (f *fakeBackend) Update(ctx context.Context, id domain.EntryID, entry domain.TimeEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries[i] = entry
			return nil
		}
	}
	return errors.NewNotFoundError("time entry", id.String())
}

func (f *fakeBackend) Delete(ctx context.Context, id domain.EntryID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return errors.NewNotFoundError("time entry", id.String())
}

func (f *fakeBackend) List(ctx context.Context) ([]domain.TimeEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.TimeEntry{}, f.entries...), nil
}

func (f *fakeBackend) Projects(ctx context.Context) (domain.ReferenceList, error) {
	if f.refErr != nil {
		return nil, f.refErr
	}
	return f.projects, nil
}

func (f *fakeBackend) Accountings(ctx context.Context) (domain.ReferenceList, error) {
	if f.refErr != nil {
		return nil, f.refErr
	}
	return f.accountings, nil
}

func (f *fakeBackend) Close() error { return nil }

// writableBackend adds reference editing to fakeBackend
type writableBackend struct {
	*fakeBackend
	addErr error
}

func (w *writableBackend) AddProject(ctx context.Context, ref domain.Reference) error {
	if w.addErr != nil {
		return w.addErr
	}
	w.projects = append(w.projects, ref)
	return nil
}

func (w *writableBackend) AddAccounting(ctx context.Context, ref domain.Reference) error {
	if w.addErr != nil {
		return w.addErr
	}
	w.accountings = append(w.accountings, ref)
	return nil
}

// manualTicker fires only when the test sends on ch
type manualTicker struct {
	ch chan time.Time
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop()               {}

// fakeClock hands out a fixed instant that tests move forward by hand
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type timerHarness struct {
	clock   *fakeClock
	ticker  *manualTicker
	session *timer.Session
}

func newTimerHarness(start time.Time) *timerHarness {
	h := &timerHarness{
		clock:  &fakeClock{now: start},
		ticker: &manualTicker{ch: make(chan time.Time, 8)},
	}
	h.session = timer.NewSession(
		timer.WithClock(h.clock.Now),
		timer.WithTickerFactory(func(time.Duration) timer.Ticker { return h.ticker }),
	)
	return h
}

func (h *timerHarness) tick() {
	h.ticker.ch <- h.clock.Now()
}
