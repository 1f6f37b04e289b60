// Package timer implements the stopwatch behind quick bookings.
package timer

import (
	"sync"
	"time"

	"timebookings/internal/errors"
)

// DefaultTickInterval is the period of one elapsed-second increment.
const DefaultTickInterval = time.Second

// State is the timer sub-state.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

var (
	ErrAlreadyRunning = &errors.AppError{
		Type:    errors.ErrorTypeValidation,
		Message: "timer is already running",
		Code:    "TIMER_RUNNING",
	}
	ErrNotRunning = &errors.AppError{
		Type:    errors.ErrorTypeValidation,
		Message: "timer is not running",
		Code:    "TIMER_NOT_RUNNING",
	}
)

// Ticker delivers ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type stdTicker struct {
	t *time.Ticker
}

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }

func newStdTicker(d time.Duration) Ticker {
	return stdTicker{t: time.NewTicker(d)}
}

// Interval is the measured span handed back by Stop.
type Interval struct {
	Start          time.Time
	End            time.Time
	ProjectID      string
	ElapsedSeconds int
}

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	State          State
	ProjectID      string
	StartedAt      *time.Time
	StoppedAt      *time.Time
	ElapsedSeconds int
}

// Clock renders the elapsed seconds as HH:MM:SS.
func (s Snapshot) Clock() string {
	elapsed := s.ElapsedSeconds
	return FormatClock(&elapsed)
}

// Option configures a Session
type Option func(*Session)

// WithTickInterval changes the tick period
func WithTickInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithTickerFactory replaces the ticker implementation
func WithTickerFactory(f func(time.Duration) Ticker) Option {
	return func(s *Session) { s.newTicker = f }
}

// Session owns the Idle/Running state machine and its tick goroutine.
// At most one tick goroutine exists; Stop and Close wait for it to exit.
type Session struct {
	mu        sync.Mutex
	wg        sync.WaitGroup
	interval  time.Duration
	now       func() time.Time
	newTicker func(time.Duration) Ticker

	state     State
	projectID string
	startedAt time.Time
	stoppedAt *time.Time
	elapsed   int
	done      chan struct{}
	onTick    func(elapsed int)
}

// NewSession creates an idle session
func NewSession(opts ...Option) *Session {
	s := &Session{
		interval:  DefaultTickInterval,
		now:       time.Now,
		newTicker: newStdTicker,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnTick registers fn to be called after every increment. fn runs on the
// tick goroutine and must not call Stop or Close.
func (s *Session) OnTick(fn func(elapsed int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTick = fn
}

// Start moves Idle -> Running for the given project.
func (s *Session) Start(projectID string) error {
	if projectID == "" {
		return errors.NewNoProjectSelectedError()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Running {
		return ErrAlreadyRunning
	}

	s.state = Running
	s.projectID = projectID
	s.startedAt = s.now()
	s.stoppedAt = nil
	s.elapsed = 0

	done := make(chan struct{})
	s.done = done
	ticker := s.newTicker(s.interval)

	s.wg.Add(1)
	go s.run(ticker, done)
	return nil
}

func (s *Session) run(ticker Ticker, done chan struct{}) {
	defer s.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C():
			s.mu.Lock()
			// A tick racing with Stop must not count.
			if s.done != done {
				s.mu.Unlock()
				return
			}
			s.elapsed++
			elapsed, fn := s.elapsed, s.onTick
			s.mu.Unlock()

			if fn != nil {
				fn(elapsed)
			}
		}
	}
}

// Stop moves Running -> Idle and returns the measured interval. The tick
// goroutine has exited when Stop returns.
func (s *Session) Stop() (Interval, error) {
	s.mu.Lock()
	if s.state != Running {
		s.mu.Unlock()
		return Interval{}, ErrNotRunning
	}

	stopped := s.now()
	s.state = Idle
	s.stoppedAt = &stopped
	close(s.done)
	s.done = nil

	interval := Interval{
		Start:          s.startedAt,
		End:            stopped,
		ProjectID:      s.projectID,
		ElapsedSeconds: s.elapsed,
	}
	s.mu.Unlock()

	s.wg.Wait()
	return interval, nil
}

// Reset zeroes the elapsed counter and forgets the last interval. A running
// session is left alone; its counter only grows until Stop.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Running {
		return
	}
	s.elapsed = 0
	s.projectID = ""
	s.startedAt = time.Time{}
	s.stoppedAt = nil
}

func (s *Session) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == Running
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:          s.state,
		ProjectID:      s.projectID,
		ElapsedSeconds: s.elapsed,
	}
	if !s.startedAt.IsZero() {
		started := s.startedAt
		snap.StartedAt = &started
	}
	if s.stoppedAt != nil {
		stopped := *s.stoppedAt
		snap.StoppedAt = &stopped
	}
	return snap
}

// Close stops a running timer and waits for its goroutine.
func (s *Session) Close() error {
	if _, err := s.Stop(); err != nil && err != ErrNotRunning {
		return err
	}
	return nil
}
