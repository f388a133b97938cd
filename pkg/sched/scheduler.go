package sched

import (
	"fmt"
	"sync"
	"time"

	"github.com/linusw/asipanel/internal/log"
)

var logc = log.Component("sched")

// checkInterval is how often the scheduler evaluates windows.
const checkInterval = 30 * time.Second

// Runner executes schedule windows. The camera manager satisfies it
// through a thin adapter in the composition root.
type Runner interface {
	// StartWindow applies the schedule's settings and begins recording.
	// Returns the recording session id.
	StartWindow(s Schedule) (string, error)

	// StopWindow ends the schedule's recording.
	StopWindow(s Schedule) error
}

// Scheduler drives pending schedules through their lifecycle against
// the store, using a Runner to act on the camera.
type Scheduler struct {
	store  *Store
	runner Runner

	mu       sync.Mutex
	activeID string
	stop     chan struct{}
	done     chan struct{}
}

// New creates a scheduler. Call Recover then Run.
func New(store *Store, runner Runner) *Scheduler {
	return &Scheduler{store: store, runner: runner}
}

// Create validates a schedule request, checks it against existing
// windows and persists it.
func (sc *Scheduler) Create(s Schedule) (Schedule, error) {
	now := time.Now()
	if err := s.Validate(now); err != nil {
		return Schedule{}, err
	}

	for _, status := range []string{StatusPending, StatusActive} {
		existing, err := sc.store.ListByStatus(status)
		if err != nil {
			return Schedule{}, err
		}
		for _, other := range existing {
			if s.Overlaps(other) {
				return Schedule{}, fmt.Errorf("schedule conflicts with %q (%s - %s)",
					other.Name, other.StartTime.Format(time.RFC3339), other.EndTime.Format(time.RFC3339))
			}
		}
	}

	s.Status = StatusPending
	if err := sc.store.Insert(&s); err != nil {
		return Schedule{}, err
	}
	logc.Info("schedule created", "id", s.ID, "name", s.Name,
		"start", s.StartTime, "end", s.EndTime)
	return s, nil
}

// Cancel transitions a schedule to cancelled. An active schedule has
// its recording stopped first.
func (sc *Scheduler) Cancel(id string) error {
	s, err := sc.store.Get(id)
	if err != nil {
		return err
	}
	switch s.Status {
	case StatusPending:
	case StatusActive:
		if err := sc.runner.StopWindow(s); err != nil {
			logc.Warn("stopping cancelled window failed", "id", id, "err", err)
		}
		sc.setActive("")
	default:
		return fmt.Errorf("schedule %s is %s and cannot be cancelled", id, s.Status)
	}
	if err := sc.store.SetStatus(id, StatusCancelled, ""); err != nil {
		return err
	}
	logc.Info("schedule cancelled", "id", id)
	return nil
}

// List returns all stored schedules.
func (sc *Scheduler) List() ([]Schedule, error) {
	return sc.store.List()
}

// Get returns one schedule.
func (sc *Scheduler) Get(id string) (Schedule, error) {
	return sc.store.Get(id)
}

// ActiveID returns the id of the currently running schedule, if any.
func (sc *Scheduler) ActiveID() string {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.activeID
}

func (sc *Scheduler) setActive(id string) {
	sc.mu.Lock()
	sc.activeID = id
	sc.mu.Unlock()
}

// Recover reconciles the store after a restart: schedules marked
// active are resumed if their window is still open, completed
// otherwise; pending schedules whose start passed beyond tolerance are
// failed.
func (sc *Scheduler) Recover() error {
	now := time.Now()

	active, err := sc.store.ListByStatus(StatusActive)
	if err != nil {
		return err
	}
	for _, s := range active {
		if now.Before(s.EndTime) {
			logc.Info("resuming interrupted schedule", "id", s.ID, "name", s.Name)
			sc.startWindow(s)
			continue
		}
		// The window closed while we were down.
		if err := sc.store.SetStatus(s.ID, StatusCompleted, ""); err != nil {
			logc.Error("completing stale schedule failed", "id", s.ID, "err", err)
		}
	}

	pending, err := sc.store.ListByStatus(StatusPending)
	if err != nil {
		return err
	}
	for _, s := range pending {
		if s.Missed(now) {
			if err := sc.store.SetStatus(s.ID, StatusFailed, "start window missed"); err != nil {
				logc.Error("failing missed schedule failed", "id", s.ID, "err", err)
			}
			logc.Warn("schedule missed its start window", "id", s.ID, "name", s.Name)
		}
	}
	return nil
}

// Run evaluates schedules until Stop is called. Call in a goroutine.
func (sc *Scheduler) Run() {
	sc.mu.Lock()
	sc.stop = make(chan struct{})
	sc.done = make(chan struct{})
	stop, done := sc.stop, sc.done
	sc.mu.Unlock()
	defer close(done)

	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	sc.tick(time.Now())
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			sc.tick(now)
		}
	}
}

// Stop halts the scheduler loop and waits for it to exit.
func (sc *Scheduler) Stop() {
	sc.mu.Lock()
	stop, done := sc.stop, sc.done
	sc.mu.Unlock()
	if stop == nil {
		return
	}
	select {
	case <-stop:
	default:
		close(stop)
	}
	<-done
}

// tick runs one evaluation pass.
func (sc *Scheduler) tick(now time.Time) {
	active, err := sc.store.ListByStatus(StatusActive)
	if err != nil {
		logc.Error("schedule scan failed", "err", err)
		return
	}
	for _, s := range active {
		if s.Expired(now) {
			if err := sc.runner.StopWindow(s); err != nil {
				logc.Warn("stopping expired window failed", "id", s.ID, "err", err)
			}
			if err := sc.store.SetStatus(s.ID, StatusCompleted, ""); err != nil {
				logc.Error("completing schedule failed", "id", s.ID, "err", err)
			}
			sc.setActive("")
			logc.Info("schedule completed", "id", s.ID, "name", s.Name)
		}
	}

	pending, err := sc.store.ListByStatus(StatusPending)
	if err != nil {
		logc.Error("schedule scan failed", "err", err)
		return
	}
	for _, s := range pending {
		switch {
		case s.Due(now):
			sc.startWindow(s)
		case s.Missed(now):
			if err := sc.store.SetStatus(s.ID, StatusFailed, "start window missed"); err != nil {
				logc.Error("failing missed schedule failed", "id", s.ID, "err", err)
			}
			logc.Warn("schedule missed its start window", "id", s.ID, "name", s.Name)
		}
	}
}

func (sc *Scheduler) startWindow(s Schedule) {
	session, err := sc.runner.StartWindow(s)
	if err != nil {
		if serr := sc.store.SetStatus(s.ID, StatusFailed, err.Error()); serr != nil {
			logc.Error("failing schedule failed", "id", s.ID, "err", serr)
		}
		logc.Error("schedule start failed", "id", s.ID, "err", err)
		return
	}
	if err := sc.store.SetStatus(s.ID, StatusActive, ""); err != nil {
		logc.Error("activating schedule failed", "id", s.ID, "err", err)
		return
	}
	sc.setActive(s.ID)
	logc.Info("schedule started", "id", s.ID, "name", s.Name, "session", session)
}
